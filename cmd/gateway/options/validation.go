package options

import "fmt"

func Validate(o *Options) []error {
	var errs []error
	if err := o.BaseOptions.ValidateAndApply(); err != nil {
		errs = append(errs, err)
	}
	if o.TelemetryBuffer <= 0 {
		errs = append(errs, fmt.Errorf("telemetry-buffer must be positive, got %d", o.TelemetryBuffer))
	}

	return errs
}
