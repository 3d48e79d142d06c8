package runtime

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	"k8s.io/klog/v2"
)

type NameFilterFunc struct {
	Eq         string
	In         []string
	Contains   string
	StartsWith string
	EndsWith   string
}

// MetricFilter selects which telemetry metrics a history query returns.
type MetricFilter struct {
	Metric interface{}
}

type MetricPredicate func(metric string) bool

func ParseMetricFilter(filter *MetricFilter) []MetricPredicate {
	predicates := make([]MetricPredicate, 0)
	if filter == nil {
		return predicates
	}

	if filter.Metric != nil {
		if name, ok := filter.Metric.(string); ok {
			p := func(metric string) bool {
				if name == metric {
					return true
				}
				return false
			}
			predicates = append(predicates, p)
		} else {
			var ff NameFilterFunc
			if err := mapstructure.Decode(filter.Metric, &ff); err != nil {
				klog.V(3).InfoS("Failed to parse filter.metric", "err", err)
			}
			// eq
			if len(ff.Eq) > 0 {
				p := func(metric string) bool {
					if ff.Eq == metric {
						return true
					}
					return false
				}
				predicates = append(predicates, p)
			}
			// in
			if len(ff.In) > 0 {
				p := func(metric string) bool {
					for _, name := range ff.In {
						if name == metric {
							return true
						}
					}
					return false
				}
				predicates = append(predicates, p)
			}
			// contains
			if len(ff.Contains) > 0 {
				p := func(metric string) bool {
					if strings.Contains(metric, ff.Contains) {
						return true
					}
					return false
				}
				predicates = append(predicates, p)
			}
			// startsWith
			if len(ff.StartsWith) > 0 {
				p := func(metric string) bool {
					if strings.HasPrefix(metric, strings.TrimSpace(ff.StartsWith)) {
						return true
					}
					return false
				}
				predicates = append(predicates, p)
			}
			// endsWith
			if len(ff.EndsWith) > 0 {
				p := func(metric string) bool {
					if strings.HasSuffix(metric, strings.TrimSpace(ff.EndsWith)) {
						return true
					}
					return false
				}
				predicates = append(predicates, p)
			}
		}
	}

	return predicates
}
