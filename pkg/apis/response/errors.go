package response

var errors = map[ErrCode]string{
	ErrCodeMalformedJSON:              "The JSON you provided was not well-formed or did not validate against our published format.",
	ErrCodeRequestBody:                "Request body error",
	ErrCodeResourceExists:             "Resource [%s] already exists.",
	ErrCodeResourceNotFound:           "Resource [%s] not found.",
	ErrCodeProfileExists:              "Generator profile already exists.",
	ErrCodeProfileNotFound:            "Generator profile not found.",
	ErrCodeCommandRejected:            "Command rejected: %s.",
	ErrCodeControllerUnreachable:      "Generator controller unreachable: %s.",
	ErrCodeMonitorOperatorUnSupported: "Monitor operator [%s] is not supported.",
	ErrCodeTooManyJsonPatchOperations: "The allowed maximum operations in a JSON patch is %d.",
	ErrCodeTransportInvalid:           "Transport configuration invalid: %s.",
	ErrCodeRegisterMapInvalid:         "Register map invalid: %s.",
}

// !!! IMPORTANT PLEASE READ FIRST !!!
// You SHOULD add new code at the end of enum firstly.

var ErrMalformedJSON = &responseError{
	Code:    ErrCodeMalformedJSON,
	Message: errors[ErrCodeMalformedJSON],
}

var ErrRequestBody = &responseError{
	Code:    ErrCodeRequestBody,
	Message: errors[ErrCodeRequestBody],
}

var ErrProfileExists = &responseError{
	Code:    ErrCodeProfileExists,
	Message: errors[ErrCodeProfileExists],
}

var ErrProfileNotFound = &responseError{
	Code:    ErrCodeProfileNotFound,
	Message: errors[ErrCodeProfileNotFound],
}
