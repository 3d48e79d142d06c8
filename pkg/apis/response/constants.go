package response

type ErrCode int

const (
	_                                 ErrCode = 10000 + iota
	ErrCodeMalformedJSON                      // 10001
	ErrCodeRequestBody                        // 10002
	ErrCodeResourceExists                     // 10003
	ErrCodeResourceNotFound                   // 10004
	ErrCodeProfileExists                      // 10005
	ErrCodeProfileNotFound                    // 10006
	ErrCodeCommandRejected                    // 10007
	ErrCodeControllerUnreachable              // 10008
	ErrCodeMonitorOperatorUnSupported         // 10009
	ErrCodeTooManyJsonPatchOperations         // 10010
	ErrCodeTransportInvalid                   // 10011
	ErrCodeRegisterMapInvalid                 // 10012
)

// !!! IMPORTANT PLEASE READ FIRST !!!
// You SHOULD add new code at the end, and append comment of number
// Meanwhile, the corresponding error message SHOULD be appended in response.errors
// The order MUST be consistent between them
