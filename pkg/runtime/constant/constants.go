package constant

import "errors"

var (
	ErrBrandUnsupported   = errors.New("unsupported generator brand")
	ErrConnectController  = errors.New("unable to connect to generator controller")
	ErrMonitorClosed      = errors.New("generator monitor closed")
	ErrRegisterMapEmptied = errors.New("register map emptied")
)
