package gatt

import "errors"

// Tree operations never panic; they surface one of these sentinels
// instead.
var (
	ErrDuplicatePath   = errors.New("gatt: duplicate path")
	ErrUnknownPath     = errors.New("gatt: unknown path")
	ErrUnknownInterface = errors.New("gatt: unknown interface")
	ErrUnknownProperty  = errors.New("gatt: unknown property")
	ErrUnknownMethod    = errors.New("gatt: unknown method")
	ErrReadOnly         = errors.New("gatt: property is not writable")
	ErrWriteOnly        = errors.New("gatt: property is not readable")
	ErrDuplicateInterface = errors.New("gatt: node already has an interface of this kind")
)
