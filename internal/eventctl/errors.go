package eventctl

import "errors"

// Error constants.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMissingDSN     = errors.New("missing dsn")
	ErrBadArgument    = errors.New("bad argument")
)
