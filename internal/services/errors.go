package services

import "errors"

// Analysis service errors
var (
	ErrRunNotFound       = errors.New("unknown run id")
	ErrUnknownCategory   = errors.New("unknown analysis category")
	ErrTooManySelection  = errors.New("selection lists too many analysis ids")
	ErrTooManyStatements = errors.New("too many financial statements")
)
