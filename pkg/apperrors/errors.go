package apperrors

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownTable    = errors.New("unknown table")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrNoPrimaryKey    = errors.New("no primary key")
	ErrMissingOrderBy  = errors.New("offset pagination requires an order by clause")
	ErrMissingFilter   = errors.New("delete requires a filter expression")
)
