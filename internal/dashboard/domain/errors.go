package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrProjectNotFound   = errors.New("project not found")
	ErrInvalidEnum       = errors.New("invalid enum value")
	ErrTitleRequired     = errors.New("title required")
	ErrIdentityRequired  = errors.New("owner identity required")
	ErrProjectIDRequired = errors.New("project id required")
)
