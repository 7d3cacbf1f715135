package domain

import "errors"

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrSectorNotFound  = errors.New("sector not found")
	ErrCodeNotFound    = errors.New("code not found")
	ErrSettingNotFound = errors.New("setting not found")
	ErrInvalidEvent    = errors.New("invalid event")
)
