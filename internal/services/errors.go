package services

import "errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidStatus     = errors.New("invalid candidate status")
	ErrStatusConflict    = errors.New("candidate status changed since it was loaded")
	ErrAssistantDisabled = errors.New("assistant is not configured")
	ErrStorageDisabled   = errors.New("resume storage is not configured")
)
