package repository

import (
	"errors"
)

var (
	// ErrNotFound is returned when no session exists for an ID.
	ErrNotFound = errors.New("repository: session not found")
	// ErrAlreadyLoading is returned by MarkLoading when the stored session is already loading.
	ErrAlreadyLoading = errors.New("repository: session already loading")
)
