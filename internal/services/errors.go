package services

import "errors"

// ErrPhotosDisabled is returned when no object storage backend is configured.
var ErrPhotosDisabled = errors.New("photo storage is not configured")

// ErrNoPhoto is returned when a meal has no attached photo.
var ErrNoPhoto = errors.New("meal has no photo")
