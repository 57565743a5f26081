package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWorkerLoginOff     = errors.New("worker login is not configured")
)
