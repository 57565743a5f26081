package client

import "errors"

var ErrInvalidCredentials = errors.New("invalid credentials")
