package vault

import "errors"

// ErrNotFound is returned when requested content or metadata does not exist.
var ErrNotFound = errors.New("not found in vault")
