package store

import "errors"

// ErrDuplicateUser indicates an insert with an already-registered email.
var ErrDuplicateUser = errors.New("user with this email already exists")
