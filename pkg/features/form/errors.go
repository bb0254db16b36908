package form

import "errors"

// ErrInvalid is returned by Submit when validation fails.
var ErrInvalid = errors.New("form: validation failed")
