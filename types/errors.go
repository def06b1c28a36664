package types

import "errors"

var ErrInvalidHashLength = errors.New("invalid hash length")
