package model

import "errors"

// ErrDecode is returned when a lookup response body cannot be turned into a
// LookupResult. Callers can test for it with errors.Is to tell a malformed
// payload apart from transport failures.
var ErrDecode = errors.New("decode error: malformed lookup response")

// ErrInvalidURL is returned when a host cannot be extracted from a URL.
var ErrInvalidURL = errors.New("invalid url")
