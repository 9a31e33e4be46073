package tokens

import (
	"errors"
	"strings"
)

var (
	ErrNoBearer  = errors.New("tokens: authorization header missing")
	ErrBadBearer = errors.New("tokens: authorization header malformed")
)

// ParseBearer extracts the token from an "Authorization: Bearer <token>" value.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", ErrNoBearer
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrBadBearer
	}
	return parts[1], nil
}
