package tokens

import (
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch Kind(s) {
	case KindAccess, KindRefresh:
		*k = Kind(s)
		return nil
	case "":
		*k = KindAccess
		return nil
	}
	return fmt.Errorf("tokens: unknown token kind %q", s)
}

// Claims is the payload signed into every token. Access tokens carry
// username and role; refresh tokens carry kind=refresh and a jti.
type Claims struct {
	Username string `json:"username,omitempty"`
	Role     Role   `json:"role,omitempty"`
	Kind     Kind   `json:"kind,omitempty"`
	jwt.RegisteredClaims
}

// TokenKind treats a missing kind as an access token.
func (c *Claims) TokenKind() Kind {
	if c.Kind == "" {
		return KindAccess
	}
	return c.Kind
}
