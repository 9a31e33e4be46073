package transport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_RegisterRequest(t *testing.T) {
	t.Parallel()

	v := NewValidator()
	long := strings.Repeat("n", 256)

	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr string
	}{
		{name: "valid", req: RegisterRequest{Email: "a@x.com", Username: "alice", Password: "secret1"}},
		{name: "valid with role", req: RegisterRequest{Email: "a@x.com", Username: "alice", Password: "secret1", Role: "repartidor"}},
		{name: "bad email", req: RegisterRequest{Email: "nope", Username: "alice", Password: "secret1"}, wantErr: "email: email"},
		{name: "short username", req: RegisterRequest{Email: "a@x.com", Username: "al", Password: "secret1"}, wantErr: "username: min=3"},
		{name: "short password", req: RegisterRequest{Email: "a@x.com", Username: "alice", Password: "12345"}, wantErr: "password: min=6"},
		{name: "long full name", req: RegisterRequest{Email: "a@x.com", Username: "alice", Password: "secret1", FullName: &long}, wantErr: "full_name: max=255"},
		{name: "unknown role", req: RegisterRequest{Email: "a@x.com", Username: "alice", Password: "secret1", Role: "root"}, wantErr: "role: role"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.Validate(&tt.req)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, Describe(err), tt.wantErr)
		})
	}
}

func TestValidator_UpdateUserRequest(t *testing.T) {
	t.Parallel()

	v := NewValidator()
	admin := "admin"
	root := "root"

	require.NoError(t, v.Validate(&UpdateUserRequest{}))
	require.NoError(t, v.Validate(&UpdateUserRequest{Role: &admin}))
	require.Error(t, v.Validate(&UpdateUserRequest{Role: &root}))
}

func TestNewValidator_RoleRuleRegistered(t *testing.T) {
	t.Parallel()

	var v *Validator
	require.NotPanics(t, func() { v = NewValidator() })

	err := v.Validate(&RegisterRequest{Email: "a@x.com", Username: "abc", Password: "secret1", Role: "ROOT"})
	require.Error(t, err)
	assert.Contains(t, Describe(err), "role: role")
}

func TestRegisterRequest_Normalize(t *testing.T) {
	t.Parallel()

	req := RegisterRequest{Email: " a@x.com ", Username: "  ab  ", Password: " keep "}
	req.Normalize()
	assert.Equal(t, "a@x.com", req.Email)
	assert.Equal(t, "ab", req.Username)
	assert.Equal(t, " keep ", req.Password)

	err := NewValidator().Validate(&req)
	require.Error(t, err)
	assert.Contains(t, Describe(err), "username: min=3")
}
