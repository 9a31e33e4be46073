package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Skotchmaster/delivery_platform/pkg/events"
	"github.com/Skotchmaster/delivery_platform/pkg/hash"
	"github.com/Skotchmaster/delivery_platform/pkg/logging"
	"github.com/Skotchmaster/delivery_platform/pkg/tokens"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/models"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/repo"
)

const (
	// bcrypt ignores input past this length.
	maxPasswordBytes = 72

	minUsernameLen = 3
	maxUsernameLen = 100
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	ListUsers(ctx context.Context, offset, limit int) ([]models.User, int64, error)
	UpdateUser(ctx context.Context, id string, patch repo.UserPatch) (*models.User, error)
}

type AuthService struct {
	Users  UserStore
	Ledger repo.Ledger
	Hasher hash.Hasher
	Codec  *tokens.Codec
	// Events may be nil.
	Events events.Publisher
	Now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName *string
	Role     tokens.Role
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
	AccessExp    time.Time
	RefreshExp   time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) publish(ctx context.Context, ev events.Event) {
	if s.Events == nil {
		return
	}
	ev.At = s.now()
	if err := s.Events.Publish(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", ev.Type, "error", err)
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	switch {
	case in.Email == "":
		return nil, fmt.Errorf("%w: email required", ErrValidation)
	case in.Username == "":
		return nil, fmt.Errorf("%w: username required", ErrValidation)
	case utf8.RuneCountInString(in.Username) < minUsernameLen || utf8.RuneCountInString(in.Username) > maxUsernameLen:
		return nil, fmt.Errorf("%w: username must be %d to %d characters", ErrValidation, minUsernameLen, maxUsernameLen)
	case in.Password == "":
		return nil, fmt.Errorf("%w: password required", ErrValidation)
	case len(in.Password) > maxPasswordBytes:
		return nil, fmt.Errorf("%w: password longer than %d bytes", ErrValidation, maxPasswordBytes)
	}
	role := in.Role
	if role == "" {
		role = tokens.RoleCliente
	}
	if _, err := tokens.ParseRole(string(role)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	pwHash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: pwHash,
		FullName:     in.FullName,
		Role:         role,
		IsActive:     true,
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 409, "reason", "email or username taken")
			return nil, fmt.Errorf("%w: email or username already registered", ErrConflict)
		}
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, err
	}

	l.Info("user_registered", "user_id", user.ID, "role", user.Role)
	s.publish(ctx, events.Event{Type: events.TypeUserRegistered, UserID: user.ID, Username: user.Username, Role: string(user.Role)})
	return user.Public(), nil
}

// burnHash spends the same bcrypt work on unknown usernames as on real ones.
func (s *AuthService) burnHash(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.Hash(uuid.NewString())
	})
	if s.dummyHash != "" {
		_, _ = s.Hasher.Verify(password, s.dummyHash)
	}
}

// Login answers every rejection with the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", ErrValidation)
	}

	user, err := s.Users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.burnHash(password)
			l.Warn("login_failed", "status", 401, "reason", "unknown user")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	ok, err := s.Hasher.Verify(password, user.PasswordHash)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "stored hash unreadable", "user_id", user.ID, "error", err)
		return nil, err
	}
	if !ok {
		l.Warn("login_failed", "status", 401, "reason", "wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		l.Warn("login_failed", "status", 401, "reason", "inactive user", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	if err := s.Users.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot update last login", "error", err)
		return nil, err
	}

	access, accessExp, err := s.Codec.IssueAccess(user.ID, user.Username, user.Role)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	refresh, refreshExp, err := s.Codec.IssueRefresh(user.ID)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	l.Info("login_successful", "user_id", user.ID)
	s.publish(ctx, events.Event{Type: events.TypeUserLoggedIn, UserID: user.ID, Username: user.Username, Role: string(user.Role)})

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.Codec.AccessTTL() / time.Second),
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// Refresh mints a new access token. Refresh tokens are not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Authenticate(ctx, refreshToken, tokens.KindRefresh)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			l.Warn("refresh_failed", "status", 401, "error", err)
		}
		return nil, err
	}

	user, err := s.Users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "subject no longer exists", "user_id", claims.Subject)
			return nil, ErrInvalidCredentials
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	if !user.IsActive {
		l.Warn("refresh_failed", "status", 401, "reason", "inactive user", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	access, accessExp, err := s.Codec.IssueAccess(user.ID, user.Username, user.Role)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}

	return &TokenPair{
		AccessToken: access,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.Codec.AccessTTL() / time.Second),
		AccessExp:   accessExp,
	}, nil
}

// Revoke puts token into the ledger until its own expiry. Revoking a token
// twice succeeds. A non-empty subjectID must match the token's subject.
func (s *AuthService) Revoke(ctx context.Context, token, subjectID string) error {
	l := logging.FromContext(ctx).With("svc", "auth.revoke")

	claims, err := s.Codec.Verify(token)
	if err != nil {
		l.Warn("revoke_failed", "status", 401, "error", err)
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if subjectID != "" && subjectID != claims.Subject {
		l.Warn("revoke_failed", "status", 401, "reason", "subject mismatch")
		return fmt.Errorf("%w: subject mismatch", ErrInvalidToken)
	}

	if err := s.Ledger.Record(ctx, token, claims.ExpiresAt.Time); err != nil {
		if errors.Is(err, repo.ErrAlreadyRevoked) {
			l.Info("token_already_revoked", "user_id", claims.Subject)
			return nil
		}
		l.Error("revoke_failed", "status", 500, "error", err)
		return err
	}

	l.Info("token_revoked", "user_id", claims.Subject, "kind", claims.TokenKind())
	s.publish(ctx, events.Event{Type: events.TypeTokenRevoked, UserID: claims.Subject, Username: claims.Username})
	return nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*models.PublicUser, error) {
	user, err := s.Users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user.Public(), nil
}

// Authenticate is verify followed by the kind check and the ledger lookup.
// Token problems are reported as ErrInvalidToken; ledger failures are
// returned as-is so callers can fail closed with a server error.
func (s *AuthService) Authenticate(ctx context.Context, token string, want tokens.Kind) (*tokens.Claims, error) {
	claims, err := s.Codec.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TokenKind() != want {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, want)
	}
	revoked, err := s.Ledger.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("revocation lookup: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
	}
	return claims, nil
}

// IsRevoked exposes the ledger to the bearer middleware.
func (s *AuthService) IsRevoked(ctx context.Context, token string) (bool, error) {
	return s.Ledger.IsRevoked(ctx, token)
}
