package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/delivery_platform/pkg/tokens"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/models"
)

func TestGormRepo_CreateUser_Conflicts(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateUser(ctx, newUser("alice")))

	sameUsername := newUser("alice")
	sameUsername.Email = "other@x.com"
	assert.ErrorIs(t, r.CreateUser(ctx, sameUsername), ErrUserAlreadyExist)

	sameEmail := newUser("bob")
	sameEmail.Email = "alice@x.com"
	assert.ErrorIs(t, r.CreateUser(ctx, sameEmail), ErrUserAlreadyExist)

	_, total, err := r.ListUsers(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestGormRepo_CreateUser_DeactivatedStillReserved(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	u := newUser("carol")
	require.NoError(t, r.CreateUser(ctx, u))
	inactive := false
	_, err := r.UpdateUser(ctx, u.ID, UserPatch{IsActive: &inactive})
	require.NoError(t, err)

	assert.ErrorIs(t, r.CreateUser(ctx, newUser("carol")), ErrUserAlreadyExist)
}

func TestGormRepo_CreateUser_ConcurrentSameUsername(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := newUser("racer")
			u.Email = fmt.Sprintf("racer%d@x.com", i)
			err := r.CreateUser(ctx, u)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrUserAlreadyExist):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)
}

// A row committed between the pre-check and the insert is caught by the
// unique index.
func TestGormRepo_CreateUser_UniqueIndexDecides(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	fired := false
	err := r.DB.Callback().Create().Before("gorm:create").Register("test:competing_insert", func(tx *gorm.DB) {
		if fired {
			return
		}
		if _, ok := tx.Statement.Model.(*models.User); !ok {
			return
		}
		fired = true
		now := time.Now().UTC()
		res := tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO users (id, email, username, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			uuid.NewString(), "other@x.com", "racer", "$2a$04$placeholder", string(tokens.RoleCliente), true, now, now,
		)
		if res.Error != nil {
			_ = tx.AddError(res.Error)
		}
	})
	require.NoError(t, err)

	err = r.CreateUser(ctx, newUser("racer"))
	require.True(t, fired)
	assert.ErrorIs(t, err, ErrUserAlreadyExist)

	var n int64
	require.NoError(t, r.DB.Model(&models.User{}).Where("username = ?", "racer").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestGormRepo_GetUser(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	u := newUser("dave")
	require.NoError(t, r.CreateUser(ctx, u))

	byName, err := r.GetUserByUsername(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byID, err := r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "dave@x.com", byID.Email)
	assert.Nil(t, byID.LastLogin)

	_, err = r.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.GetUserByID(ctx, "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormRepo_TouchLastLogin(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	u := newUser("erin")
	require.NoError(t, r.CreateUser(ctx, u))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.TouchLastLogin(ctx, u.ID, at))

	got, err := r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, at.Equal(got.LastLogin.UTC()))
}

func TestGormRepo_ListUsers_Pagination(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		u := newUser(fmt.Sprintf("user%d", i))
		u.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, r.CreateUser(ctx, u))
	}

	items, total, err := r.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, items, 2)
	assert.Equal(t, "user2", items[0].Username)
	assert.Equal(t, "user3", items[1].Username)
}

func TestGormRepo_UpdateUser(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	u := newUser("frank")
	require.NoError(t, r.CreateUser(ctx, u))

	name := "Frank Castle"
	role := tokens.RoleRepartidor
	got, err := r.UpdateUser(ctx, u.ID, UserPatch{FullName: &name, Role: &role})
	require.NoError(t, err)
	require.NotNil(t, got.FullName)
	assert.Equal(t, name, *got.FullName)
	assert.Equal(t, tokens.RoleRepartidor, got.Role)
	assert.True(t, got.IsActive)

	same, err := r.UpdateUser(ctx, u.ID, UserPatch{})
	require.NoError(t, err)
	assert.Equal(t, tokens.RoleRepartidor, same.Role)

	_, err = r.UpdateUser(ctx, "missing-id", UserPatch{FullName: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

