package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/delivery_platform/pkg/db"
	"github.com/Skotchmaster/delivery_platform/pkg/tokens"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := db.Open(context.Background(), db.Config{Driver: db.DriverSQLite, DSN: dsn, Quiet: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := &GormRepo{DB: gdb}
	require.NoError(t, r.Migrate(context.Background()))
	return r
}

func newUser(username string) *models.User {
	return &models.User{
		ID:           uuid.NewString(),
		Email:        username + "@x.com",
		Username:     username,
		PasswordHash: "$2a$04$placeholder",
		Role:         tokens.RoleCliente,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
}
