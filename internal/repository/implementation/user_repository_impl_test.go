package implementation_test

import (
	"context"
	"testing"

	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/pkg/dbtest"
	"notekeeper-be/internal/repository/implementation"
	"notekeeper-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_FindByEmail(t *testing.T) {
	db := dbtest.New(t)
	repo := implementation.NewUserRepository(db)
	ctx := context.Background()

	user := &entity.User{Id: uuid.New(), Email: "ada@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindOne(ctx, specification.ByEmail{Email: "  ADA@example.com "})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.Id, found.Id)

	missing, err := repo.FindOne(ctx, specification.ByEmail{Email: "nobody@example.com"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}
