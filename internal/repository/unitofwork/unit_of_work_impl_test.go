package unitofwork_test

import (
	"context"
	"testing"

	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/pkg/dbtest"
	"notekeeper-be/internal/repository/specification"
	"notekeeper-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	db := dbtest.New(t)
	factory := unitofwork.NewRepositoryFactory(db)
	ctx := context.Background()
	owner := dbtest.SeedUser(t, db)

	tests := []struct {
		name   string
		commit bool
		kept   bool
	}{
		{name: "commit keeps the write", commit: true, kept: true},
		{name: "rollback discards the write", commit: false, kept: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uow := factory.NewUnitOfWork(ctx)
			require.NoError(t, uow.Begin(ctx))

			note := &entity.Note{Id: uuid.New(), Title: "Groceries", OwnerId: owner}
			require.NoError(t, uow.NoteRepository().Create(ctx, note))

			if tt.commit {
				require.NoError(t, uow.Commit())
			} else {
				require.NoError(t, uow.Rollback())
			}

			found, err := factory.NewUnitOfWork(ctx).NoteRepository().FindOne(ctx, specification.ByID{ID: note.Id})
			require.NoError(t, err)
			assert.Equal(t, tt.kept, found != nil)
		})
	}
}

func TestUnitOfWork_TransactionState(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	assert.ErrorIs(t, uow.Commit(), unitofwork.ErrNoTx)
	assert.ErrorIs(t, uow.Rollback(), unitofwork.ErrNoTx)

	require.NoError(t, uow.Begin(ctx))
	assert.ErrorIs(t, uow.Begin(ctx), unitofwork.ErrTxAlreadyStarted)
	require.NoError(t, uow.Commit())

	// deferred rollback after a commit is harmless
	assert.ErrorIs(t, uow.Rollback(), unitofwork.ErrNoTx)
}

func TestUnitOfWork_ForUpdateReadsInsideTransaction(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	owner := dbtest.SeedUser(t, db)

	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	note := &entity.Note{Id: uuid.New(), Title: "Groceries", OwnerId: owner}
	require.NoError(t, uow.NoteRepository().Create(ctx, note))

	found, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: note.Id},
		specification.OwnedBy{OwnerID: owner},
		specification.ForUpdate{},
	)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Groceries", found.Title)
}
