package sql

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stockkeep/inventory-service/internal/model"
	"github.com/stockkeep/inventory-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepository(db)
	ctx := context.Background()

	event := &model.Event{
		EventType: model.EventTypeProductCreated,
		EventData: json.RawMessage(`{"action":"created","product_id":1}`),
	}

	mock.ExpectPrepare("INSERT INTO events").
		ExpectExec().
		WithArgs(sqlmock.AnyArg(), event.EventType, []byte(event.EventData), model.EventStatusPending, sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := repo.Create(ctx, event)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, model.EventStatusPending, created.Status)
	assert.False(t, created.CreatedAt.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepository(db)
	ctx := context.Background()

	id1 := uuid.New()
	id2 := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "event_type", "event_data", "status", "created_at", "processed_at"}).
		AddRow(id1, model.EventTypeProductCreated, []byte(`{}`), model.EventStatusPending, now, nil).
		AddRow(id2, model.EventTypeProductDeleted, []byte(`{}`), model.EventStatusPending, now, nil)

	mock.ExpectPrepare("SELECT .+ FROM events WHERE status = \\$1 ORDER BY created_at ASC LIMIT \\$2").
		ExpectQuery().
		WithArgs(model.EventStatusPending, 100).
		WillReturnRows(rows)

	events, err := repo.ListPending(ctx, 100)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, id1, events[0].ID)
	assert.Nil(t, events[0].ProcessedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepository(db)
	ctx := context.Background()
	id := uuid.New()

	t.Run("marks processed", func(t *testing.T) {
		mock.ExpectPrepare("UPDATE events SET status = \\$1, processed_at = \\$2 WHERE id = \\$3").
			ExpectExec().
			WithArgs(model.EventStatusProcessed, sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(ctx, id, model.EventStatusProcessed)
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown event", func(t *testing.T) {
		mock.ExpectPrepare("UPDATE events SET status = \\$1, processed_at = \\$2 WHERE id = \\$3").
			ExpectExec().
			WithArgs(model.EventStatusFailed, sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(ctx, id, model.EventStatusFailed)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
