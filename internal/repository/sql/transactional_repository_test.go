package sql

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stockkeep/inventory-service/internal/model"
	"github.com/stockkeep/inventory-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(eventType string) *model.Event {
	return &model.Event{
		EventType: eventType,
		EventData: json.RawMessage(`{"action":"created","product_id":1}`),
	}
}

func testEventFor(eventType string) func(*model.Product) *model.Event {
	return func(*model.Product) *model.Event { return testEvent(eventType) }
}

func TestTransactionalRepository_CreateProductWithEvent(t *testing.T) {
	t.Run("commits product and event together", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewTransactionalRepository(db)

		mock.ExpectBegin()
		mock.ExpectPrepare("INSERT INTO products").
			ExpectQuery().
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectPrepare("INSERT INTO events").
			ExpectExec().
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		product := &model.Product{SKU: "A1", Name: "Widget", Price: 1999, Stock: 50, IsActive: true}
		created, err := repo.CreateProductWithEvent(context.Background(), product, testEventFor(model.EventTypeProductCreated))

		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on duplicate sku", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewTransactionalRepository(db)

		mock.ExpectBegin()
		mock.ExpectPrepare("INSERT INTO products").
			ExpectQuery().
			WillReturnError(&pgconn.PgError{Code: "23505", Detail: "Key (sku)=(A1) already exists."})
		mock.ExpectRollback()

		product := &model.Product{SKU: "A1", Name: "Widget", Price: 1999, Stock: 50, IsActive: true}
		created, err := repo.CreateProductWithEvent(context.Background(), product, testEventFor(model.EventTypeProductCreated))

		require.Error(t, err)
		assert.Nil(t, created)

		var uniqueErr *repository.UniqueConstraintError
		assert.ErrorAs(t, err, &uniqueErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the event insert fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewTransactionalRepository(db)

		mock.ExpectBegin()
		mock.ExpectPrepare("INSERT INTO products").
			ExpectQuery().
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectPrepare("INSERT INTO events").
			ExpectExec().
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		product := &model.Product{SKU: "A1", Name: "Widget", Price: 1999, Stock: 50, IsActive: true}
		_, err = repo.CreateProductWithEvent(context.Background(), product, testEventFor(model.EventTypeProductCreated))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create event")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionalRepository_UpdateProductWithEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTransactionalRepository(db)

	mock.ExpectBegin()
	mock.ExpectPrepare("UPDATE products").
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare("INSERT INTO events").
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	product := &model.Product{ID: 1, SKU: "A1", Name: "Widget", Price: 1999, Stock: 0, IsActive: true}
	updated, err := repo.UpdateProductWithEvent(context.Background(), product, testEvent(model.EventTypeProductUpdated))

	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.Stock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionalRepository_DeleteProductWithEvent(t *testing.T) {
	t.Run("commits delete and event together", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewTransactionalRepository(db)

		mock.ExpectBegin()
		mock.ExpectPrepare("DELETE FROM products").
			ExpectExec().
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectPrepare("INSERT INTO events").
			ExpectExec().
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err = repo.DeleteProductWithEvent(context.Background(), 1, testEvent(model.EventTypeProductDeleted))

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing product rolls back without an event", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewTransactionalRepository(db)

		mock.ExpectBegin()
		mock.ExpectPrepare("DELETE FROM products").
			ExpectExec().
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.DeleteProductWithEvent(context.Background(), 99999, testEvent(model.EventTypeProductDeleted))

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
