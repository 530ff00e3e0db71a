package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serviceRowColumns = []string{"id", "name", "description", "base_price", "max_price", "icon", "created_at"}

func TestServiceRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewServiceRepository(db)
	ctx := context.Background()

	t.Run("List", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM services ORDER BY name`).
			WillReturnRows(sqlmock.NewRows(serviceRowColumns).
				AddRow(uuid.New().String(), "Electrician", "Wiring", 299.0, nil, "bolt", time.Now()).
				AddRow(uuid.New().String(), "Plumber", "Pipes", 499.0, 999.0, "wrench", time.Now()))

		services, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, services, 2)
		assert.Nil(t, services[0].MaxPrice)
		require.NotNil(t, services[1].MaxPrice)
		assert.Equal(t, 999.0, *services[1].MaxPrice)
	})

	t.Run("Get By Name Missing", func(t *testing.T) {
		mock.ExpectQuery(`FROM services WHERE name`).
			WithArgs("Painter").
			WillReturnRows(sqlmock.NewRows(serviceRowColumns))

		_, err := repo.GetByName(ctx, "Painter")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Create Duplicate", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO services`).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, &models.Service{Name: "Plumber"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("Update Missing", func(t *testing.T) {
		s := &models.Service{ID: uuid.New(), Name: "Plumber", BasePrice: 599}
		mock.ExpectExec(`UPDATE services`).
			WithArgs("Plumber", "", 599.0, nil, "", s.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Update(ctx, s), ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectExec(`DELETE FROM services WHERE id`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, id))
	})

	t.Run("Delete referenced by bookings", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectExec(`DELETE FROM services WHERE id`).
			WithArgs(id).
			WillReturnError(&pq.Error{Code: "23503"})

		assert.ErrorIs(t, repo.Delete(ctx, id), ErrInUse)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
