package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_CheckAvailability(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Available", func(t *testing.T) {
		mock.ExpectQuery("SELECT stock >= \\$1").
			WithArgs(3, uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(true))

		ok, err := repo.CheckAvailability(context.Background(), 1, 3)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("NotEnough", func(t *testing.T) {
		mock.ExpectQuery("SELECT stock >= \\$1").
			WithArgs(99, uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(false))

		ok, err := repo.CheckAvailability(context.Background(), 1, 99)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		mock.ExpectQuery("SELECT stock >= \\$1").
			WithArgs(1, uint(404)).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

		_, err := repo.CheckAvailability(context.Background(), 404, 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_Decrement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("UPDATE products").
			WithArgs(2, uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(3))

		change, err := repo.Decrement(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.Equal(t, &StockChange{ProductID: 1, Previous: 5, New: 3}, change)
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		// Conditional update matched no row, but the product exists.
		mock.ExpectQuery("UPDATE products").
			WithArgs(10, uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := repo.Decrement(context.Background(), 1, 10)
		assert.ErrorIs(t, err, ErrInsufficientStock)

		var insufficientErr *InsufficientStockError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, uint(1), insufficientErr.ProductID)
		assert.Equal(t, 10, insufficientErr.Requested)
	})

	t.Run("ProductMissing", func(t *testing.T) {
		mock.ExpectQuery("UPDATE products").
			WithArgs(1, uint(404)).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(uint(404)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.Decrement(context.Background(), 404, 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery("UPDATE products").
			WillReturnError(errors.New("db error"))

		_, err := repo.Decrement(context.Background(), 1, 1)
		assert.Error(t, err)
	})
}

func TestRepository_Restore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("UPDATE products").
			WithArgs(2, uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(5))

		change, err := repo.Restore(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.Equal(t, &StockChange{ProductID: 1, Previous: 3, New: 5}, change)
	})

	t.Run("ProductMissing", func(t *testing.T) {
		mock.ExpectQuery("UPDATE products").
			WithArgs(1, uint(404)).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}))

		_, err := repo.Restore(context.Background(), 404, 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}
