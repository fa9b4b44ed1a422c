package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
	"github.com/jcmexdev/shoe-fulfillment/internal/order"
	"github.com/jcmexdev/shoe-fulfillment/internal/order/domain"
	"github.com/jcmexdev/shoe-fulfillment/internal/order/sqlite"
	"github.com/jcmexdev/shoe-fulfillment/internal/storage/sqlitedb"
)

func newTestRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	db, err := sqlitedb.Open(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	repo, err := sqlite.NewRepository(db)
	require.NoError(t, err)
	return repo
}

func sampleOrder(id, number string, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:              id,
		UserID:          "u1",
		Number:          number,
		Status:          domain.StatusPending,
		Total:           254.40,
		ShippingAddress: "1 Main St",
		PhoneNumber:     "+49123",
		Lines: []domain.Line{
			{ID: id + "-l1", ProductID: "p1", Size: 42, Quantity: 2, UnitPrice: 89.90, Subtotal: 179.80},
			{ID: id + "-l2", ProductID: "p2", Size: 44, Quantity: 1, UnitPrice: 74.60, Subtotal: 74.60},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestInsertAndFindByID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	now := time.Now().UTC().Truncate(time.Millisecond)
	want := sampleOrder("o1", "ORD-20260901-A1B2", now)
	require.NoError(t, repo.Insert(ctx, want))

	got, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, want.Number, got.Number)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, want.Total, got.Total)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "p1", got.Lines[0].ProductID)
	assert.True(t, got.CreatedAt.Equal(now), "created_at should round-trip, got %v", got.CreatedAt)
}

func TestInsertDuplicateNumberReportsNumberTaken(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	now := time.Now().UTC()
	require.NoError(t, repo.Insert(ctx, sampleOrder("o1", "ORD-20260901-A1B2", now)))

	err := repo.Insert(ctx, sampleOrder("o2", "ORD-20260901-A1B2", now))
	assert.True(t, errors.Is(err, order.ErrNumberTaken), "expected ErrNumberTaken, got %v", err)

	// The losing insert must leave nothing behind.
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDeleteCascadesLines(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	now := time.Now().UTC()
	require.NoError(t, repo.Insert(ctx, sampleOrder("o1", "ORD-20260901-A1B2", now)))
	require.NoError(t, repo.Delete(ctx, "o1"))

	_, err := repo.FindByID(ctx, "o1")
	assert.True(t, fault.IsKind(err, fault.KindNotFound))

	// Re-inserting under the same number must succeed once the old row and
	// its lines are gone.
	require.NoError(t, repo.Insert(ctx, sampleOrder("o2", "ORD-20260901-A1B2", now)))

	got, err := repo.FindByID(ctx, "o2")
	require.NoError(t, err)
	assert.Len(t, got.Lines, 2)
}

func TestDeleteUnknownOrder(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.Delete(context.Background(), "nope")
	assert.True(t, fault.IsKind(err, fault.KindNotFound))
}

func TestFindByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	base := time.Now().UTC().Truncate(time.Second)
	older := sampleOrder("o1", "ORD-20260901-AAAA", base.Add(-time.Hour))
	newer := sampleOrder("o2", "ORD-20260901-BBBB", base)
	foreign := sampleOrder("o3", "ORD-20260901-CCCC", base)
	foreign.UserID = "u2"

	require.NoError(t, repo.Insert(ctx, older))
	require.NoError(t, repo.Insert(ctx, newer))
	require.NoError(t, repo.Insert(ctx, foreign))

	got, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "o2", got[0].ID)
	assert.Equal(t, "o1", got[1].ID)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	require.NoError(t, repo.Insert(ctx, sampleOrder("o1", "ORD-20260901-A1B2", created)))

	updated := time.Now().UTC().Truncate(time.Millisecond)
	got, err := repo.UpdateStatus(ctx, "o1", domain.StatusShipped, updated)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, got.Status)
	assert.True(t, got.UpdatedAt.Equal(updated))
	assert.True(t, got.CreatedAt.Equal(created))

	_, err = repo.UpdateStatus(ctx, "missing", domain.StatusShipped, updated)
	assert.True(t, fault.IsKind(err, fault.KindNotFound))
}
