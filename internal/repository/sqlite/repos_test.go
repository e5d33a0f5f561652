package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/domain"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(context.Background(), DefaultConfig(":memory:"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewTable_RejectsBadNames(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"", "1table", "users; DROP TABLE users", "a-b"} {
		_, err := NewTable(ctx, db, name)
		assert.Error(t, err, "table name %q should be rejected", name)
	}

	_, err := NewTable(ctx, db, "valid_name_2")
	assert.NoError(t, err)
}

func TestUserRepository_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	repo, err := NewUserRepository(ctx, db, "users")
	require.NoError(t, err)

	user := domain.NewUser("user-1", "ada@example.com", "Ada Lovelace")
	require.NoError(t, repo.Put(ctx, user))

	got, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "ada", got.Username)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "Lovelace", got.LastName)

	exists, err := repo.Exists(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_UpdateMergesFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	repo, err := NewUserRepository(ctx, db, "users")
	require.NoError(t, err)

	user := domain.NewUser("user-1", "ada@example.com", "Ada Lovelace")
	user.Country = "UK"
	require.NoError(t, repo.Put(ctx, user))

	updatedAt := time.Now().UTC().Format(time.RFC3339Nano)
	got, err := repo.Update(ctx, "user-1", repository.Changes{
		"bio":       "mathematician",
		"updatedAt": updatedAt,
	})
	require.NoError(t, err)

	// Changed fields merged, untouched fields intact.
	assert.Equal(t, "mathematician", got.Bio)
	assert.Equal(t, "UK", got.Country)
	assert.Equal(t, "ada@example.com", got.Email)

	// The merge is persisted, not just returned.
	reread, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "mathematician", reread.Bio)
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	repo, err := NewUserRepository(ctx, db, "users")
	require.NoError(t, err)

	_, err = repo.Update(ctx, "nope", repository.Changes{"bio": "x"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_DeleteIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	repo, err := NewUserRepository(ctx, db, "users")
	require.NoError(t, err)

	require.NoError(t, repo.Put(ctx, domain.NewUser("user-1", "a@b.c", "")))
	require.NoError(t, repo.Delete(ctx, "user-1"))
	require.NoError(t, repo.Delete(ctx, "user-1"))

	_, err = repo.Get(ctx, "user-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProductRepository_PutReplacesWhole(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	repo, err := NewProductRepository(ctx, db, "products")
	require.NoError(t, err)

	product := domain.NewProduct("Icon Pack", "100 icons", 9.99, "design", "seller-1")
	fileKey := "pack.zip"
	product.FileKey = &fileKey
	require.NoError(t, repo.Put(ctx, product))

	// A full put with no file key clears it.
	replacement := *product
	replacement.FileKey = nil
	require.NoError(t, repo.Put(ctx, &replacement))

	got, err := repo.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FileKey)
	assert.Equal(t, 9.99, got.Price)
}

func TestProductRepository_Scan(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	repo, err := NewProductRepository(ctx, db, "products")
	require.NoError(t, err)

	got, err := repo.Scan(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, repo.Put(ctx, domain.NewProduct("A", "", 1, "", "s1")))
	require.NoError(t, repo.Put(ctx, domain.NewProduct("B", "", 2, "", "s1")))
	require.NoError(t, repo.Put(ctx, domain.NewProduct("C", "", 3, "", "s2")))

	got, err = repo.Scan(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestOrderRepository_ListByBuyer(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	repo, err := NewOrderRepository(ctx, db, "orders")
	require.NoError(t, err)

	items := []domain.OrderItem{{ProductID: "prod-1", Quantity: 1, Price: 5}}
	require.NoError(t, repo.Put(ctx, domain.NewOrder("buyer-1", items, 5)))
	require.NoError(t, repo.Put(ctx, domain.NewOrder("buyer-1", items, 5)))
	require.NoError(t, repo.Put(ctx, domain.NewOrder("buyer-2", items, 5)))

	got, err := repo.ListByBuyer(ctx, "buyer-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, order := range got {
		assert.Equal(t, "buyer-1", order.UserID)
		assert.Equal(t, domain.OrderStatusPending, order.Status)
	}

	got, err = repo.ListByBuyer(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTablesAreIsolated(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	users, err := NewUserRepository(ctx, db, "users")
	require.NoError(t, err)
	products, err := NewProductRepository(ctx, db, "products")
	require.NoError(t, err)

	require.NoError(t, users.Put(ctx, domain.NewUser("shared-id", "a@b.c", "")))

	_, err = products.Get(ctx, "shared-id")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
