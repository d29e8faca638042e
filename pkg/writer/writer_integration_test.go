package writer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplink/legacymigrate/pkg/testhelpers"
)

func TestPostgresWriterInsertAndExists(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()
	w := NewPostgresWriter(testDB.DB)

	id := uuid.NewString()
	phone := "15622252279"

	_, found, err := w.Exists(ctx, "users", "phone", phone)
	require.NoError(t, err)
	assert.False(t, found)

	err = w.Insert(ctx, "users", map[string]any{
		"id":         id,
		"username":   "ouyang",
		"phone":      phone,
		"locked":     false,
		"created_at": "2023-11-14T22:13:20.000Z",
		"bank_id":    nil,
	})
	require.NoError(t, err)

	gotID, found, err := w.Exists(ctx, "users", "phone", phone)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, id, gotID)

	// A second insert with the same natural key violates the unique
	// constraint; the pass relies on Exists to skip instead.
	err = w.Insert(ctx, "users", map[string]any{
		"id":    uuid.NewString(),
		"phone": phone,
	})
	assert.Error(t, err)
}

func TestPostgresWriterForeignKeySurrogates(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()
	w := NewPostgresWriter(testDB.DB)

	bankID := uuid.NewString()
	require.NoError(t, w.Insert(ctx, "banks", map[string]any{
		"id":   bankID,
		"name": "ICBC",
	}))

	userID := uuid.NewString()
	require.NoError(t, w.Insert(ctx, "users", map[string]any{
		"id":      userID,
		"phone":   "13900001111",
		"bank_id": bankID,
	}))

	gotID, found, err := w.Exists(ctx, "users", "phone", "13900001111")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, userID, gotID)
}
