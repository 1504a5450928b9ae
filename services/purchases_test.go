package services

import (
	"context"
	"testing"

	"gamehub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPurchaseOncePerUserAndGame(t *testing.T) {
	conn := newTestDB(t)
	svc := NewPurchaseService(conn)
	ctx := context.Background()
	user := createUser(t, conn, "buyer@example.com", models.RoleUser)
	game := createGame(t, conn, "epic-quest", 39.99)

	purchase, err := svc.Record(ctx, user.ID, game.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 39.99, purchase.Price)
	assert.False(t, purchase.PurchasedAt.IsZero())

	_, err = svc.Record(ctx, user.ID, game.ID, ptr(5.0))
	assert.ErrorIs(t, err, ErrAlreadyPurchased)
	assert.ErrorIs(t, err, ErrConflict)

	var count int64
	conn.Model(&models.Purchase{}).Count(&count)
	assert.EqualValues(t, 1, count)

	// purchases never touch the rating
	assert.Equal(t, 0.0, storedAverage(t, conn, game.ID))
}

func TestRecordPurchaseExplicitPriceAndMissingRows(t *testing.T) {
	conn := newTestDB(t)
	svc := NewPurchaseService(conn)
	ctx := context.Background()
	user := createUser(t, conn, "buyer@example.com", models.RoleUser)
	game := createGame(t, conn, "sale", 60)

	purchase, err := svc.Record(ctx, user.ID, game.ID, ptr(19.5))
	require.NoError(t, err)
	assert.Equal(t, 19.5, purchase.Price)

	_, err = svc.Record(ctx, user.ID, 999, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Record(ctx, 999, game.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPurchaseAccess(t *testing.T) {
	conn := newTestDB(t)
	svc := NewPurchaseService(conn)
	ctx := context.Background()
	owner := createUser(t, conn, "owner@example.com", models.RoleUser)
	other := createUser(t, conn, "other@example.com", models.RoleUser)
	admin := createUser(t, conn, "admin@example.com", models.RoleAdmin)
	game := createGame(t, conn, "lib", 15)

	purchase, err := svc.Record(ctx, owner.ID, game.ID, nil)
	require.NoError(t, err)

	library, err := svc.ListForUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, library, 1)
	require.NotNil(t, library[0].Game)
	assert.Equal(t, "lib", library[0].Game.Slug)

	_, err = svc.Get(ctx, purchase.ID, asUser(other))
	assert.ErrorIs(t, err, ErrForbidden)
	got, err := svc.Get(ctx, purchase.ID, asUser(admin))
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.UserID)

	updated, err := svc.UpdatePrice(ctx, purchase.ID, 9.99)
	require.NoError(t, err)
	assert.Equal(t, 9.99, updated.Price)

	require.NoError(t, svc.Delete(ctx, purchase.ID))
	assert.ErrorIs(t, svc.Delete(ctx, purchase.ID), ErrNotFound)

	// the pair can be bought again once the row is gone
	_, err = svc.Record(ctx, owner.ID, game.ID, nil)
	assert.NoError(t, err)
}
