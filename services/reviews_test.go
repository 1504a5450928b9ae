package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"gamehub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewAverageFollowsReviewSet(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReviewService(conn)
	ctx := context.Background()

	game := createGame(t, conn, "epic-quest", 39.99)
	a := createUser(t, conn, "a@example.com", models.RoleUser)
	b := createUser(t, conn, "b@example.com", models.RoleUser)
	c := createUser(t, conn, "c@example.com", models.RoleUser)

	_, err := svc.Submit(ctx, game.ID, a.ID, 8, "great")
	require.NoError(t, err)
	six, err := svc.Submit(ctx, game.ID, b.ID, 6, "ok")
	require.NoError(t, err)
	assert.Equal(t, 7.0, storedAverage(t, conn, game.ID))

	_, err = svc.Submit(ctx, game.ID, c.ID, 9, "")
	require.NoError(t, err)
	assert.Equal(t, 7.67, storedAverage(t, conn, game.ID))

	deleted, err := svc.Delete(ctx, six.ID, asUser(b))
	require.NoError(t, err)
	assert.Equal(t, six.ID, deleted.ID)
	assert.Equal(t, 8.5, storedAverage(t, conn, game.ID))
}

func TestSubmitReviewRejectsDuplicate(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReviewService(conn)
	ctx := context.Background()
	game := createGame(t, conn, "dup", 10)
	user := createUser(t, conn, "u@example.com", models.RoleUser)

	_, err := svc.Submit(ctx, game.ID, user.ID, 7, "")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, game.ID, user.ID, 3, "again")
	require.ErrorIs(t, err, ErrDuplicateReview)
	assert.ErrorIs(t, err, ErrConflict)

	var count int64
	conn.Model(&models.Review{}).Where("game_id = ?", game.ID).Count(&count)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, 7.0, storedAverage(t, conn, game.ID))
}

func TestSubmitReviewValidatesRating(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReviewService(conn)
	game := createGame(t, conn, "bounds", 10)
	user := createUser(t, conn, "u@example.com", models.RoleUser)

	for _, rating := range []int{0, -1, 11} {
		_, err := svc.Submit(context.Background(), game.ID, user.ID, rating, "")
		assert.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
		assert.ErrorIs(t, err, ErrValidation)
	}
	for _, rating := range []int{1, 10} {
		other := createUser(t, conn, fmt.Sprintf("r%d@example.com", rating), models.RoleUser)
		_, err := svc.Submit(context.Background(), game.ID, other.ID, rating, "")
		assert.NoError(t, err, "rating %d", rating)
	}
}

func TestSubmitReviewUnknownGame(t *testing.T) {
	conn := newTestDB(t)
	user := createUser(t, conn, "u@example.com", models.RoleUser)

	_, err := NewReviewService(conn).Submit(context.Background(), 999, user.ID, 5, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOnlyReviewResetsAverage(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReviewService(conn)
	ctx := context.Background()
	game := createGame(t, conn, "solo", 10)
	user := createUser(t, conn, "u@example.com", models.RoleUser)

	review, err := svc.Submit(ctx, game.ID, user.ID, 9, "")
	require.NoError(t, err)
	assert.Equal(t, 9.0, storedAverage(t, conn, game.ID))

	_, err = svc.Delete(ctx, review.ID, asUser(user))
	require.NoError(t, err)
	assert.Equal(t, 0.0, storedAverage(t, conn, game.ID))
}

func TestDeleteReviewPermissions(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReviewService(conn)
	ctx := context.Background()
	game := createGame(t, conn, "perm", 10)
	admin := createUser(t, conn, "admin@example.com", models.RoleAdmin)
	author := createUser(t, conn, "author@example.com", models.RoleUser)
	stranger := createUser(t, conn, "stranger@example.com", models.RoleUser)

	review, err := svc.Submit(ctx, game.ID, author.ID, 4, "")
	require.NoError(t, err)

	_, err = svc.Delete(ctx, review.ID, asUser(stranger))
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 4.0, storedAverage(t, conn, game.ID))

	_, err = svc.Delete(ctx, review.ID, asUser(admin))
	require.NoError(t, err)

	_, err = svc.Delete(ctx, review.ID, asUser(admin))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReviewRecomputesOnRatingChange(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReviewService(conn)
	ctx := context.Background()
	game := createGame(t, conn, "upd", 10)
	a := createUser(t, conn, "a@example.com", models.RoleUser)
	b := createUser(t, conn, "b@example.com", models.RoleUser)

	ra, err := svc.Submit(ctx, game.ID, a.ID, 4, "meh")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, game.ID, b.ID, 8, "")
	require.NoError(t, err)
	assert.Equal(t, 6.0, storedAverage(t, conn, game.ID))

	updated, err := svc.Update(ctx, ra.ID, asUser(a), ptr(10), nil)
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Rating)
	assert.Equal(t, "meh", updated.Comment)
	assert.Equal(t, 9.0, storedAverage(t, conn, game.ID))

	updated, err = svc.Update(ctx, ra.ID, asUser(a), nil, ptr("changed my mind"))
	require.NoError(t, err)
	assert.Equal(t, "changed my mind", updated.Comment)
	assert.Equal(t, 9.0, storedAverage(t, conn, game.ID))

	_, err = svc.Update(ctx, ra.ID, asUser(a), ptr(11), nil)
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.Update(ctx, ra.ID, asUser(b), ptr(1), nil)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(ctx, 12345, asUser(a), ptr(5), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListForGameNewestFirst(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReviewService(conn)
	ctx := context.Background()
	game := createGame(t, conn, "list", 10)
	a := createUser(t, conn, "a@example.com", models.RoleUser)
	b := createUser(t, conn, "b@example.com", models.RoleUser)

	first, err := svc.Submit(ctx, game.ID, a.ID, 5, "")
	require.NoError(t, err)
	second, err := svc.Submit(ctx, game.ID, b.ID, 6, "")
	require.NoError(t, err)

	reviews, err := svc.ListForGame(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, second.ID, reviews[0].ID)
	assert.Equal(t, first.ID, reviews[1].ID)
	require.NotNil(t, reviews[0].User)
	assert.Equal(t, "b@example.com", reviews[0].User.Email)

	_, err = svc.ListForGame(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentSubmitsKeepAverageConsistent(t *testing.T) {
	conn := newTestDB(t)
	svc := NewReviewService(conn)
	game := createGame(t, conn, "busy", 10)

	const writers = 12
	users := make([]*models.User, writers)
	for i := range users {
		users[i] = createUser(t, conn, fmt.Sprintf("w%d@example.com", i), models.RoleUser)
	}

	var wg sync.WaitGroup
	errs := make(chan error, writers*2)
	for i, u := range users {
		wg.Add(2)
		rating := i%10 + 1
		// each user also races a duplicate of their own review
		for j := 0; j < 2; j++ {
			go func(userID uint) {
				defer wg.Done()
				_, err := svc.Submit(context.Background(), game.ID, userID, rating, "")
				errs <- err
			}(u.ID)
		}
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrDuplicateReview):
			dup++
		}
	}
	assert.Equal(t, writers, ok)
	assert.Equal(t, writers, dup)

	var agg struct {
		Count int64
		Total int64
	}
	require.NoError(t, conn.Model(&models.Review{}).
		Select("COUNT(*) AS count, SUM(rating) AS total").
		Where("game_id = ?", game.ID).
		Scan(&agg).Error)
	assert.EqualValues(t, writers, agg.Count)
	assert.Equal(t, averageRating(agg.Total, agg.Count), storedAverage(t, conn, game.ID))
}
