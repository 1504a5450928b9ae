package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"gamehub/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthServiceRequiresLongSecret(t *testing.T) {
	_, err := NewAuthService(nil, AuthOptions{Secret: "short"})
	assert.Error(t, err)
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	conn := newTestDB(t)
	auth := newTestAuth(t, conn)
	ctx := context.Background()

	a, tokenA, err := auth.Register(ctx, "Alice", "Alice@Example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, a.Role)
	assert.Equal(t, "alice@example.com", a.Email)
	assert.NotEmpty(t, tokenA)

	b, _, err := auth.Register(ctx, "Bob", "bob@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, b.Role)

	var state models.BootstrapState
	require.NoError(t, conn.First(&state, 1).Error)
	assert.True(t, state.AdminClaimed)
}

func TestRegisterConcurrentlyYieldsOneAdmin(t *testing.T) {
	conn := newTestDB(t)
	auth := newTestAuth(t, conn)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := auth.Register(context.Background(), "User", fmt.Sprintf("user%d@example.com", i), "secret123")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	var admins, users int64
	conn.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins)
	conn.Model(&models.User{}).Count(&users)
	assert.EqualValues(t, 1, admins)
	assert.EqualValues(t, n, users)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	conn := newTestDB(t)
	auth := newTestAuth(t, conn)
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	_, _, err = auth.Register(ctx, "Alice Again", " ALICE@example.com ", "secret456")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLoginAndAuthenticate(t *testing.T) {
	conn := newTestDB(t)
	auth := newTestAuth(t, conn)
	ctx := context.Background()

	registered, _, err := auth.Register(ctx, "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = auth.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user, token, err := auth.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	resolved, p, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, resolved.ID)
	assert.Equal(t, registered.ID, p.UserID)
	assert.True(t, p.IsAdmin())
	assert.NotEmpty(t, p.TokenID)

	var record models.AccessToken
	require.NoError(t, conn.Where("token_id = ?", p.TokenID).First(&record).Error)
	assert.NotNil(t, record.LastUsedAt)
}

func TestLogoutRevokesOnlyPresentedToken(t *testing.T) {
	conn := newTestDB(t)
	auth := newTestAuth(t, conn)
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	_, first, err := auth.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	_, second, err := auth.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	_, p, err := auth.Authenticate(ctx, first)
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx, p))

	_, _, err = auth.Authenticate(ctx, first)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, _, err = auth.Authenticate(ctx, second)
	assert.NoError(t, err)

	assert.ErrorIs(t, auth.Logout(ctx, p), ErrUnauthorized)
}

func TestBannedUserCannotLoginOrUseTokens(t *testing.T) {
	conn := newTestDB(t)
	auth := newTestAuth(t, conn)
	users := NewUserService(conn)
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "Admin", "admin@example.com", "secret123")
	require.NoError(t, err)
	bob, token, err := auth.Register(ctx, "Bob", "bob@example.com", "secret123")
	require.NoError(t, err)

	_, err = users.SetBanned(ctx, bob.ID, true)
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "bob@example.com", "secret123")
	assert.ErrorIs(t, err, ErrBanned)
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = users.SetBanned(ctx, bob.ID, false)
	require.NoError(t, err)
	_, _, err = auth.Login(ctx, "bob@example.com", "secret123")
	assert.NoError(t, err)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	conn := newTestDB(t)
	auth := newTestAuth(t, conn)
	ctx := context.Background()

	user, token, err := auth.Register(ctx, "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = auth.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   fmt.Sprint(user.ID),
		ID:        "forged",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("another-secret-another-secret-0000"))
	require.NoError(t, err)
	_, _, err = auth.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, ErrUnauthorized)

	auth.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, _, err = auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	purged, err := auth.PurgeExpiredTokens(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)
}
