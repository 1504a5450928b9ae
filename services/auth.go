package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gamehub/models"
	"gamehub/monitoring"
	"gamehub/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tokenIssuer = "gamehub"

var ErrBanned = fmt.Errorf("%w: account is banned", ErrForbidden)

// Principal is the authenticated caller, resolved once per request.
type Principal struct {
	UserID  uint
	Role    models.Role
	TokenID string
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// Owns reports whether the principal may act on a resource owned by userID.
func (p Principal) Owns(userID uint) bool {
	return p.IsAdmin() || p.UserID == userID
}

type AuthOptions struct {
	Secret   string
	TokenTTL time.Duration
	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
}

// AuthService registers users and issues revocable bearer tokens. A token is
// an HS256 JWT whose jti names an access_tokens row; deleting the row
// revokes that token alone.
type AuthService struct {
	db       *gorm.DB
	secret   []byte
	ttl      time.Duration
	hashCost int
	now      func() time.Time
}

func NewAuthService(db *gorm.DB, opts AuthOptions) (*AuthService, error) {
	if len(opts.Secret) < 32 {
		return nil, errors.New("JWT_SECRET must be at least 32 characters")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	return &AuthService{
		db:       db,
		secret:   []byte(opts.Secret),
		ttl:      opts.TokenTTL,
		hashCost: opts.HashCost,
		now:      time.Now,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user and returns it with a fresh token. The first user
// ever registered becomes admin; the decision is taken under a lock on the
// bootstrap_state row so concurrent first registrations cannot both win.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	var token string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var state models.BootstrapState
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&state, 1).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("bootstrap state missing, run migrations")
			}
			return err
		}

		var taken int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrDuplicateEmail
		}

		if !state.AdminClaimed {
			user.Role = models.RoleAdmin
			if err := tx.Model(&state).UpdateColumn("admin_claimed", true).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&user).Error; err != nil {
			return translate(err, "user", ErrDuplicateEmail)
		}

		var err error
		token, err = s.issue(tx, user.ID, "api_token")
		return err
	})
	if err != nil {
		return nil, "", err
	}

	utils.LogInfo("User registered", map[string]interface{}{"user_id": user.ID, "role": user.Role})
	return &user, token, nil
}

// Login verifies credentials and issues a new token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		monitoring.AuthenticationAttempts.WithLabelValues("failure").Inc()
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		monitoring.AuthenticationAttempts.WithLabelValues("failure").Inc()
		return nil, "", ErrInvalidCredentials
	}
	if user.IsBanned {
		monitoring.AuthenticationAttempts.WithLabelValues("banned").Inc()
		return nil, "", ErrBanned
	}

	token, err := s.issue(s.db.WithContext(ctx), user.ID, "auth_token")
	if err != nil {
		return nil, "", err
	}
	monitoring.AuthenticationAttempts.WithLabelValues("success").Inc()
	return &user, token, nil
}

// Logout revokes only the token the principal authenticated with.
func (s *AuthService) Logout(ctx context.Context, p Principal) error {
	res := s.db.WithContext(ctx).Where("token_id = ? AND user_id = ?", p.TokenID, p.UserID).Delete(&models.AccessToken{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUnauthorized
	}
	return nil
}

// Authenticate validates a raw bearer token and resolves its user.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*models.User, Principal, error) {
	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, Principal{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || claims.ID == "" {
		return nil, Principal{}, fmt.Errorf("%w: malformed token", ErrUnauthorized)
	}

	conn := s.db.WithContext(ctx)
	var record models.AccessToken
	err = conn.Preload("User").
		Where("token_id = ? AND user_id = ?", claims.ID, uint(userID)).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Principal{}, fmt.Errorf("%w: token revoked", ErrUnauthorized)
	}
	if err != nil {
		return nil, Principal{}, err
	}
	if !record.ExpiresAt.After(s.now()) {
		return nil, Principal{}, fmt.Errorf("%w: token expired", ErrUnauthorized)
	}
	if record.User.IsBanned {
		return nil, Principal{}, ErrBanned
	}

	now := s.now()
	if err := conn.Model(&record).UpdateColumn("last_used_at", now).Error; err != nil {
		utils.LogWarn("Failed to touch access token", map[string]interface{}{"error": err.Error()})
	}

	user := record.User
	return &user, Principal{UserID: user.ID, Role: user.Role, TokenID: record.TokenID}, nil
}

func (s *AuthService) issue(tx *gorm.DB, userID uint, name string) (string, error) {
	now := s.now()
	record := models.AccessToken{
		UserID:    userID,
		TokenID:   uuid.NewString(),
		Name:      name,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := tx.Create(&record).Error; err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ID:        record.TokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// PurgeExpiredTokens deletes token rows past their expiry.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.AccessToken{})
	return res.RowsAffected, res.Error
}
