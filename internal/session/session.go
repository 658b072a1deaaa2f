package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"budget_tracker/internal/domain"

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Claims carried by a session token
type Claims struct {
	UserID               uint `json:"user_id"` // Custom claim for user ID
	jwt.RegisteredClaims      // Standard JWT claims, ID holds the session id
}

// Session identifies an authenticated user
type Session struct {
	ID     string
	UserID uint
	Token  string
}

// Manager issues signed session tokens and keeps the live set in Redis so
// sessions can be revoked before they expire.
type Manager struct {
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
}

// NewManager creates a session manager
func NewManager(rdb *redis.Client, secret string, ttl time.Duration) *Manager {
	return &Manager{rdb: rdb, secret: []byte(secret), ttl: ttl}
}

// TTL is the lifetime of new sessions
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func key(id string) string {
	return "session:" + id
}

// Create starts a session for a user
func (m *Manager) Create(ctx context.Context, userID uint) (Session, error) {
	now := time.Now()
	id := uuid.NewString()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Session{}, err
	}
	if err := m.rdb.Set(ctx, key(id), strconv.FormatUint(uint64(userID), 10), m.ttl).Err(); err != nil {
		return Session{}, err
	}
	return Session{ID: id, UserID: userID, Token: token}, nil
}

// Resolve validates a token and checks that its session is still live
func (m *Manager) Resolve(ctx context.Context, token string) (Session, error) {
	claims, err := m.parse(token)
	if err != nil {
		return Session{}, domain.ErrUnauthenticated
	}
	stored, err := m.rdb.Get(ctx, key(claims.ID)).Result()
	if err == redis.Nil {
		return Session{}, domain.ErrUnauthenticated // Revoked or expired
	} else if err != nil {
		return Session{}, err
	}
	if stored != strconv.FormatUint(uint64(claims.UserID), 10) {
		return Session{}, domain.ErrUnauthenticated
	}
	return Session{ID: claims.ID, UserID: claims.UserID, Token: token}, nil
}

// Revoke ends a session. Unknown, expired or already revoked sessions are not an error.
func (m *Manager) Revoke(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.rdb.Del(ctx, key(id)).Err()
}

func (m *Manager) parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}
