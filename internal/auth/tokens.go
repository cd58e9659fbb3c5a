package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	// SessionTTL: срок жизни собственного токена аккаунта.
	SessionTTL = 24 * time.Hour
)

var ErrInvalidToken = errors.New("auth: invalid token")

// Claims: access/refresh пара. В Subject лежит id аккаунта.
type Claims struct {
	Type string `json:"typ"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SessionClaims: формат {id, exp} без прочих полей.
type SessionClaims struct {
	ID  int64 `json:"id"`
	Exp int64 `json:"exp"`
}

func (c SessionClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Exp, 0)), nil
}
func (SessionClaims) GetIssuedAt() (*jwt.NumericDate, error)  { return nil, nil }
func (SessionClaims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (SessionClaims) GetIssuer() (string, error)              { return "", nil }
func (SessionClaims) GetSubject() (string, error)             { return "", nil }
func (SessionClaims) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }

type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Config struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Manager подписывает и проверяет токены HS256 одним секретом процесса.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(cfg Config) *Manager {
	return &Manager{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
}

// WithClock: для тестов.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	cp := *m
	cp.now = now
	return &cp
}

func (m *Manager) IssuePair(accountID int64, role string) (Pair, error) {
	access, err := m.issue(accountID, role, TypeAccess, m.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := m.issue(accountID, role, TypeRefresh, m.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

func (m *Manager) issue(accountID int64, role, typ string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := &Claims{
		Type: typ,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return s, nil
}

// Parse проверяет подпись, срок и тип токена. Возвращает id аккаунта.
func (m *Manager) Parse(token, wantType string) (int64, *Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != wantType {
		return 0, nil, fmt.Errorf("%w: want %s token, got %q", ErrInvalidToken, wantType, claims.Type)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, claims, nil
}

// SessionToken: {id, exp}, exp ровно через 24 часа от выдачи.
func (m *Manager) SessionToken(accountID int64) (string, error) {
	claims := SessionClaims{ID: accountID, Exp: m.now().Add(SessionTTL).Unix()}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return s, nil
}

// ParseSession отклоняет просроченные токены, чужую подпись и токены без id (например, access).
func (m *Manager) ParseSession(token string) (int64, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID <= 0 {
		return 0, fmt.Errorf("%w: no account id", ErrInvalidToken)
	}
	return claims.ID, nil
}

func (m *Manager) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("неподдерживаемый метод подписи: %v", t.Header["alg"])
	}
	return m.secret, nil
}
