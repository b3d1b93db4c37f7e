package service

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPin     = errors.New("invalid admin pin")
	ErrAdminDisabled  = errors.New("admin login is not configured")
	ErrInvalidToken   = errors.New("invalid admin token")
	adminTokenSubject = "admin"
	adminTokenIssuer  = "storefront"
)

type AdminClaims struct {
	jwt.RegisteredClaims
}

type IAdminAuthService interface {
	// Login 驗證 PIN 後簽發 token
	Login(pin string) (token string, expiresAt time.Time, err error)
	VerifyToken(token string) (*AdminClaims, error)
}

// AdminAuthService 有設定 bcrypt hash 時只接受 hash，否則使用預設 PIN
type AdminAuthService struct {
	pinHash    []byte
	defaultPin string
	secret     []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewAdminAuthService(pinHash, defaultPin, secret string, ttl time.Duration, logger *zerolog.Logger) (*AdminAuthService, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}

	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate admin token secret: %w", err)
		}
		logger.Warn().Msg("ADMIN_TOKEN_SECRET not set, admin tokens will not survive a restart")
	}

	if pinHash != "" {
		if _, err := bcrypt.Cost([]byte(pinHash)); err != nil {
			return nil, fmt.Errorf("invalid ADMIN_PIN_HASH: %w", err)
		}
	} else if defaultPin != "" {
		logger.Warn().Msg("ADMIN_PIN_HASH not set, falling back to default admin pin")
	}

	return &AdminAuthService{
		pinHash:    []byte(pinHash),
		defaultPin: defaultPin,
		secret:     key,
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

func (s *AdminAuthService) checkPin(pin string) error {
	if len(s.pinHash) > 0 {
		if err := bcrypt.CompareHashAndPassword(s.pinHash, []byte(pin)); err != nil {
			return ErrInvalidPin
		}
		return nil
	}
	if s.defaultPin == "" {
		return ErrAdminDisabled
	}
	if subtle.ConstantTimeCompare([]byte(pin), []byte(s.defaultPin)) != 1 {
		return ErrInvalidPin
	}
	return nil
}

func (s *AdminAuthService) Login(pin string) (string, time.Time, error) {
	if err := s.checkPin(pin); err != nil {
		return "", time.Time{}, err
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   adminTokenSubject,
			Issuer:    adminTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign admin token: %w", err)
	}
	return token, expiresAt, nil
}

func (s *AdminAuthService) VerifyToken(token string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(adminTokenIssuer),
		jwt.WithSubject(adminTokenSubject),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// HashPin 產生 ADMIN_PIN_HASH 用
func HashPin(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

var _ IAdminAuthService = (*AdminAuthService)(nil)
