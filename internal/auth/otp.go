package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	otpTTL    = 5 * time.Minute
	otpKeyFmt = "otp:%s"
	tokenTTL  = 24 * time.Hour
)

var (
	ErrNoChallenge  = errors.New("no OTP challenge for this number")
	ErrCodeMismatch = errors.New("invalid OTP code")
)

// OTPService manages phone sign-in challenges. Codes live in Redis with a
// five minute TTL and are single use: a successful verification consumes
// the challenge.
type OTPService struct {
	rdb       *redis.Client
	jwtSecret []byte
	log       *logrus.Logger
}

func NewOTPService(rdb *redis.Client, jwtSecret string, log *logrus.Logger) *OTPService {
	return &OTPService{
		rdb:       rdb,
		jwtSecret: []byte(jwtSecret),
		log:       log,
	}
}

// Send creates a fresh 6-digit challenge for the number, replacing any
// outstanding one. Delivery goes through the external SMS provider; here we
// only stage the challenge.
func (s *OTPService) Send(ctx context.Context, phoneNumber string) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	key := fmt.Sprintf(otpKeyFmt, phoneNumber)
	if err := s.rdb.Set(ctx, key, code, otpTTL).Err(); err != nil {
		return fmt.Errorf("failed to store OTP challenge: %w", err)
	}

	s.log.WithField("phone", phoneNumber).Info("OTP challenge created")
	return nil
}

// Verify checks the code against the outstanding challenge and mints a
// session token on success. Expired challenges simply vanish from Redis and
// surface as ErrNoChallenge.
func (s *OTPService) Verify(ctx context.Context, phoneNumber, code string) (string, error) {
	key := fmt.Sprintf(otpKeyFmt, phoneNumber)

	stored, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoChallenge
	}
	if err != nil {
		return "", fmt.Errorf("failed to read OTP challenge: %w", err)
	}

	if stored != code {
		return "", ErrCodeMismatch
	}

	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return "", fmt.Errorf("failed to consume OTP challenge: %w", err)
	}

	return s.mintToken(phoneNumber)
}

func (s *OTPService) mintToken(phoneNumber string) (string, error) {
	// Deterministic subject per phone number so repeat sign-ins map to the
	// same user.
	sub := uuid.NewSHA1(uuid.NameSpaceOID, []byte(phoneNumber))

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub.String(),
		"phone": phoneNumber,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
