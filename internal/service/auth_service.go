package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"supplydesk/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	AdminSubject = "admin"
	AdminRole    = "admin"
)

type LoginInput struct {
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminClaims is the JWT payload. ID carries the server-side session id.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	RevokeSessions(ctx context.Context, subject string) (int, error)
	Authenticate(ctx context.Context, token string) (*AdminClaims, error)
}

type authService struct {
	sessions     session.Store
	secret       []byte
	passwordHash []byte
}

func NewAuthService(sessions session.Store, secret []byte, passwordHash string) AuthService {
	return &authService{
		sessions:     sessions,
		secret:       secret,
		passwordHash: []byte(passwordHash),
	}
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sid := uuid.NewString()
	sess, err := s.sessions.Create(ctx, sid, AdminSubject)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	claims := AdminClaims{
		Role: AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.Subject,
			ID:        sid,
			IssuedAt:  jwt.NewNumericDate(time.Unix(sess.IssuedAt, 0)),
			ExpiresAt: jwt.NewNumericDate(sess.Expires()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		_ = s.sessions.Delete(ctx, sid)
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &LoginResult{Token: token, ExpiresAt: sess.Expires()}, nil
}

// Logout revokes the session behind token. Unknown or invalid tokens are a no-op.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RevokeSessions ends every session of subject, on every device.
func (s *authService) RevokeSessions(ctx context.Context, subject string) (int, error) {
	n, err := s.sessions.RevokeAll(ctx, subject)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return n, nil
}

// Authenticate checks the token signature and expiry, then that its session is still live.
func (s *authService) Authenticate(ctx context.Context, token string) (*AdminClaims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.Get(ctx, claims.ID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return claims, nil
}

func (s *authService) parse(token string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != AdminRole || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
