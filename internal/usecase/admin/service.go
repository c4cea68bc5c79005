package admin

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenInvalid means a supplied session token cannot be validated.
	ErrTokenInvalid = errors.New("token invalid or expired")
	// ErrDisabled means no operator password is configured.
	ErrDisabled = errors.New("admin access is not configured")
)

// Subject is the session subject issued to the operator.
const Subject = "admin"

// Service handles operator authentication and settings inspection. The
// sheet secret and sheet id live in process configuration; this surface
// only reports whether they are set and issues session tokens.
type Service struct {
	passwordHash string
	tokens       TokenManager
	sheetID      string
	secretSet    bool
}

// NewService constructs an admin service. An empty passwordHash disables
// logins entirely.
func NewService(passwordHash string, tokens TokenManager, sheetID string, secretSet bool) *Service {
	return &Service{
		passwordHash: passwordHash,
		tokens:       tokens,
		sheetID:      sheetID,
		secretSet:    secretSet,
	}
}

// Login verifies the operator password and returns a session token.
func (s *Service) Login(ctx context.Context, password string) (string, error) {
	if s.passwordHash == "" {
		return "", ErrDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Generate(Subject)
}

// VerifyToken validates a session token.
func (s *Service) VerifyToken(ctx context.Context, token string) error {
	subject, err := s.tokens.Validate(token)
	if err != nil || subject != Subject {
		return ErrTokenInvalid
	}
	return nil
}

// Settings is the operator-facing view of the sheet configuration. The
// secret itself is never echoed back.
type Settings struct {
	SheetID      string `json:"sheet_id"`
	SecretKeySet bool   `json:"secret_key_set"`
}

// Settings reports the current sheet configuration.
func (s *Service) Settings() Settings {
	return Settings{SheetID: s.sheetID, SecretKeySet: s.secretSet}
}
