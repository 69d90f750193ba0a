package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/cardshare/internal/auth"
)

var (
	ErrEmptyCredentials   = errors.New("email and password must not be empty")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginDisabled      = errors.New("owner login is not configured")
)

// dummyHash keeps the timing of unknown-email logins close to real ones.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("cardshare-dummy"), bcrypt.MinCost)

// AuthService checks the single owner's credentials and issues tokens.
type AuthService struct {
	ownerEmail string
	ownerHash  []byte
	jwt        *auth.JWTManager
}

// NewAuthService constructs an AuthService. An empty passwordHash disables Login.
func NewAuthService(ownerEmail, passwordHash string, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		ownerEmail: strings.ToLower(strings.TrimSpace(ownerEmail)),
		ownerHash:  []byte(passwordHash),
		jwt:        jwtManager,
	}
}

// Login validates the owner's credentials and returns an owner token.
func (s *AuthService) Login(_ context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrEmptyCredentials
	}
	if len(s.ownerHash) == 0 {
		return "", ErrLoginDisabled
	}

	given := strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(given), []byte(s.ownerEmail)) == 1

	hash := s.ownerHash
	if !emailOK {
		hash = dummyHash
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || !emailOK {
		return "", ErrInvalidCredentials
	}

	return s.jwt.GenerateToken("owner", s.ownerEmail, auth.RoleOwner)
}

// IssueToken mints a token for role without a password; used by cardctl to
// hand out viewer links.
func (s *AuthService) IssueToken(subject, role string) (string, error) {
	if subject == "" {
		subject = role
	}
	return s.jwt.GenerateToken(subject, "", role)
}
