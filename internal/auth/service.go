package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/store"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrCredentialsRequired = errors.New("username and password are required")
)

// CredentialStore reads the stored password for a username from the
// bookstore credentials table.
type CredentialStore interface {
	LookupCredential(ctx context.Context, table, userColumn, passColumn, username string) (string, error)
}

// Service checks logins against the configured credentials table.
type Service struct {
	creds  CredentialStore
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(creds CredentialStore, cfg config.Auth) *Service {
	return &Service{
		creds:  creds,
		config: cfg,
	}
}

// Authenticate validates a username/password pair.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrCredentialsRequired
	}

	stored, err := s.creds.LookupCredential(ctx,
		s.config.CredentialsTable, s.config.UsernameColumn, s.config.PasswordColumn, username)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			// Burn comparable time so unknown users are not distinguishable.
			_ = CheckPassword(password, dummyHash)
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to look up credentials: %w", err)
	}

	if err := CheckPassword(password, stored); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return ErrInvalidCredentials
		}
		return err
	}
	return nil
}

// LoginHint is the help text shown under the login form.
func (s *Service) LoginHint() string {
	return s.config.LoginHint
}
