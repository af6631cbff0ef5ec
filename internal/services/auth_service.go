package services

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"prismtech.dev/internal/config"
	"prismtech.dev/internal/models"
	"prismtech.dev/internal/store"
	"prismtech.dev/internal/validation"
)

const (
	usersCollection = "users"
	tokenIssuer     = "prism"
)

var (
	// ErrUnauthorized is returned for a missing, malformed or expired token
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned when a login does not match a user
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAlreadyInitialized is returned by BootstrapAdmin once an admin exists
	ErrAlreadyInitialized = errors.New("admin already initialized")
)

// Credentials is a login request
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// BootstrapRequest creates the first admin account
type BootstrapRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"`
}

// LoginResult carries a signed token and the user it was issued to
type LoginResult struct {
	Token string          `json:"token"`
	User  models.UserInfo `json:"user"`
}

// Session is the verified identity behind a bearer token
type Session struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthService handles admin accounts and bearer tokens
type AuthService struct {
	backend store.Backend
	signer  jose.Signer
	key     []byte
	ttl     time.Duration
	cost    int
	now     func() time.Time
	newID   func() string
}

// NewAuthService creates a new AuthService. Tokens are HS256 signed with a
// key derived from cfg.JWTSecret.
func NewAuthService(backend store.Backend, cfg config.AuthConfig) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	sum := sha256.Sum256([]byte(cfg.JWTSecret))
	key := sum[:]

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token signer: %w", err)
	}

	return &AuthService{
		backend: backend,
		signer:  signer,
		key:     key,
		ttl:     cfg.TokenTTL,
		cost:    cfg.BcryptCost,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}, nil
}

// Login checks credentials and issues a token
func (s *AuthService) Login(ctx context.Context, c Credentials) (LoginResult, error) {
	if err := validation.Struct(&c); err != nil {
		return LoginResult{}, err
	}

	u, err := s.findByEmail(ctx, c.Email)
	if errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(c.Password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	return s.result(&u)
}

// BootstrapAdmin creates the first admin. It fails with
// ErrAlreadyInitialized when any admin exists.
func (s *AuthService) BootstrapAdmin(ctx context.Context, req BootstrapRequest) (LoginResult, error) {
	if err := validation.Struct(&req); err != nil {
		return LoginResult{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	u := models.User{
		ID:           s.newID(),
		Email:        normalizeEmail(req.Email),
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Role:         models.RoleAdmin,
		CreatedAt:    s.now(),
	}
	err = s.backend.Update(ctx, func(tx store.Tx) error {
		users, err := store.AllJSON[models.User](tx, usersCollection)
		if err != nil {
			return err
		}
		for _, existing := range users {
			if existing.Role == models.RoleAdmin {
				return ErrAlreadyInitialized
			}
		}
		return store.PutJSON(tx, usersCollection, u.ID, &u)
	})
	if err != nil {
		return LoginResult{}, err
	}
	return s.result(&u)
}

// ResetPassword sets the password of the user with email, creating an
// admin account if there is none. It reports whether a user was created.
func (s *AuthService) ResetPassword(ctx context.Context, email, password string) (bool, error) {
	if err := validation.Var("email", email, "required,email"); err != nil {
		return false, err
	}
	if err := validation.Var("password", password, "required,min=8"); err != nil {
		return false, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	var created bool
	err = s.backend.Update(ctx, func(tx store.Tx) error {
		u, err := findUser(tx, email)
		switch {
		case errors.Is(err, store.ErrNotFound):
			created = true
			u = models.User{
				ID:        s.newID(),
				Email:     normalizeEmail(email),
				Role:      models.RoleAdmin,
				CreatedAt: s.now(),
			}
		case err != nil:
			return err
		}
		u.PasswordHash = string(hash)
		return store.PutJSON(tx, usersCollection, u.ID, &u)
	})
	return created, err
}

// Issue signs a token for u, returning it with its expiry
func (s *AuthService) Issue(u *models.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	std := jwt.Claims{
		Issuer:   tokenIssuer,
		Subject:  u.ID,
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(exp),
	}
	token, err := jwt.Signed(s.signer).
		Claims(std).
		Claims(tokenClaims{Email: u.Email, Role: u.Role}).
		Serialize()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, exp, nil
}

// Verify checks a token's signature and expiry. The store is not
// consulted, so a token outlives a password reset until it expires.
// Every failure is reported as ErrUnauthorized.
func (s *AuthService) Verify(token string) (Session, error) {
	tok, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return Session{}, ErrUnauthorized
	}

	var std jwt.Claims
	var custom tokenClaims
	if err := tok.Claims(s.key, &std, &custom); err != nil {
		return Session{}, ErrUnauthorized
	}
	err = std.ValidateWithLeeway(jwt.Expected{Issuer: tokenIssuer, Time: s.now()}, 0)
	if err != nil || std.Expiry == nil || std.Subject == "" {
		return Session{}, ErrUnauthorized
	}

	return Session{
		UserID:    std.Subject,
		Email:     custom.Email,
		Role:      custom.Role,
		ExpiresAt: std.Expiry.Time().UTC(),
	}, nil
}

// Users returns every account
func (s *AuthService) Users(ctx context.Context) ([]models.UserInfo, error) {
	var users []models.User
	err := s.backend.View(ctx, func(tx store.Tx) error {
		var err error
		users, err = store.AllJSON[models.User](tx, usersCollection)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.UserInfo, 0, len(users))
	for i := range users {
		out = append(out, users[i].Info())
	}
	return out, nil
}

func (s *AuthService) result(u *models.User) (LoginResult, error) {
	token, _, err := s.Issue(u)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: u.Info()}, nil
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.backend.View(ctx, func(tx store.Tx) error {
		var err error
		u, err = findUser(tx, email)
		return err
	})
	return u, err
}

func findUser(tx store.Tx, email string) (models.User, error) {
	users, err := store.AllJSON[models.User](tx, usersCollection)
	if err != nil {
		return models.User{}, err
	}
	email = normalizeEmail(email)
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
