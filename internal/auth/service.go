package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/employee-tracker/internal/platform/validate"
	"github.com/noah-isme/employee-tracker/internal/shared"
	"github.com/noah-isme/employee-tracker/internal/users"
)

const (
	nameMaxLength     = 255
	emailMaxLength    = 255
	passwordMinLength = 6
	// bcrypt only reads the first 72 bytes and rejects longer input.
	passwordMaxBytes = 72
	msgEmailTaken    = "The email has already been taken."
)

// ServiceConfig tunes the auth service.
type ServiceConfig struct {
	BcryptCost int
	Cache      *TokenCache
	Logger     *slog.Logger
	Now        func() time.Time
}

// Service wraps authentication business rules.
type Service struct {
	repo      Repository
	cache     *TokenCache
	logger    *slog.Logger
	cost      int
	now       func() time.Time
	dummyHash []byte
}

// NewService constructs a new Service.
func NewService(repo Repository, cfg ServiceConfig) *Service {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	// Compared against on unknown emails so both login failure paths cost one bcrypt check.
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		dummy = nil
	}
	return &Service{repo: repo, cache: cfg.Cache, logger: logger, cost: cost, now: now, dummyHash: dummy}
}

// Register validates the payload, creates the user and issues a token in one transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	schema := validate.New()
	name, ok := schema.String("name", in.Name, true)
	if ok {
		schema.MaxLen("name", name, nameMaxLength)
	}
	email, ok := schema.String("email", in.Email, true)
	if ok {
		email = strings.TrimSpace(email)
		schema.Email("email", email)
		schema.MaxLen("email", email, emailMaxLength)
	}
	password, ok := schema.String("password", in.Password, true)
	if ok {
		schema.MinLen("password", password, passwordMinLength)
		schema.MaxBytes("password", password, passwordMaxBytes)
		schema.Confirmed("password", password, in.PasswordConfirmation)
	}
	if !schema.Failed("email") {
		taken, err := s.repo.EmailExists(ctx, email)
		if err != nil {
			return nil, err
		}
		if taken {
			schema.Fail("email", msgEmailTaken)
		}
	}
	if err := schema.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	var result *Result
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		user, err := tx.CreateUser(ctx, name, email, string(hash))
		if err != nil {
			return err
		}
		plain, err := s.issue(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		result = &Result{User: user, PlainToken: plain}
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			verr := shared.NewValidationError()
			verr.Add("email", msgEmailTaken)
			return nil, verr
		}
		return nil, err
	}
	return result, nil
}

// Login validates credentials and issues a new token. Earlier tokens stay valid.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Result, error) {
	schema := validate.New()
	email, ok := schema.String("email", in.Email, true)
	if ok {
		email = strings.TrimSpace(email)
		schema.Email("email", email)
	}
	password, _ := schema.String("password", in.Password, true)
	if err := schema.Err(); err != nil {
		return nil, err
	}

	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	plain, err := s.issue(ctx, s.repo, user.ID)
	if err != nil {
		return nil, err
	}
	return &Result{User: user, PlainToken: plain}, nil
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if s.dummyHash != nil {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		}
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

type tokenWriter interface {
	CreateToken(ctx context.Context, token Token) error
}

func (s *Service) issue(ctx context.Context, w tokenWriter, userID int64) (string, error) {
	id, secret, plain, err := newPlainToken()
	if err != nil {
		return "", fmt.Errorf("auth: generate token: %w", err)
	}
	token := Token{
		ID:        id,
		UserID:    userID,
		Name:      tokenName,
		Hash:      hashSecret(secret),
		CreatedAt: s.now().UTC(),
	}
	if err := w.CreateToken(ctx, token); err != nil {
		return "", err
	}
	return plain, nil
}

// Resolve maps a plaintext bearer token to the owning user. Every failure is
// reported as shared.ErrUnauthorized except store outages.
func (s *Service) Resolve(ctx context.Context, plain string) (*shared.Identity, error) {
	id, secret, ok := parsePlainToken(plain)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	hash := hashSecret(secret)

	entry, err := s.cache.Fetch(ctx, id, func(ctx context.Context) (cachedToken, error) {
		token, err := s.repo.FindToken(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return cachedToken{}, shared.ErrUnauthorized
			}
			return cachedToken{}, err
		}
		return cachedToken{UserID: token.UserID, Hash: token.Hash}, nil
	})
	if err != nil {
		return nil, err
	}
	if !hashesEqual(entry.Hash, hash) {
		return nil, shared.ErrUnauthorized
	}

	user, err := s.repo.FindUserByID(ctx, entry.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}

	if err := s.repo.TouchToken(ctx, id, s.now()); err != nil {
		s.logger.Warn("touch token", slog.Any("error", err))
	}
	return &shared.Identity{UserID: user.ID, Name: user.Name, Email: user.Email, TokenID: id}, nil
}
