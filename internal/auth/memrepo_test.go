package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/noah-isme/employee-tracker/internal/shared"
	"github.com/noah-isme/employee-tracker/internal/users"
)

// memRepo is an in-memory Repository with the same uniqueness rules as the schema.
type memRepo struct {
	mu         sync.Mutex
	users      map[int64]*users.User
	tokens     map[string]*Token
	nextUserID int64

	findTokenCalls int
	findTokenErr   error
	touchErr       error
	txErr          error
	// blindPrecheck makes EmailExists always answer false, as a concurrent registration would.
	blindPrecheck bool
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[int64]*users.User{}, tokens: map[string]*Token{}, nextUserID: 1}
}

func (m *memRepo) FindUserByEmail(ctx context.Context, email string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memRepo) FindUserByID(ctx context.Context, id int64) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.blindPrecheck {
		return false, nil
	}
	return m.emailTaken(ctx, email)
}

func (m *memRepo) emailTaken(ctx context.Context, email string) (bool, error) {
	_, err := m.FindUserByEmail(ctx, email)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *memRepo) CreateToken(ctx context.Context, token Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := token
	m.tokens[token.ID] = &cp
	return nil
}

func (m *memRepo) FindToken(ctx context.Context, id string) (*Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findTokenCalls++
	if m.findTokenErr != nil {
		return nil, m.findTokenErr
	}
	t, ok := m.tokens[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memRepo) TouchToken(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.touchErr != nil {
		return m.touchErr
	}
	if t, ok := m.tokens[id]; ok {
		ts := at
		t.LastUsedAt = &ts
	}
	return nil
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if m.txErr != nil {
		return m.txErr
	}
	tx := &memTx{repo: m}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range tx.users {
		m.users[u.ID] = u
	}
	for _, t := range tx.tokens {
		m.tokens[t.ID] = t
	}
	return nil
}

func (m *memRepo) userCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *memRepo) tokenCount(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tokens {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

// memTx buffers writes until commit, mirroring rollback on error.
type memTx struct {
	repo   *memRepo
	users  []*users.User
	tokens []*Token
}

func (t *memTx) CreateUser(ctx context.Context, name, email, passwordHash string) (*users.User, error) {
	if exists, _ := t.repo.emailTaken(ctx, email); exists {
		return nil, shared.ErrDuplicate
	}
	t.repo.mu.Lock()
	id := t.repo.nextUserID
	t.repo.nextUserID++
	t.repo.mu.Unlock()
	now := time.Now().UTC()
	u := &users.User{ID: id, Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	t.users = append(t.users, u)
	cp := *u
	return &cp, nil
}

func (t *memTx) CreateToken(ctx context.Context, token Token) error {
	cp := token
	t.tokens = append(t.tokens, &cp)
	return nil
}

var _ Repository = (*memRepo)(nil)
