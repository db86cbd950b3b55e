package app

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/employee-tracker/internal/auth"
	"github.com/noah-isme/employee-tracker/internal/locations"
	"github.com/noah-isme/employee-tracker/internal/shared"
	"github.com/noah-isme/employee-tracker/internal/users"
)

// memStore backs both the auth and the locations repositories so the router can
// be exercised end to end without Postgres.
type memStore struct {
	mu        sync.Mutex
	nextUser  int64
	nextLoc   int64
	users     map[int64]*users.User
	tokens    map[string]auth.Token
	locations map[int64]*locations.Location
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[int64]*users.User),
		tokens:    make(map[string]auth.Token),
		locations: make(map[int64]*locations.Location),
	}
}

func (s *memStore) FindUserByEmail(ctx context.Context, email string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *memStore) FindUserByID(ctx context.Context, id int64) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.FindUserByEmail(ctx, email)
	return err == nil, nil
}

func (s *memStore) CreateToken(ctx context.Context, token auth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.ID] = token
	return nil
}

func (s *memStore) FindToken(ctx context.Context, id string) (*auth.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &t, nil
}

func (s *memStore) TouchToken(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tokens[id]; ok {
		t.LastUsedAt = &at
		s.tokens[id] = t
	}
	return nil
}

func (s *memStore) WithTx(ctx context.Context, fn func(context.Context, auth.TxRepository) error) error {
	return fn(ctx, s)
}

func (s *memStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return nil, shared.ErrDuplicate
		}
	}
	s.nextUser++
	now := time.Now().UTC()
	u := &users.User{ID: s.nextUser, Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	s.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (s *memStore) List(ctx context.Context, filter locations.ListFilter) ([]locations.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]*locations.Location, 0, len(s.locations))
	for _, loc := range s.locations {
		if filter.MaxAccuracy != nil && (loc.AccuracyM == nil || *loc.AccuracyM > *filter.MaxAccuracy) {
			continue
		}
		rows = append(rows, loc)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].UpdatedAt.Equal(rows[j].UpdatedAt) {
			return rows[i].UpdatedAt.After(rows[j].UpdatedAt)
		}
		return rows[i].UserID < rows[j].UserID
	})
	views := make([]locations.View, 0, len(rows))
	for _, loc := range rows {
		name := ""
		if u, ok := s.users[loc.UserID]; ok {
			name = u.Name
		}
		views = append(views, locations.ViewOf(loc, name))
	}
	return views, nil
}

func (s *memStore) Upsert(ctx context.Context, userID int64, in locations.UpsertInput, at time.Time) (*locations.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.locations[userID]
	if !ok {
		s.nextLoc++
		loc = &locations.Location{ID: s.nextLoc, UserID: userID, CreatedAt: at}
		s.locations[userID] = loc
	}
	loc.Lat, loc.Lng, loc.RecordedAt, loc.AccuracyM, loc.UpdatedAt = in.Lat, in.Lng, in.RecordedAt, in.AccuracyM, at
	cp := *loc
	return &cp, nil
}
