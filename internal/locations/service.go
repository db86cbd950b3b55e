package locations

import (
	"context"
	"time"

	"github.com/noah-isme/employee-tracker/internal/shared"
)

// Service wraps location business rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a new Service. now defaults to time.Now.
func NewService(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// List returns all latest locations matching filter, most recently updated first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]View, error) {
	return s.repo.List(ctx, filter)
}

// Update validates req and overwrites the caller's row. The caller is the only
// row a request can touch.
func (s *Service) Update(ctx context.Context, caller *shared.Identity, req UpdateRequest) (*View, error) {
	if caller == nil {
		return nil, shared.ErrUnauthorized
	}
	now := s.now()
	in, err := ParseUpdate(req, now)
	if err != nil {
		return nil, err
	}
	loc, err := s.repo.Upsert(ctx, caller.UserID, in, now)
	if err != nil {
		return nil, err
	}
	view := ViewOf(loc, caller.Name)
	return &view, nil
}
