package locations

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memRepo keys rows by user id, so it cannot hold two rows for one user.
type memRepo struct {
	mu     sync.Mutex
	rows   map[int64]*Location
	names  map[int64]string
	nextID int64
	err    error
}

func newMemRepo(names map[int64]string) *memRepo {
	return &memRepo{rows: map[int64]*Location{}, names: names, nextID: 1}
}

func (m *memRepo) List(ctx context.Context, filter ListFilter) ([]View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	rows := make([]*Location, 0, len(m.rows))
	for _, loc := range m.rows {
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
	views := make([]View, 0, len(rows))
	for _, loc := range rows {
		views = append(views, ViewOf(loc, m.names[loc.UserID]))
	}
	return views, nil
}

func (m *memRepo) Upsert(ctx context.Context, userID int64, in UpsertInput, at time.Time) (*Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	loc, ok := m.rows[userID]
	if !ok {
		loc = &Location{ID: m.nextID, UserID: userID, CreatedAt: at}
		m.nextID++
		m.rows[userID] = loc
	}
	loc.Lat = in.Lat
	loc.Lng = in.Lng
	loc.RecordedAt = in.RecordedAt
	loc.AccuracyM = in.AccuracyM
	loc.UpdatedAt = at
	cp := *loc
	return &cp, nil
}

func (m *memRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// tickingClock returns successive seconds so that every write has a distinct updated_at.
func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

var _ Repository = (*memRepo)(nil)
