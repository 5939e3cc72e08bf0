package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"newsreview/internal/db"
	"newsreview/internal/models"
)

// MemoryStore is an in-memory stand-in for the database used by handler tests.
type MemoryStore struct {
	mu          sync.Mutex
	submissions []models.Submission
	published   []models.PublishedItem
	attempts    []models.PromotionAttempt
	nextID      int64

	// Errors injected into the matching operations.
	ListErr      error
	RejectErr    error
	PingErr      error
	SetRelatedFn func(id int64) error
}

// NewMemoryStore creates an empty store. Published ids are assigned from 100.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 100}
}

// AddSubmission adds an active submission.
func (m *MemoryStore) AddSubmission(id int64, title string, categories ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions = append(m.submissions, models.Submission{
		ID:          id,
		Title:       title,
		Description: "about " + title,
		Pricing:     models.PricingFree,
		Frequency:   models.FrequencyWeekly,
		Categories:  categories,
		URL:         "https://example.com/" + title,
	})
}

// AddPublished adds a published newsletter.
func (m *MemoryStore) AddPublished(id int64, title string, categories ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, models.PublishedItem{
		ID:         id,
		Title:      title,
		Categories: categories,
		Related:    []int64{},
		Version:    1,
	})
}

// Submission returns a copy of the submission with id.
func (m *MemoryStore) Submission(id int64) (models.Submission, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.submissions {
		if s.ID == id {
			return s, true
		}
	}
	return models.Submission{}, false
}

// Published returns a copy of the published newsletter with id.
func (m *MemoryStore) Published(id int64) (models.PublishedItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.published {
		if p.ID == id {
			p.Related = slices.Clone(p.Related)
			return p, true
		}
	}
	return models.PublishedItem{}, false
}

func (m *MemoryStore) ListActiveSubmissions(_ context.Context) ([]models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	active := []models.Submission{}
	for _, s := range m.submissions {
		if s.IsActive() {
			active = append(active, s)
		}
	}
	return active, nil
}

func (m *MemoryStore) CountActiveSubmissions(ctx context.Context) (int, error) {
	active, err := m.ListActiveSubmissions(ctx)
	return len(active), err
}

func (m *MemoryStore) GetSubmission(_ context.Context, id int64) (*models.Submission, error) {
	s, ok := m.Submission(id)
	if !ok {
		return nil, db.ErrSubmissionNotFound
	}
	return &s, nil
}

// setFlag updates an active submission, matching the database's conditional update.
func (m *MemoryStore) setFlag(id int64, fn func(s *models.Submission)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.submissions {
		if m.submissions[i].ID == id {
			if !m.submissions[i].IsActive() {
				return db.ErrSubmissionNotActive
			}
			fn(&m.submissions[i])
			return nil
		}
	}
	return db.ErrSubmissionNotFound
}

func (m *MemoryStore) MarkSubmissionRejected(_ context.Context, id int64) error {
	if m.RejectErr != nil {
		return m.RejectErr
	}
	return m.setFlag(id, func(s *models.Submission) { s.Rejected = true })
}

func (m *MemoryStore) MarkSubmissionUploaded(_ context.Context, id int64) error {
	return m.setFlag(id, func(s *models.Submission) { s.Uploaded = true })
}

func (m *MemoryStore) ListPublishedItems(_ context.Context) ([]models.PublishedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.published), nil
}

func (m *MemoryStore) GetPublishedItem(_ context.Context, id int64) (*models.PublishedItem, error) {
	p, ok := m.Published(id)
	if !ok {
		return nil, db.ErrPublishedNotFound
	}
	return &p, nil
}

func (m *MemoryStore) InsertPublishedItem(_ context.Context, item *models.PublishedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	item.ID = m.nextID
	item.Version = 1
	m.published = append(m.published, *item)
	return nil
}

func (m *MemoryStore) SetRelatedItems(_ context.Context, id int64, related []int64, version int64) error {
	if m.SetRelatedFn != nil {
		if err := m.SetRelatedFn(id); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.published {
		if m.published[i].ID != id {
			continue
		}
		if m.published[i].Version != version {
			return db.ErrVersionConflict
		}
		m.published[i].Related = slices.Clone(related)
		m.published[i].Version++
		return nil
	}
	return db.ErrPublishedNotFound
}

func (m *MemoryStore) RecordPromotionAttempt(_ context.Context, a *models.PromotionAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.attempts = append(m.attempts, *a)
	return nil
}

func (m *MemoryStore) ListPromotionAttempts(_ context.Context, limit int) ([]models.PromotionAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.PromotionAttempt{}
	for i := len(m.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.attempts[i])
	}
	return out, nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return m.PingErr
}
