package review

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"

	"newsreview/internal/models"
)

var errRemote = errors.New("remote store unavailable")

func text(s string) *string { return &s }

// fakeStore is an in-memory submission and published newsletter store.
type fakeStore struct {
	mu          sync.Mutex
	submissions []models.Submission
	published   []models.PublishedItem
	attempts    []models.PromotionAttempt
	nextID      int64

	listErr      error
	rejectErr    error
	uploadErr    error
	insertErr    error
	publishedErr error
	setRelated   map[int64]error // per-item SetRelatedItems failures

	listCalls       int
	publishedCalls  int
	onListPublished func() // runs before ListPublishedItems returns
	onReject        func() // runs before MarkSubmissionRejected takes effect
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 100, setRelated: map[int64]error{}}
}

func (f *fakeStore) addSubmission(id int64, title string, categories ...string) {
	f.submissions = append(f.submissions, models.Submission{
		ID:          id,
		Title:       title,
		Description: "line one\nline two",
		Pricing:     models.PricingFree,
		Frequency:   models.FrequencyWeekly,
		Categories:  categories,
		URL:         "https://example.com/" + title,
		OGImage:     "https://example.com/" + title + ".png",
	})
}

func (f *fakeStore) addPublished(id int64, categories ...string) {
	f.published = append(f.published, models.PublishedItem{
		ID:         id,
		Title:      "published",
		Categories: categories,
		Related:    []int64{},
		Version:    1,
	})
}

func (f *fakeStore) submission(id int64) models.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.submissions {
		if s.ID == id {
			return s
		}
	}
	return models.Submission{}
}

func (f *fakeStore) item(id int64) models.PublishedItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.published {
		if p.ID == id {
			return p
		}
	}
	return models.PublishedItem{}
}

func (f *fakeStore) ListActiveSubmissions(_ context.Context) ([]models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	active := []models.Submission{}
	for _, s := range f.submissions {
		if s.IsActive() {
			active = append(active, s)
		}
	}
	return active, nil
}

func (f *fakeStore) GetSubmission(_ context.Context, id int64) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.submissions {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, models.ErrSubmissionNotFound
}

func (f *fakeStore) update(id int64, fn func(s *models.Submission)) error {
	for i := range f.submissions {
		if f.submissions[i].ID == id {
			if !f.submissions[i].IsActive() {
				return models.ErrSubmissionNotActive
			}
			fn(&f.submissions[i])
			return nil
		}
	}
	return models.ErrSubmissionNotFound
}

func (f *fakeStore) MarkSubmissionRejected(_ context.Context, id int64) error {
	if f.onReject != nil {
		f.onReject()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejectErr != nil {
		return f.rejectErr
	}
	return f.update(id, func(s *models.Submission) { s.Rejected = true })
}

func (f *fakeStore) MarkSubmissionUploaded(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	return f.update(id, func(s *models.Submission) { s.Uploaded = true })
}

func (f *fakeStore) ListPublishedItems(_ context.Context) ([]models.PublishedItem, error) {
	f.mu.Lock()
	f.publishedCalls++
	items := slices.Clone(f.published)
	err := f.publishedErr
	hook := f.onListPublished
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (f *fakeStore) GetPublishedItem(_ context.Context, id int64) (*models.PublishedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.published {
		if p.ID == id {
			p.Related = slices.Clone(p.Related)
			return &p, nil
		}
	}
	return nil, models.ErrPublishedNotFound
}

func (f *fakeStore) InsertPublishedItem(_ context.Context, item *models.PublishedItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	item.ID = f.nextID
	item.Version = 1
	f.published = append(f.published, *item)
	return nil
}

func (f *fakeStore) SetRelatedItems(_ context.Context, id int64, related []int64, version int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.setRelated[id]; err != nil {
		return err
	}
	for i := range f.published {
		if f.published[i].ID != id {
			continue
		}
		if f.published[i].Version != version {
			return models.ErrVersionConflict
		}
		f.published[i].Related = slices.Clone(related)
		f.published[i].Version++
		return nil
	}
	return models.ErrPublishedNotFound
}

func (f *fakeStore) RecordPromotionAttempt(_ context.Context, a *models.PromotionAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, *a)
	return nil
}

func newTestSession(store *fakeStore) *Session {
	logger := zap.NewNop()
	return NewSession(store, store, NewWorkflow(store, store, logger), logger)
}

type recordingListener struct {
	rejected []int64
	promoted []int64
}

func (l *recordingListener) SubmissionRejected(_ context.Context, sub models.Submission) {
	l.rejected = append(l.rejected, sub.ID)
}

func (l *recordingListener) SubmissionPromoted(_ context.Context, sub models.Submission, _ *models.PromotionResult) {
	l.promoted = append(l.promoted, sub.ID)
}
