package review

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"newsreview/internal/models"
)

// State is the lifecycle state of a review session.
type State int

// Session states
const (
	StateLoading   State = iota // queue not yet populated
	StateEmpty                  // nothing to review
	StateReviewing              // current index valid, draft active
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateEmpty:
		return "empty"
	case StateReviewing:
		return "reviewing"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Session is one operator's walk through the active submission queue. All
// methods are safe for concurrent use; navigation and mutations are refused with
// ErrBusy while a reject or promotion is in flight.
type Session struct {
	submissions SubmissionStore
	published   PublishedStore
	promoter    Promoter
	logger      *zap.Logger
	listeners   []Listener

	mu          sync.Mutex
	state       State
	queue       []models.Submission
	index       int
	draft       *Draft
	busy        bool
	approvalFor int64 // submission awaiting confirmation, 0 when none
	loaded      bool
	loadErr     error
}

// NewSession creates a session in the Loading state.
func NewSession(submissions SubmissionStore, published PublishedStore, promoter Promoter, logger *zap.Logger) *Session {
	return &Session{
		submissions: submissions,
		published:   published,
		promoter:    promoter,
		logger:      logger,
		state:       StateLoading,
	}
}

// Listener is told about submissions leaving the queue.
type Listener interface {
	SubmissionRejected(ctx context.Context, sub models.Submission)
	SubmissionPromoted(ctx context.Context, sub models.Submission, result *models.PromotionResult)
}

// WithListeners registers listeners. Call before the session is shared.
func (s *Session) WithListeners(listeners ...Listener) *Session {
	s.listeners = append(s.listeners, listeners...)
	return s
}

// Snapshot is a read-only copy of the session for rendering.
type Snapshot struct {
	State            State              `json:"state"`
	Index            int                `json:"index"`
	Total            int                `json:"total"`
	Current          *models.Submission `json:"current"`
	Draft            *Draft             `json:"draft"`
	Candidates       []Candidate        `json:"candidates"`
	Selected         []int64            `json:"selected"`
	AwaitingApproval bool               `json:"awaiting_approval"`
	Busy             bool               `json:"busy"`
	LoadError        string             `json:"load_error,omitempty"`
}

// Position is the 1-based position of the current submission.
func (s Snapshot) Position() int {
	return s.Index + 1
}

// IsReviewing reports whether there is a current submission.
func (s Snapshot) IsReviewing() bool {
	return s.State == StateReviewing
}

// ApprovalPreview is shown to the operator before a promotion is confirmed.
type ApprovalPreview struct {
	Submission models.Submission      `json:"submission"`
	Promotion  models.Promotion       `json:"promotion"`
	Related    []models.PublishedItem `json:"related"`
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the session for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:            s.state,
		Index:            s.index,
		Total:            len(s.queue),
		AwaitingApproval: s.approvalFor != 0,
		Busy:             s.busy,
		Candidates:       []Candidate{},
		Selected:         []int64{},
	}
	if s.loadErr != nil {
		snap.LoadError = s.loadErr.Error()
	}
	if s.state == StateReviewing {
		current := s.queue[s.index]
		snap.Current = &current
		snap.Draft = s.draft.clone()
		snap.Candidates = s.draft.Candidates()
		if selected := s.draft.SelectedIDs(); selected != nil {
			snap.Selected = selected
		}
	}
	return snap
}

// Load runs the active queue query. The current submission is kept if it is
// still active. On failure a previously loaded queue is left in place.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	var keepID int64
	if s.state == StateReviewing {
		keepID = s.queue[s.index].ID
	}
	position := s.index
	s.mu.Unlock()

	queue, err := s.submissions.ListActiveSubmissions(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if err != nil {
		s.logger.Error("failed to load review queue", zap.Error(err))
		s.loadErr = err
		if !s.loaded {
			s.state = StateEmpty
		}
		return fmt.Errorf("load review queue: %w", err)
	}

	s.loaded = true
	s.loadErr = nil
	s.setQueue(queue, keepID, position)
	return nil
}

// setQueue replaces the queue, pointing at preferID when present and at
// fallback (wrapped to 0 past the end) otherwise. Caller holds mu.
func (s *Session) setQueue(queue []models.Submission, preferID int64, fallback int) {
	s.queue = queue
	if len(queue) == 0 {
		s.state = StateEmpty
		s.index = 0
		s.draft = nil
		s.approvalFor = 0
		return
	}

	idx := -1
	if preferID != 0 {
		idx = s.indexOf(preferID)
	}
	if idx < 0 {
		idx = fallback
		if idx < 0 || idx >= len(queue) {
			idx = 0
		}
	}

	s.index = idx
	s.state = StateReviewing
	s.syncDraft()
}

// syncDraft rebuilds the draft if the current submission changed. Caller holds mu.
func (s *Session) syncDraft() {
	current := s.queue[s.index]
	if s.draft != nil && s.draft.SubmissionID == current.ID {
		return
	}
	s.draft = NewDraft(current)
	s.approvalFor = 0
}

func (s *Session) indexOf(id int64) int {
	return slices.IndexFunc(s.queue, func(sub models.Submission) bool {
		return sub.ID == id
	})
}

// removeSubmission drops id from the queue, keeping the index on the item that
// followed it and wrapping to the start past the end. Caller holds mu.
func (s *Session) removeSubmission(id int64) {
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}

	queue := slices.Delete(slices.Clone(s.queue), idx, idx+1)
	position := s.index
	if idx < position {
		position--
	}
	s.setQueue(queue, 0, position)
}

// ready checks that a current submission exists and no mutation is running.
// Caller holds mu.
func (s *Session) ready() error {
	if s.busy {
		return ErrBusy
	}
	if s.state != StateReviewing {
		return ErrEmptyQueue
	}
	return nil
}

// Previous moves to the previous submission, wrapping to the last.
func (s *Session) Previous() error {
	return s.move(-1)
}

// Next moves to the next submission, wrapping to the first.
func (s *Session) Next() error {
	return s.move(1)
}

// Skip leaves the current submission untouched and moves on. Same as Next.
func (s *Session) Skip() error {
	return s.move(1)
}

func (s *Session) move(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}

	n := len(s.queue)
	s.index = ((s.index+delta)%n + n) % n
	s.syncDraft()
	return nil
}

// Reject flags the current submission as rejected and drops it from the queue.
// On failure the queue is left exactly as it was.
func (s *Session) Reject(ctx context.Context) error {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return err
	}
	target := s.queue[s.index]
	s.busy = true
	s.mu.Unlock()

	err := s.submissions.MarkSubmissionRejected(ctx, target.ID)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("failed to reject submission",
			zap.Int64("submission_id", target.ID),
			zap.Error(err),
		)
		return fmt.Errorf("reject submission %d: %w", target.ID, err)
	}
	s.removeSubmission(target.ID)
	s.mu.Unlock()

	s.logger.Info("submission rejected", zap.Int64("submission_id", target.ID))
	for _, l := range s.listeners {
		l.SubmissionRejected(ctx, target)
	}
	return nil
}

// RequestApproval is the confirmation step before a promotion. It returns what
// would be written.
func (s *Session) RequestApproval() (*ApprovalPreview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return nil, err
	}

	current := s.queue[s.index]
	s.approvalFor = current.ID
	return &ApprovalPreview{
		Submission: current,
		Promotion:  BuildPromotion(current, s.draft),
		Related:    s.draft.SelectedRelated(),
	}, nil
}

// CancelApproval withdraws a pending confirmation.
func (s *Session) CancelApproval() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approvalFor = 0
}

// ConfirmApproval promotes the current submission and refreshes the queue from
// the store. The submission that now occupies the same position becomes current.
func (s *Session) ConfirmApproval(ctx context.Context) (*models.PromotionResult, error) {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	current := s.queue[s.index]
	if s.approvalFor == 0 {
		s.mu.Unlock()
		return nil, ErrNoPendingApproval
	}
	if s.approvalFor != current.ID {
		s.approvalFor = 0
		s.mu.Unlock()
		return nil, ErrStaleApproval
	}
	promotion := BuildPromotion(current, s.draft)
	position := s.index
	s.busy = true
	s.mu.Unlock()

	result, err := s.promoter.Promote(ctx, promotion)
	if err != nil {
		s.mu.Lock()
		s.busy = false
		s.approvalFor = 0
		s.mu.Unlock()

		s.logger.Error("failed to promote submission",
			zap.Int64("submission_id", current.ID),
			zap.Error(err),
		)
		return nil, err
	}

	for _, l := range s.listeners {
		l.SubmissionPromoted(ctx, current, result)
	}

	queue, loadErr := s.submissions.ListActiveSubmissions(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.approvalFor = 0

	if loadErr != nil {
		s.logger.Error("failed to refresh review queue after promotion",
			zap.Int64("submission_id", current.ID),
			zap.Error(loadErr),
		)
		s.loadErr = loadErr
		s.removeSubmission(current.ID)
		return result, nil
	}

	s.loadErr = nil
	s.setQueue(queue, 0, position)
	return result, nil
}

// edit applies fn to the current draft. Any edit withdraws a pending approval so
// the operator confirms what will actually be written.
func (s *Session) edit(fn func(d *Draft) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}
	if err := fn(s.draft); err != nil {
		return err
	}
	s.approvalFor = 0
	return nil
}

// UpdateDraft applies u to the draft. Nothing changes when any field is invalid.
func (s *Session) UpdateDraft(u DraftUpdate) error {
	return s.edit(func(d *Draft) error {
		return d.Apply(u)
	})
}

// AddCategory adds a category to the draft. Candidates must be refreshed afterwards.
func (s *Session) AddCategory(text string) error {
	return s.edit(func(d *Draft) error {
		return d.AddCategory(text)
	})
}

// RemoveCategory removes a category from the draft. Candidates must be refreshed afterwards.
func (s *Session) RemoveCategory(category string) error {
	return s.edit(func(d *Draft) error {
		return d.RemoveCategory(category)
	})
}

// ToggleRelated selects or deselects a similarity candidate.
func (s *Session) ToggleRelated(id int64) (bool, error) {
	var selected bool
	err := s.edit(func(d *Draft) error {
		var err error
		selected, err = d.ToggleRelated(id)
		return err
	})
	return selected, err
}

// RefreshCandidates fetches every published newsletter and re-ranks them against
// the draft's categories. The result replaces the candidate list; it is dropped
// if the categories or the current submission changed while fetching.
func (s *Session) RefreshCandidates(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateReviewing {
		s.mu.Unlock()
		return ErrEmptyQueue
	}
	draft := s.draft
	revision := draft.revision
	categories := slices.Clone(draft.Categories)
	s.mu.Unlock()

	items, err := s.published.ListPublishedItems(ctx)
	if err != nil {
		s.logger.Error("failed to fetch similarity candidates",
			zap.Int64("submission_id", draft.SubmissionID),
			zap.Error(err),
		)
		return fmt.Errorf("fetch similarity candidates: %w", err)
	}
	ranked := Rank(categories, items)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft != draft {
		return nil
	}
	draft.setCandidates(revision, ranked)
	return nil
}

// EnsureCandidates refreshes candidates only when they are missing or stale.
func (s *Session) EnsureCandidates(ctx context.Context) error {
	s.mu.Lock()
	stale := s.state == StateReviewing && s.draft.CandidatesStale()
	s.mu.Unlock()

	if !stale {
		return nil
	}
	return s.RefreshCandidates(ctx)
}
