package review

import (
	"slices"
	"strings"

	"newsreview/internal/models"
	"newsreview/internal/validation"
)

// Draft is the operator's working copy of one submission's editable fields.
// It is thrown away whenever the session moves to a different submission.
type Draft struct {
	SubmissionID     int64    `json:"submission_id"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description"`
	Pricing          string   `json:"pricing"`
	Frequency        string   `json:"frequency"`
	Categories       []string `json:"categories"`

	candidates     []Candidate
	selected       []int64 // related newsletter ids in selection order
	revision       uint64  // bumped on every category change
	rankedRevision uint64
	ranked         bool
}

// NewDraft builds a fresh draft from a submission.
func NewDraft(s models.Submission) *Draft {
	return &Draft{
		SubmissionID: s.ID,
		Description:  s.Description,
		Pricing:      s.Pricing,
		Frequency:    s.Frequency,
		Categories:   slices.Clone(s.Categories),
	}
}

// HasRoomForCategory reports whether the category limit has been reached.
func (d *Draft) HasRoomForCategory() bool {
	return len(d.Categories) < models.MaxCategories
}

func (d *Draft) checkCategory(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyCategory
	}
	if !d.HasRoomForCategory() {
		return ErrCategoryLimit
	}
	if ok, _ := validation.ValidateCategory(text); !ok {
		return ErrCategoryTooLong
	}
	want := validation.NormalizeCategory(text)
	for _, c := range d.Categories {
		if validation.NormalizeCategory(c) == want {
			return ErrDuplicateCategory
		}
	}
	return nil
}

// AddCategory appends a trimmed category. Duplicates (case-insensitive) are refused.
func (d *Draft) AddCategory(text string) error {
	if err := d.checkCategory(text); err != nil {
		return err
	}
	d.Categories = append(slices.Clone(d.Categories), strings.Clone(strings.TrimSpace(text)))
	d.revision++
	return nil
}

// RemoveCategory removes an exact category tag.
func (d *Draft) RemoveCategory(category string) error {
	i := slices.Index(d.Categories, category)
	if i < 0 {
		return ErrCategoryNotFound
	}
	d.Categories = slices.Delete(slices.Clone(d.Categories), i, i+1)
	d.revision++
	return nil
}

// DraftUpdate carries changes to the draft's text fields. Nil fields are left alone.
type DraftUpdate struct {
	Description      *string
	ShortDescription *string
	Pricing          *string
	Frequency        *string
}

// Apply validates every field of u before changing anything, so an invalid
// field leaves the draft untouched. Values are copied; callers may reuse
// their buffers.
func (d *Draft) Apply(u DraftUpdate) error {
	if u.Pricing != nil && !models.IsValidPricing(*u.Pricing) {
		return ErrInvalidPricing
	}
	if u.Frequency != nil && !models.IsValidFrequency(*u.Frequency) {
		return ErrInvalidFrequency
	}

	if u.Description != nil {
		d.Description = strings.Clone(*u.Description)
	}
	if u.ShortDescription != nil {
		d.ShortDescription = strings.Clone(*u.ShortDescription)
	}
	if u.Pricing != nil {
		d.Pricing = strings.Clone(*u.Pricing)
	}
	if u.Frequency != nil {
		d.Frequency = strings.Clone(*u.Frequency)
	}
	return nil
}

// CandidatesStale reports whether the candidate list predates the current categories.
func (d *Draft) CandidatesStale() bool {
	return !d.ranked || d.rankedRevision != d.revision
}

// Candidates returns the ranked similarity candidates.
func (d *Draft) Candidates() []Candidate {
	return slices.Clone(d.candidates)
}

// setCandidates replaces the candidate list if it was ranked for the current
// categories. Selections that are no longer candidates are dropped.
func (d *Draft) setCandidates(revision uint64, candidates []Candidate) bool {
	if revision != d.revision {
		return false
	}
	d.candidates = candidates
	d.rankedRevision = revision
	d.ranked = true

	d.selected = slices.DeleteFunc(slices.Clone(d.selected), func(id int64) bool {
		return d.candidate(id) == nil
	})
	return true
}

func (d *Draft) candidate(id int64) *Candidate {
	for i := range d.candidates {
		if d.candidates[i].Item.ID == id {
			return &d.candidates[i]
		}
	}
	return nil
}

// ToggleRelated selects or deselects a candidate as related. Returns the new
// selection state.
func (d *Draft) ToggleRelated(id int64) (bool, error) {
	if d.candidate(id) == nil {
		return false, ErrUnknownCandidate
	}
	if i := slices.Index(d.selected, id); i >= 0 {
		d.selected = slices.Delete(slices.Clone(d.selected), i, i+1)
		return false, nil
	}
	d.selected = append(slices.Clone(d.selected), id)
	return true, nil
}

// IsSelected reports whether a candidate is selected as related.
func (d *Draft) IsSelected(id int64) bool {
	return slices.Contains(d.selected, id)
}

// SelectedIDs returns the selected related ids in selection order.
func (d *Draft) SelectedIDs() []int64 {
	return slices.Clone(d.selected)
}

// SelectedRelated returns the selected related newsletters in selection order.
func (d *Draft) SelectedRelated() []models.PublishedItem {
	items := make([]models.PublishedItem, 0, len(d.selected))
	for _, id := range d.selected {
		if c := d.candidate(id); c != nil {
			items = append(items, c.Item)
		}
	}
	return items
}

func (d *Draft) clone() *Draft {
	if d == nil {
		return nil
	}
	c := *d
	c.Categories = slices.Clone(d.Categories)
	c.candidates = slices.Clone(d.candidates)
	c.selected = slices.Clone(d.selected)
	return &c
}
