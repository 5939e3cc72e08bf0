package review

import (
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsreview/internal/models"
)

func testDraft(categories ...string) *Draft {
	return NewDraft(models.Submission{
		ID:          1,
		Description: "hello",
		Pricing:     models.PricingFree,
		Frequency:   models.FrequencyDaily,
		Categories:  categories,
	})
}

func TestNewDraftCopiesSubmission(t *testing.T) {
	sub := models.Submission{ID: 4, Description: "d", Pricing: models.PricingPaid, Categories: []string{"tech"}}
	d := NewDraft(sub)

	require.NoError(t, d.AddCategory("ai"))

	assert.Equal(t, []string{"tech"}, sub.Categories, "submission categories must not be aliased")
	assert.Equal(t, "", d.ShortDescription)
	assert.Equal(t, models.PricingPaid, d.Pricing)
	assert.True(t, d.CandidatesStale())
}

func TestDraftAddCategory(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		text     string
		wantErr  error
		want     []string
	}{
		{"appends trimmed", []string{"tech"}, "  ai ", nil, []string{"tech", "ai"}},
		{"empty text", []string{"tech"}, "", ErrEmptyCategory, []string{"tech"}},
		{"whitespace only", nil, "   ", ErrEmptyCategory, nil},
		{"limit reached", []string{"a", "b", "c"}, "d", ErrCategoryLimit, []string{"a", "b", "c"}},
		{"duplicate", []string{"tech"}, "tech", ErrDuplicateCategory, []string{"tech"}},
		{"duplicate ignores case", []string{"Tech"}, "TECH", ErrDuplicateCategory, []string{"Tech"}},
		{"too long", nil, strings.Repeat("x", 65), ErrCategoryTooLong, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDraft(tt.existing...)
			err := d.AddCategory(tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, d.Categories)
		})
	}
}

func TestDraftHasRoomForCategory(t *testing.T) {
	d := testDraft("a", "b")
	assert.True(t, d.HasRoomForCategory())

	require.NoError(t, d.AddCategory("c"))
	assert.False(t, d.HasRoomForCategory())

	require.NoError(t, d.RemoveCategory("a"))
	assert.True(t, d.HasRoomForCategory())
}

func TestDraftRemoveCategory(t *testing.T) {
	d := testDraft("tech", "ai")

	require.NoError(t, d.RemoveCategory("tech"))
	assert.Equal(t, []string{"ai"}, d.Categories)

	assert.ErrorIs(t, d.RemoveCategory("tech"), ErrCategoryNotFound)
}

func TestDraftApply(t *testing.T) {
	d := testDraft()

	require.NoError(t, d.Apply(DraftUpdate{
		Pricing:   text(models.PricingFreemium),
		Frequency: text(models.FrequencyMonthly),
	}))
	assert.Equal(t, models.PricingFreemium, d.Pricing)
	assert.Equal(t, models.FrequencyMonthly, d.Frequency)

	assert.ErrorIs(t, d.Apply(DraftUpdate{Pricing: text("CHEAP")}), ErrInvalidPricing)
	assert.ErrorIs(t, d.Apply(DraftUpdate{Frequency: text("hourly")}), ErrInvalidFrequency)
	assert.Equal(t, models.PricingFreemium, d.Pricing)
	assert.Equal(t, models.FrequencyMonthly, d.Frequency)
}

func TestDraftApplyIsAllOrNothing(t *testing.T) {
	d := testDraft()
	before := d.Description

	err := d.Apply(DraftUpdate{
		Description:      text("rewritten"),
		ShortDescription: text("short"),
		Frequency:        text("hourly"),
	})

	assert.ErrorIs(t, err, ErrInvalidFrequency)
	assert.Equal(t, before, d.Description)
	assert.Empty(t, d.ShortDescription)
}

// The draft outlives the request, so it must not share memory with the caller.
func TestDraftCopiesCallerStrings(t *testing.T) {
	d := testDraft()
	buf := []byte("first text")
	description := unsafe.String(&buf[0], len(buf))
	category := unsafe.String(&buf[0], 5)

	require.NoError(t, d.Apply(DraftUpdate{Description: &description}))
	require.NoError(t, d.AddCategory(category))
	copy(buf, "CHEAP")

	assert.Equal(t, "first text", d.Description)
	assert.Contains(t, d.Categories, "first")
}

func TestDraftCandidatesRevision(t *testing.T) {
	d := testDraft("tech")
	rev := d.revision
	cands := Rank(d.Categories, []models.PublishedItem{publishedWith(10, "tech")})

	require.NoError(t, d.AddCategory("ai"))

	assert.False(t, d.setCandidates(rev, cands), "ranking for old categories must be discarded")
	assert.True(t, d.CandidatesStale())
	assert.Empty(t, d.Candidates())

	assert.True(t, d.setCandidates(d.revision, cands))
	assert.False(t, d.CandidatesStale())
	assert.Equal(t, []int64{10}, candidateIDs(d.Candidates()))
}

func TestDraftToggleRelated(t *testing.T) {
	d := testDraft("tech")
	items := []models.PublishedItem{publishedWith(10, "tech"), publishedWith(20, "tech")}
	require.True(t, d.setCandidates(d.revision, Rank(d.Categories, items)))

	selected, err := d.ToggleRelated(20)
	require.NoError(t, err)
	assert.True(t, selected)

	selected, err = d.ToggleRelated(10)
	require.NoError(t, err)
	assert.True(t, selected)
	assert.Equal(t, []int64{20, 10}, d.SelectedIDs())
	assert.Len(t, d.SelectedRelated(), 2)

	selected, err = d.ToggleRelated(20)
	require.NoError(t, err)
	assert.False(t, selected)
	assert.False(t, d.IsSelected(20))
	assert.Equal(t, []int64{10}, d.SelectedIDs())

	_, err = d.ToggleRelated(99)
	assert.ErrorIs(t, err, ErrUnknownCandidate)
}

func TestDraftRefreshDropsVanishedSelections(t *testing.T) {
	d := testDraft("tech", "ai")
	items := []models.PublishedItem{publishedWith(10, "tech"), publishedWith(20, "ai")}
	require.True(t, d.setCandidates(d.revision, Rank(d.Categories, items)))
	_, err := d.ToggleRelated(10)
	require.NoError(t, err)
	_, err = d.ToggleRelated(20)
	require.NoError(t, err)

	require.NoError(t, d.RemoveCategory("ai"))
	require.True(t, d.setCandidates(d.revision, Rank(d.Categories, items)))

	assert.Equal(t, []int64{10}, d.SelectedIDs())
}
