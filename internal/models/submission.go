package models

import (
	"time"
)

// Pricing tiers
const (
	PricingFree     = "FREE"
	PricingFreemium = "FREEMIUM"
	PricingPaid     = "PAID"
)

// Publication frequencies
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// MaxCategories is the number of category tags a submission may carry.
const MaxCategories = 3

// PricingTiers lists the valid pricing tiers in display order.
var PricingTiers = []string{PricingFree, PricingFreemium, PricingPaid}

// Frequencies lists the valid publication frequencies in display order.
var Frequencies = []string{FrequencyDaily, FrequencyWeekly, FrequencyMonthly}

// Submission is a newsletter entry awaiting review.
type Submission struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Pricing        string    `json:"pricing"`   // FREE, FREEMIUM, PAID
	Frequency      string    `json:"frequency"` // daily, weekly, monthly
	Categories     []string  `json:"categories"`
	URL            string    `json:"url"`
	OGImage        string    `json:"og_image"`
	SubmitterName  string    `json:"submitter_name"`
	SubmitterEmail string    `json:"submitter_email"`
	CreatedAt      time.Time `json:"created_at"`
	Rejected       bool      `json:"rejected"`
	Uploaded       bool      `json:"uploaded"`
}

// IsActive reports whether the submission still belongs in the review queue.
func (s *Submission) IsActive() bool {
	return !s.Rejected && !s.Uploaded
}

// IsValidPricing returns true if p is one of the known pricing tiers.
func IsValidPricing(p string) bool {
	for _, tier := range PricingTiers {
		if tier == p {
			return true
		}
	}
	return false
}

// IsValidFrequency returns true if f is one of the known publication frequencies.
func IsValidFrequency(f string) bool {
	for _, freq := range Frequencies {
		if freq == f {
			return true
		}
	}
	return false
}
