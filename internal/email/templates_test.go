package email

import (
	"strings"
	"testing"

	"newsreview/internal/config"
	"newsreview/internal/models"
)

func testTemplates() *Templates {
	return NewTemplates(&config.Config{SiteTitle: "Newsletter Review"})
}

func TestSubmissionPublished(t *testing.T) {
	sub := models.Submission{
		Title:         "Morning <Brew>",
		URL:           "https://brew.example",
		SubmitterName: "Sam",
	}
	item := models.PublishedItem{Pricing: models.PricingFreemium, Categories: []string{"tech", "ai"}}

	subject, htmlBody, textBody := testTemplates().SubmissionPublished(sub, item)

	if !strings.HasPrefix(subject, "[Newsletter Review]") {
		t.Errorf("subject = %q, want site title prefix", subject)
	}
	if !strings.Contains(subject, "Morning <Brew>") {
		t.Errorf("subject = %q, want newsletter title", subject)
	}
	if strings.Contains(htmlBody, "<Brew>") {
		t.Error("HTML body must escape the title")
	}
	if !strings.Contains(htmlBody, "Morning &lt;Brew&gt;") {
		t.Error("HTML body missing escaped title")
	}
	for _, want := range []string{"Hi Sam,", "FREEMIUM", "tech, ai", "https://brew.example"} {
		if !strings.Contains(textBody, want) {
			t.Errorf("text body missing %q", want)
		}
	}
}

func TestSubmissionRejected(t *testing.T) {
	sub := models.Submission{Title: "Daily Digest", URL: "https://digest.example"}

	subject, htmlBody, textBody := testTemplates().SubmissionRejected(sub)

	if !strings.Contains(subject, "Daily Digest") {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(htmlBody, "Not listed") {
		t.Error("HTML body missing status")
	}
	if !strings.HasPrefix(textBody, "Hi,") {
		t.Errorf("text body should greet anonymously, got %q", textBody[:10])
	}
}
