package email

import (
	"fmt"
	"html"
	"strings"

	"newsreview/internal/config"
	"newsreview/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #7c3aed; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 22px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        .tag { display: inline-block; background: #e5e7eb; padding: 2px 8px; border-radius: 9999px; font-size: 12px; margin-right: 4px; }
        .success { color: #059669; }
        .error { color: #dc2626; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle))
}

func greeting(name string) string {
	if name == "" {
		return "Hi,"
	}
	return fmt.Sprintf("Hi %s,", name)
}

// SubmissionPublished generates the email sent when a submission is published.
func (t *Templates) SubmissionPublished(sub models.Submission, item models.PublishedItem) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] %s is now listed", t.cfg.SiteTitle, sub.Title)

	var tags strings.Builder
	for _, c := range item.Categories {
		tags.WriteString(fmt.Sprintf(`<span class="tag">%s</span>`, html.EscapeString(c)))
	}

	content := fmt.Sprintf(`
        <p>%s</p>
        <p>Good news! Your newsletter has been reviewed and added to the directory.</p>

        <div class="info-box">
            <p><span class="label">Newsletter:</span> %s</p>
            <p><span class="label">URL:</span> <a href="%s">%s</a></p>
            <p><span class="label">Pricing:</span> %s</p>
            <p><span class="label">Categories:</span> %s</p>
            <p><span class="label">Status:</span> <span class="success">Published</span></p>
        </div>
    `,
		html.EscapeString(greeting(sub.SubmitterName)),
		html.EscapeString(sub.Title),
		html.EscapeString(sub.URL),
		html.EscapeString(sub.URL),
		html.EscapeString(item.Pricing),
		tags.String(),
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`%s

Your newsletter has been reviewed and added to the directory.

Newsletter: %s
URL: %s
Pricing: %s
Categories: %s
Status: Published

--
%s`,
		greeting(sub.SubmitterName),
		sub.Title,
		sub.URL,
		item.Pricing,
		strings.Join(item.Categories, ", "),
		t.cfg.SiteTitle,
	)

	return
}

// SubmissionRejected generates the email sent when a submission is turned down.
func (t *Templates) SubmissionRejected(sub models.Submission) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] Update on your submission %s", t.cfg.SiteTitle, sub.Title)

	content := fmt.Sprintf(`
        <p>%s</p>
        <p>Thank you for submitting your newsletter. After review we decided not to list it at this time.</p>

        <div class="info-box">
            <p><span class="label">Newsletter:</span> %s</p>
            <p><span class="label">URL:</span> %s</p>
            <p><span class="label">Status:</span> <span class="error">Not listed</span></p>
        </div>
    `,
		html.EscapeString(greeting(sub.SubmitterName)),
		html.EscapeString(sub.Title),
		html.EscapeString(sub.URL),
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`%s

Thank you for submitting your newsletter. After review we decided not to list it at this time.

Newsletter: %s
URL: %s
Status: Not listed

--
%s`,
		greeting(sub.SubmitterName),
		sub.Title,
		sub.URL,
		t.cfg.SiteTitle,
	)

	return
}
