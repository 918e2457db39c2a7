package dispatch

import (
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/claimdesk/claim-notifier/internal/domain"
)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// Subject renders the email subject line for a status change.
func Subject(claimID string, newStatus string) string {
	return fmt.Sprintf("Claim %s: %s", claimID, newStatus)
}

// EmailBody renders the HTML email summarizing the status transition.
// Field values come from database rows, but they ultimately originate from
// form input, so they are escaped.
func EmailBody(job domain.NotificationJob) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:system-ui"><h2>Claim Update</h2>`)
	fmt.Fprintf(&b, "<p><b>Claim ID:</b> %s</p>", template.HTMLEscapeString(job.ClaimID))
	fmt.Fprintf(&b, "<p><b>Status:</b> %s", template.HTMLEscapeString(job.NewStatus))
	if job.PrevStatus != nil && *job.PrevStatus != "" {
		fmt.Fprintf(&b, " (was %s)", template.HTMLEscapeString(*job.PrevStatus))
	}
	b.WriteString("</p>")
	fmt.Fprintf(&b, "<p><b>Type:</b> %s</p>", template.HTMLEscapeString(job.ClaimType))
	b.WriteString("</div>")
	return b.String()
}

// SMSBody renders the plain-text SMS for a status change.
func SMSBody(job domain.NotificationJob) string {
	msg := fmt.Sprintf("Claim %s is now %q.", job.ClaimID, job.NewStatus)
	if job.PrevStatus != nil && *job.PrevStatus != "" {
		msg += fmt.Sprintf(" (was %s)", *job.PrevStatus)
	}
	return msg
}

// NormalizePhone coerces a stored contact number into E.164-ish form:
// digits-only input gets a leading +, an already-prefixed number passes
// through, everything else is invalid and the SMS channel is skipped.
func NormalizePhone(raw *string) (string, bool) {
	if raw == nil {
		return "", false
	}

	trimmed := strings.TrimSpace(*raw)
	switch {
	case trimmed == "":
		return "", false
	case digitsOnly.MatchString(trimmed):
		return "+" + trimmed, true
	case strings.HasPrefix(trimmed, "+"):
		return trimmed, true
	default:
		return "", false
	}
}
