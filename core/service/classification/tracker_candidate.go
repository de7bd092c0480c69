package classification

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"jobtracker_server/core/domain"
	"jobtracker_server/pkg/textutil"
)

const (
	notesMaxRunes        = 200
	emailContentMaxRunes = 1500
)

// Evaluate runs match against m and builds a Candidate when it passes.
// A panicking predicate rejects the message; a panicking extractor yields placeholders.
func Evaluate(m *domain.NormalizedMessage, match Predicate, now time.Time) *domain.Candidate {
	if m == nil || !safeMatch(m, match) {
		return nil
	}
	return BuildCandidate(m, now)
}

func safeMatch(m *domain.NormalizedMessage, match Predicate) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return match(m)
}

// BuildCandidate extracts the candidate fields of a relevant message.
func BuildCandidate(m *domain.NormalizedMessage, now time.Time) *domain.Candidate {
	subject := strings.TrimSpace(m.Subject)
	if subject == "" {
		subject = domain.DefaultSubject
	}

	c := &domain.Candidate{
		Subject:      subject,
		Company:      domain.UnknownCompany,
		Role:         domain.UnknownRole,
		Status:       domain.StatusApplied,
		AppliedDate:  now.UTC().Format(time.DateOnly),
		Notes:        textutil.Truncate(m.Snippet, notesMaxRunes),
		ThreadID:     m.ThreadID,
		MessageID:    m.ID,
		EmailContent: EmailContent(m),
	}

	func() {
		defer func() { _ = recover() }()
		c.Company = ExtractCompany(m.From)
		c.Role = ExtractRole(m.Subject)
		c.Status = InferStatus(m.Subject, m.Body)
		if d, ok := parseHeaderDate(m.Date); ok {
			c.AppliedDate = d.UTC().Format(time.DateOnly)
		}
	}()

	return c
}

// EmailContent is the text handed to the model stages.
func EmailContent(m *domain.NormalizedMessage) string {
	body := m.Body
	if strings.TrimSpace(body) == "" {
		body = m.Snippet
	}
	return fmt.Sprintf("Subject: %s\nFrom: %s\nBody: %s",
		m.Subject, m.From, textutil.Truncate(body, emailContentMaxRunes))
}

func parseHeaderDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	if t, err := mail.ParseDate(v); err == nil {
		return t, true
	}
	if t, err := dateparse.ParseAny(v); err == nil {
		return t, true
	}
	return time.Time{}, false
}
