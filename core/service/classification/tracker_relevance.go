// Package classification decides which mailbox messages look like job applications.
package classification

import (
	"strings"

	"jobtracker_server/core/domain"
)

// Predicate decides whether a message is worth a model call.
type Predicate func(m *domain.NormalizedMessage) bool

// Tier is one strictness level of the heuristic filter.
type Tier struct {
	Name  domain.SyncTier
	Match Predicate
	// Scope limits the tier to the first Scope messages (newest first). Zero means all.
	Scope int
}

// Apply returns the messages the tier looks at.
func (t Tier) Apply(msgs []*domain.NormalizedMessage) []*domain.NormalizedMessage {
	if t.Scope > 0 && len(msgs) > t.Scope {
		return msgs[:t.Scope]
	}
	return msgs
}

// DefaultTiers is strict, then lenient, then accept-any over the newest acceptAnyWindow messages.
func DefaultTiers(acceptAnyWindow int) []Tier {
	if acceptAnyWindow <= 0 {
		acceptAnyWindow = 10
	}
	return []Tier{
		{Name: domain.TierStrict, Match: StrictMatch},
		{Name: domain.TierLenient, Match: LenientMatch},
		{Name: domain.TierAcceptAny, Match: AcceptAny, Scope: acceptAnyWindow},
	}
}

// StrictMatch looks for lifecycle keywords, ATS vendors, a job subject or a recruiting sender.
func StrictMatch(m *domain.NormalizedMessage) bool {
	text := strings.ToLower(m.Subject + " " + m.Body + " " + m.From)
	for _, kw := range jobKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return jobSubjectRe.MatchString(m.Subject) || recruiterFromRe.MatchString(m.From)
}

// LenientMatch also accepts replies.
func LenientMatch(m *domain.NormalizedMessage) bool {
	return strings.Contains(strings.ToLower(m.Subject), "re:") || StrictMatch(m)
}

func AcceptAny(*domain.NormalizedMessage) bool {
	return true
}
