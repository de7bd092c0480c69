package domain

import (
	"strings"
	"time"
)

// =============================================================================
// Application status
// =============================================================================

type Status string

const (
	StatusApplied      Status = "Applied"
	StatusInterviewing Status = "Interviewing"
	StatusOffer        Status = "Offer"
	StatusRejected     Status = "Rejected"
)

// Statuses lists every canonical status.
var Statuses = []Status{StatusApplied, StatusInterviewing, StatusOffer, StatusRejected}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus matches s case-insensitively against the canonical statuses.
// Anything else becomes StatusApplied.
func ParseStatus(s string) Status {
	if st, ok := LookupStatus(s); ok {
		return st
	}
	return StatusApplied
}

// LookupStatus is ParseStatus without the default.
func LookupStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, v := range Statuses {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	return "", false
}

const (
	UnknownCompany = "Unknown Company"
	UnknownRole    = "Unknown Role"
	DefaultSubject = "Job Application"
)

// =============================================================================
// Candidate & Suggestion
// =============================================================================

// Candidate is a message that passed the heuristic filter. It lives for one sync run.
type Candidate struct {
	Subject     string `json:"subject"`
	Company     string `json:"company"`
	Role        string `json:"role"`
	Status      Status `json:"status"`
	AppliedDate string `json:"applied_date"` // YYYY-MM-DD
	Notes       string `json:"notes"`
	Link        string `json:"link"`
	ThreadID    string `json:"thread_id,omitempty"`
	MessageID   string `json:"message_id"`

	// EmailContent is the text sent to the model stages.
	EmailContent string `json:"-"`
}

// DedupKey is the conversation id, or the message id when there is none.
func (c *Candidate) DedupKey() string {
	if c.ThreadID != "" {
		return c.ThreadID
	}
	return c.MessageID
}

type AISummary struct {
	Summary     string   `json:"summary"`
	ActionItems []string `json:"action_items"`
	Status      Status   `json:"status"`
}

// Suggestion is a Candidate after the model stages, pending user review.
type Suggestion struct {
	Candidate

	AISummary       string   `json:"ai_summary"`
	AIActionItems   []string `json:"ai_action_items"`
	HeuristicStatus Status   `json:"heuristic_status"`
	AIProcessed     bool     `json:"ai_processed"`
}

// =============================================================================
// Confirmed applications
// =============================================================================

type ConfirmedApplication struct {
	ID            string    `json:"id"`
	Company       string    `json:"company"`
	Role          string    `json:"role"`
	Status        Status    `json:"status"`
	AppliedDate   string    `json:"applied_date"`
	Notes         string    `json:"notes"`
	Link          string    `json:"link"`
	ThreadID      string    `json:"thread_id,omitempty"`
	MessageID     string    `json:"message_id,omitempty"`
	AISummary     string    `json:"ai_summary,omitempty"`
	AIActionItems []string  `json:"ai_action_items,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ApplicationFilter narrows List. Zero value lists everything.
type ApplicationFilter struct {
	Status Status
}

// ApplicationPatch holds the fields a client may change. Nil means unchanged.
type ApplicationPatch struct {
	Company     *string `json:"company,omitempty"`
	Role        *string `json:"role,omitempty"`
	Status      *Status `json:"status,omitempty"`
	AppliedDate *string `json:"applied_date,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	Link        *string `json:"link,omitempty"`
}

func (p *ApplicationPatch) Empty() bool {
	return p.Company == nil && p.Role == nil && p.Status == nil &&
		p.AppliedDate == nil && p.Notes == nil && p.Link == nil
}

// AcceptOverrides lets the reviewer edit a suggestion while accepting it.
type AcceptOverrides struct {
	Company string `json:"company,omitempty"`
	Role    string `json:"role,omitempty"`
	Status  Status `json:"status,omitempty"`
	Notes   string `json:"notes,omitempty"`
	Link    string `json:"link,omitempty"`
}

// FromSuggestion builds the record stored when a suggestion is accepted.
func FromSuggestion(s *Suggestion, o AcceptOverrides) *ConfirmedApplication {
	app := &ConfirmedApplication{
		Company:       s.Company,
		Role:          s.Role,
		Status:        s.Status,
		AppliedDate:   s.AppliedDate,
		Notes:         s.Notes,
		Link:          s.Link,
		ThreadID:      s.ThreadID,
		MessageID:     s.MessageID,
		AISummary:     s.AISummary,
		AIActionItems: append([]string(nil), s.AIActionItems...),
	}
	if v := strings.TrimSpace(o.Company); v != "" {
		app.Company = v
	}
	if v := strings.TrimSpace(o.Role); v != "" {
		app.Role = v
	}
	if o.Status.Valid() {
		app.Status = o.Status
	}
	if v := strings.TrimSpace(o.Notes); v != "" {
		app.Notes = v
	}
	if v := strings.TrimSpace(o.Link); v != "" {
		app.Link = v
	}
	return app
}

// ConfirmedRefs is the set of conversation and message ids already confirmed.
type ConfirmedRefs struct {
	threads  map[string]struct{}
	messages map[string]struct{}
}

func NewConfirmedRefs() *ConfirmedRefs {
	return &ConfirmedRefs{
		threads:  make(map[string]struct{}),
		messages: make(map[string]struct{}),
	}
}

// RefsFrom collects the ids of apps.
func RefsFrom(apps []*ConfirmedApplication) *ConfirmedRefs {
	refs := NewConfirmedRefs()
	for _, a := range apps {
		refs.Add(a.ThreadID, a.MessageID)
	}
	return refs
}

func (r *ConfirmedRefs) Add(threadID, messageID string) {
	if threadID != "" {
		r.threads[threadID] = struct{}{}
	}
	if messageID != "" {
		r.messages[messageID] = struct{}{}
	}
}

// Contains reports whether either id is confirmed. Empty ids never match.
func (r *ConfirmedRefs) Contains(threadID, messageID string) bool {
	if r == nil {
		return false
	}
	if threadID != "" {
		if _, ok := r.threads[threadID]; ok {
			return true
		}
	}
	if messageID != "" {
		if _, ok := r.messages[messageID]; ok {
			return true
		}
	}
	return false
}

func (r *ConfirmedRefs) Len() int {
	if r == nil {
		return 0
	}
	return len(r.threads) + len(r.messages)
}
