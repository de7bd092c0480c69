package domain

import "time"

// =============================================================================
// Sync events
// =============================================================================

type SyncEventType string

const (
	SyncEventStatus SyncEventType = "status"
	SyncEventResult SyncEventType = "result"
	SyncEventError  SyncEventType = "error"
)

// SyncEvent is one frame on the progress stream. Result and Error are set
// only on the matching terminal types.
type SyncEvent struct {
	Seq       int64         `json:"seq"`
	Type      SyncEventType `json:"type"`
	Message   string        `json:"message,omitempty"`
	Result    *SyncResult   `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

func (e SyncEvent) Terminal() bool {
	return e.Type == SyncEventResult || e.Type == SyncEventError
}

type SyncResult struct {
	Connected   bool          `json:"connected"`
	Suggestions []*Suggestion `json:"suggestions"`
	Debug       *SyncDebug    `json:"debug,omitempty"`
}

// SyncTier names the heuristic tier that produced the candidates.
type SyncTier string

const (
	TierNone      SyncTier = ""
	TierStrict    SyncTier = "strict"
	TierLenient   SyncTier = "lenient"
	TierAcceptAny SyncTier = "accept_any"
)

type StageError struct {
	Stage     string `json:"stage"`
	Code      string `json:"code,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Message   string `json:"message"`
}

// SyncDebug holds per-stage counters and the errors swallowed along the way.
type SyncDebug struct {
	ListedCount          int          `json:"step1_list"`
	FetchedCount         int          `json:"fetched"`
	KeywordMatchedCount  int          `json:"step2_keyword"`
	AIClassifiedCount    int          `json:"step3_ai_classified"`
	SummarizedCount      int          `json:"summarized"`
	CrossReferencedCount int          `json:"cross_referenced"`
	Tier                 SyncTier     `json:"tier,omitempty"`
	Note                 string       `json:"note,omitempty"`
	Error                string       `json:"error,omitempty"`
	Errors               []StageError `json:"errors,omitempty"`
}

// AddError records a swallowed failure and extends the running annotation.
func (d *SyncDebug) AddError(stage, code, messageID, msg string) {
	d.Errors = append(d.Errors, StageError{Stage: stage, Code: code, MessageID: messageID, Message: msg})
	if d.Error == "" {
		d.Error = msg
	} else {
		d.Error += "; " + msg
	}
}

type SyncOptions struct {
	MaxMessages int
	Debug       bool
}

// SyncReport is the persisted summary of one run.
type SyncReport struct {
	ID              string        `json:"id"`
	MailboxIdentity string        `json:"mailbox_identity"`
	Outcome         string        `json:"outcome"`
	Connected       bool          `json:"connected"`
	SuggestionCount int           `json:"suggestion_count"`
	Debug           *SyncDebug    `json:"debug,omitempty"`
	Error           string        `json:"error,omitempty"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
	Duration        time.Duration `json:"duration"`
}
