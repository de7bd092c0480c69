package domain

import "time"

// CacheEntry is the persisted suggestion list of the last successful sync.
type CacheEntry struct {
	Suggestions     []*Suggestion `json:"suggestions"`
	SavedAt         time.Time     `json:"saved_at"`
	MailboxIdentity string        `json:"mailbox_identity"`
}

// ValidFor reports whether the entry was computed for identity.
// An empty identity on either side never matches.
func (e *CacheEntry) ValidFor(identity string) bool {
	if e == nil || identity == "" || e.MailboxIdentity == "" {
		return false
	}
	return e.MailboxIdentity == identity
}
