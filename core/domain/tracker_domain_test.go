package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"Applied", StatusApplied},
		{"rejected", StatusRejected},
		{"  OFFER ", StatusOffer},
		{"interviewing", StatusInterviewing},
		{"ghosted", StatusApplied},
		{"", StatusApplied},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseStatus(tt.in), tt.in)
	}
}

func TestCandidateDedupKey(t *testing.T) {
	assert.Equal(t, "t1", (&Candidate{ThreadID: "t1", MessageID: "m1"}).DedupKey())
	assert.Equal(t, "m1", (&Candidate{MessageID: "m1"}).DedupKey())
}

func TestConfirmedRefs(t *testing.T) {
	refs := RefsFrom([]*ConfirmedApplication{
		{ThreadID: "t1", MessageID: "m1"},
		{MessageID: "m2"},
	})

	assert.True(t, refs.Contains("t1", "other"))
	assert.True(t, refs.Contains("", "m2"))
	assert.True(t, refs.Contains("t9", "m1"))
	assert.False(t, refs.Contains("t9", "m9"))
	assert.False(t, refs.Contains("", ""))

	var nilRefs *ConfirmedRefs
	assert.False(t, nilRefs.Contains("t1", "m1"))
}

func TestCacheEntryValidFor(t *testing.T) {
	entry := &CacheEntry{MailboxIdentity: "a@x.com"}
	assert.True(t, entry.ValidFor("a@x.com"))
	assert.False(t, entry.ValidFor("b@y.com"))
	assert.False(t, entry.ValidFor(""))
	assert.False(t, (&CacheEntry{}).ValidFor("a@x.com"))

	var nilEntry *CacheEntry
	assert.False(t, nilEntry.ValidFor("a@x.com"))
}

func TestFromSuggestionOverrides(t *testing.T) {
	s := &Suggestion{
		Candidate:     Candidate{Company: "Acme", Role: "Engineer", Status: StatusApplied, MessageID: "m1", ThreadID: "t1"},
		AIActionItems: []string{"reply"},
	}

	app := FromSuggestion(s, AcceptOverrides{Role: " Backend Engineer ", Status: "bogus"})
	assert.Equal(t, "Acme", app.Company)
	assert.Equal(t, "Backend Engineer", app.Role)
	assert.Equal(t, StatusApplied, app.Status)
	assert.Equal(t, "t1", app.ThreadID)

	app.AIActionItems[0] = "changed"
	assert.Equal(t, "reply", s.AIActionItems[0])
}

func TestSyncDebugAddError(t *testing.T) {
	d := &SyncDebug{}
	d.AddError("fetch", "MESSAGE_FETCH_FAILED", "m1", "boom")
	d.AddError("fetch", "MESSAGE_FETCH_FAILED", "m2", "bang")
	assert.Len(t, d.Errors, 2)
	assert.Equal(t, "MESSAGE_FETCH_FAILED", d.Errors[1].Code)
	assert.Equal(t, "boom; bang", d.Error)
}
