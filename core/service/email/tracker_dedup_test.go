package email

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobtracker_server/core/domain"
)

func TestThreadDeduper(t *testing.T) {
	d := NewThreadDeduper()

	assert.True(t, d.Add(&domain.Candidate{ThreadID: "t1", MessageID: "m1"}))
	assert.False(t, d.Add(&domain.Candidate{ThreadID: "t1", MessageID: "m2"}))
	assert.True(t, d.Add(&domain.Candidate{MessageID: "m3"}))
	assert.False(t, d.Add(&domain.Candidate{MessageID: "m3"}))
	assert.True(t, d.Add(&domain.Candidate{ThreadID: "t2", MessageID: "m1"}))
}

func TestCrossReference(t *testing.T) {
	refs := domain.NewConfirmedRefs()
	refs.Add("t1", "")
	refs.Add("", "m3")

	suggestions := []*domain.Suggestion{
		{Candidate: domain.Candidate{ThreadID: "t1", MessageID: "m1"}},
		{Candidate: domain.Candidate{ThreadID: "t2", MessageID: "m2"}},
		{Candidate: domain.Candidate{ThreadID: "t3", MessageID: "m3"}},
	}

	kept := CrossReference(suggestions, refs)
	assert.Len(t, kept, 1)
	assert.Equal(t, "m2", kept[0].MessageID)
	assert.Len(t, suggestions, 3)

	assert.Len(t, CrossReference(suggestions, nil), 3)

	candidates := []*domain.Candidate{{ThreadID: "t1"}, {ThreadID: "t9", MessageID: "m9"}}
	assert.Len(t, CrossReferenceCandidates(candidates, refs), 1)
	assert.Len(t, CrossReferenceCandidates(candidates, nil), 2)
}
