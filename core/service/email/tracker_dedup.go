package email

import "jobtracker_server/core/domain"

// ThreadDeduper keeps the first candidate of each conversation.
type ThreadDeduper struct {
	seen map[string]struct{}
}

func NewThreadDeduper() *ThreadDeduper {
	return &ThreadDeduper{seen: make(map[string]struct{})}
}

// Add reports whether c is the first of its conversation.
func (d *ThreadDeduper) Add(c *domain.Candidate) bool {
	key := c.DedupKey()
	if key == "" {
		return true
	}
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// CrossReferenceCandidates drops candidates already confirmed.
func CrossReferenceCandidates(list []*domain.Candidate, refs *domain.ConfirmedRefs) []*domain.Candidate {
	if refs.Len() == 0 {
		return list
	}
	kept := make([]*domain.Candidate, 0, len(list))
	for _, c := range list {
		if !refs.Contains(c.ThreadID, c.MessageID) {
			kept = append(kept, c)
		}
	}
	return kept
}

// CrossReference drops suggestions already confirmed. The input slice is not modified.
func CrossReference(list []*domain.Suggestion, refs *domain.ConfirmedRefs) []*domain.Suggestion {
	kept := make([]*domain.Suggestion, 0, len(list))
	for _, s := range list {
		if !refs.Contains(s.ThreadID, s.MessageID) {
			kept = append(kept, s)
		}
	}
	return kept
}
