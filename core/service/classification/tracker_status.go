package classification

import (
	"strings"

	"jobtracker_server/core/domain"
)

// InferStatus guesses a status from unambiguous phrases. Defaults to Applied.
// Only a pre-model signal; the summarizer overrides it.
func InferStatus(subject, body string) domain.Status {
	text := strings.ToLower(subject) + " " + strings.ToLower(body)
	for _, set := range statusPhrases {
		for _, p := range set.phrases {
			if strings.Contains(text, p) {
				return set.status
			}
		}
	}
	return domain.StatusApplied
}
