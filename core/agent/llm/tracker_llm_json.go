package llm

import (
	"strings"

	"github.com/goccy/go-json"

	"jobtracker_server/pkg/apperr"
)

// ExtractJSONObject pulls the structured payload out of free-form model output.
//
//	output := prose* fence? object fence? prose*
//	fence  := "```" [language] newline
//	object := the first balanced "{...}" (string and escape aware) that decodes as JSON
//
// Fenced content is searched first, then the whole text.
func ExtractJSONObject(text string) (string, error) {
	if inner, ok := fencedBlock(text); ok {
		if obj, ok := firstObject(inner); ok {
			return obj, nil
		}
	}
	if obj, ok := firstObject(text); ok {
		return obj, nil
	}
	return "", apperr.MalformedModelOutput("no JSON object found in model output")
}

func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	// drop the language tag line
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.Contains(rest[:nl], "{") {
		rest = rest[nl+1:]
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return rest, true
}

func firstObject(text string) (string, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		end, ok := matchBrace(text, i)
		if !ok {
			// a stray opener in prose never closes; a later block still can
			continue
		}
		obj := text[i : end+1]
		var probe map[string]json.RawMessage
		if json.Unmarshal([]byte(obj), &probe) == nil {
			return obj, true
		}
	}
	return "", false
}

// matchBrace returns the index of the brace closing text[open].
func matchBrace(text string, open int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
