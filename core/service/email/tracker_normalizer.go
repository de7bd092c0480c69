package email

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobtracker_server/core/domain"
	"jobtracker_server/pkg/textutil"
)

var (
	tagRegex       = regexp.MustCompile(`(?s)<[^>]*>`)
	scriptRegex    = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	invisibleRegex = regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}\x{00AD}\x{034F}\x{2060}-\x{2064}]+`)
)

// Normalize decodes a raw provider message into headers and plain text.
// Malformed content never fails; undecodable fragments are empty.
func Normalize(raw *domain.RawMessage) *domain.NormalizedMessage {
	if raw == nil {
		return &domain.NormalizedMessage{}
	}

	n := &domain.NormalizedMessage{
		ID:         raw.ID,
		ThreadID:   raw.ThreadID,
		Subject:    strings.TrimSpace(raw.Header("Subject")),
		From:       strings.TrimSpace(raw.Header("From")),
		Date:       strings.TrimSpace(raw.Header("Date")),
		Snippet:    textutil.SanitizeUTF8(raw.Snippet),
		ReceivedAt: raw.ReceivedAt(),
	}

	n.Body = strings.TrimSpace(ExtractBody(raw.Payload))
	if n.Body == "" {
		n.Body = n.Snippet
	}
	return n
}

// ExtractBody prefers the top-level body, then every text/plain part,
// then the first text/html part converted to text.
func ExtractBody(payload *domain.MessagePart) string {
	if payload == nil {
		return ""
	}

	if payload.Body != nil && payload.Body.Data != "" {
		text := decodeBase64URL(payload.Body.Data)
		if isMime(payload.MimeType, "text/html") {
			text = htmlToText(text)
		}
		if strings.TrimSpace(text) != "" {
			return text
		}
	}

	var plain []string
	walkParts(payload.Parts, func(p *domain.MessagePart) bool {
		if isMime(p.MimeType, "text/plain") && p.Filename == "" && p.Body != nil {
			if text := decodeBase64URL(p.Body.Data); strings.TrimSpace(text) != "" {
				plain = append(plain, text)
			}
		}
		return true
	})
	if len(plain) > 0 {
		return strings.Join(plain, "\n")
	}

	var html string
	walkParts(payload.Parts, func(p *domain.MessagePart) bool {
		if isMime(p.MimeType, "text/html") && p.Filename == "" && p.Body != nil {
			html = decodeBase64URL(p.Body.Data)
			return false
		}
		return true
	})
	return htmlToText(html)
}

// walkParts visits parts depth-first until visit returns false.
func walkParts(parts []*domain.MessagePart, visit func(*domain.MessagePart) bool) bool {
	for _, p := range parts {
		if p == nil {
			continue
		}
		if !visit(p) {
			return false
		}
		if !walkParts(p.Parts, visit) {
			return false
		}
	}
	return true
}

func isMime(got, want string) bool {
	mt, _, _ := strings.Cut(got, ";")
	return strings.EqualFold(strings.TrimSpace(mt), want)
}

// decodeBase64URL accepts padded or unpadded, URL or standard alphabet input.
func decodeBase64URL(data string) string {
	if data == "" {
		return ""
	}
	clean := strings.TrimRight(strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, data), "=")

	decoded, err := base64.RawURLEncoding.DecodeString(clean)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(clean)
		if err != nil {
			return ""
		}
	}
	return textutil.SanitizeUTF8(string(decoded))
}

func htmlToText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return stripTags(html)
	}
	doc.Find("script, style, head, meta, link").Remove()
	doc.Find("p, div, br, h1, h2, h3, h4, h5, h6, li, tr, td").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml(" ")
	})

	text := invisibleRegex.ReplaceAllString(doc.Text(), "")
	return textutil.CollapseWhitespace(text)
}

func stripTags(html string) string {
	text := scriptRegex.ReplaceAllString(html, " ")
	text = tagRegex.ReplaceAllString(text, " ")
	return textutil.CollapseWhitespace(text)
}
