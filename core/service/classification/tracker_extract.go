package classification

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"jobtracker_server/core/domain"
	"jobtracker_server/pkg/textutil"
)

var (
	noReplyRe       = regexp.MustCompile(`(?i)\b(?:no-?reply|do-?not-?reply|donotreply)\b`)
	viaRe           = regexp.MustCompile(`(?i)^(.+?)\s+via\s+.+$`)
	recruitingAtRe  = regexp.MustCompile(`(?i)^(?:recruiting|careers|talent acquisition|talent|hiring team|jobs)\s+(?:at|@)\s+(.+)$`)
	teamSuffixRe    = regexp.MustCompile(`(?i)\s+(?:careers|recruiting|recruitment|talent acquisition|talent|hiring team|jobs)$`)
	subdomainPrefix = []string{"mail.", "email.", "careers.", "jobs.", "recruit.", "recruiting.", "talent.", "hr.", "notifications.", "us.", "eu."}

	roleForRe      = regexp.MustCompile(`(?i)application\s+for\s+(?:the\s+)?(?:position\s+of\s+)?([^\-–—|,(]+)`)
	rolePositionRe = regexp.MustCompile(`(?i)\b(?:position|role)\s*:\s*([^\-–—|,(]+)`)
	roleTitleRe    = regexp.MustCompile(`(?i)\b([a-z]+(?:\s+[a-z]+)?\s+(?:engineer|developer|analyst|designer|manager|scientist|intern))\b`)
	roleAtSuffixRe = regexp.MustCompile(`(?i)\s+(?:at|@)\s+.*$`)
	roleNounRe     = regexp.MustCompile(`(?i)\s+(?:position|role|opening|opportunity)$`)
	rolePatterns   = []*regexp.Regexp{roleForRe, rolePositionRe, roleTitleRe}
)

// ExtractCompany derives a company name from a From header.
func ExtractCompany(from string) string {
	from = strings.TrimSpace(from)
	if from == "" {
		return domain.UnknownCompany
	}

	name, addr := splitFrom(from)
	if c := companyFromName(name); plausibleCompany(c) {
		return c
	}
	if c := companyFromDomain(addr); c != "" {
		return c
	}
	return domain.UnknownCompany
}

func splitFrom(from string) (name, addr string) {
	if a, err := mail.ParseAddress(from); err == nil {
		return a.Name, a.Address
	}
	if i := strings.Index(from, "<"); i >= 0 {
		name = strings.Trim(strings.TrimSpace(from[:i]), `"'`)
		rest := from[i+1:]
		if j := strings.Index(rest, ">"); j >= 0 {
			rest = rest[:j]
		}
		return name, strings.TrimSpace(rest)
	}
	if strings.Contains(from, "@") {
		return "", from
	}
	return from, ""
}

func companyFromName(name string) string {
	name = noReplyRe.ReplaceAllString(name, "")
	name = strings.Trim(strings.TrimSpace(name), `"'-|:, `)
	if m := viaRe.FindStringSubmatch(name); m != nil {
		name = m[1]
	}
	if m := recruitingAtRe.FindStringSubmatch(name); m != nil {
		name = m[1]
	}
	name = teamSuffixRe.ReplaceAllString(name, "")
	return textutil.CollapseWhitespace(name)
}

func plausibleCompany(c string) bool {
	n := utf8.RuneCountInString(c)
	return n >= 3 && n < 80 && !strings.Contains(c, "@")
}

func companyFromDomain(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return ""
	}
	host := strings.ToLower(strings.Trim(addr[at+1:], "> "))
	for stripped := true; stripped; {
		stripped = false
		for _, p := range subdomainPrefix {
			if strings.HasPrefix(host, p) && strings.Count(host, ".") > 1 {
				host = strings.TrimPrefix(host, p)
				stripped = true
			}
		}
	}
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(r)) + label[size:]
}

// ExtractRole derives a job title from a subject line.
func ExtractRole(subject string) string {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return domain.UnknownRole
	}

	for _, p := range rolePatterns {
		m := p.FindStringSubmatch(subject)
		if m == nil {
			continue
		}
		role := roleAtSuffixRe.ReplaceAllString(m[1], "")
		role = roleNounRe.ReplaceAllString(strings.TrimSpace(role), "")
		role = strings.Trim(textutil.CollapseWhitespace(role), ` .:!"'`)
		if n := utf8.RuneCountInString(role); n >= 3 && n < 100 {
			return role
		}
	}

	lower := strings.ToLower(subject)
	switch {
	case strings.Contains(lower, "engineer"):
		return "Software Engineer"
	case strings.Contains(lower, "developer"):
		return "Developer"
	case strings.Contains(lower, "intern"):
		return "Intern"
	}
	return textutil.Truncate(subject, 60)
}
