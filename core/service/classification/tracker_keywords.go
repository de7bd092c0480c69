package classification

import (
	"regexp"

	"jobtracker_server/core/domain"
)

// jobKeywords are matched against lower-cased "subject body from".
var jobKeywords = []string{
	// lifecycle
	"application",
	"applied",
	"your application",
	"we received your application",
	"thank you for your application",
	"application confirmation",
	"application status",
	"job application successfully submitted",
	"update on your application",
	"application update",
	"thank you for applying",
	"thank you for your interest",
	"we'll review your application",
	"interview",
	"schedule an interview",
	"next steps",
	"next step",
	"moving forward",
	"moved forward",
	"not moving forward",
	"offer",
	"congratulations",
	"position",
	"role",
	"candidate",
	"applicant",
	"recruiting",
	"hiring",
	"hiring team",
	"people team",
	"staffing",
	"unfortunately",
	"other candidates",
	"outcome",
	"job application",
	"re: application",
	"re: your application",
	"application for",
	"job posting",
	"we received your resume",
	"your resume",
	"schedule a call",
	"phone screen",
	"technical interview",
	"software engineer",
	"developer",
	"engineer",

	// recruiting accounts and ATS vendors
	"careers@",
	"recruiting@",
	"talent@",
	"greenhouse",
	"lever.co",
	"workday",
	"myworkdayjobs",
	"icims",
	"jobvite",
	"smartrecruiters",
	"ashbyhq",
	"wellfound",
}

var (
	jobSubjectRe    = regexp.MustCompile(`(?i)\b(application|applicant|interview|offer|position|role|candidate|recruiting|hiring)\b`)
	recruiterFromRe = regexp.MustCompile(`(?i)(careers|recruit(?:ing|er|ment)?|talent|jobs|hiring|no-?reply|donotreply)@`)
)

// statusPhrases is checked in order; the first hit wins.
var statusPhrases = []struct {
	status  domain.Status
	phrases []string
}{
	{domain.StatusApplied, []string{
		"we have received your application",
		"we received your application",
		"your application has been received",
		"application submitted",
		"job application successfully submitted",
	}},
	{domain.StatusInterviewing, []string{
		"invite you for an interview",
		"schedule an interview",
		"would like to interview you",
		"phone screen",
		"video interview",
		"technical interview",
	}},
	{domain.StatusOffer, []string{
		"we are pleased to offer",
		"extend an offer",
		"delighted to offer",
		"pleased to extend an offer",
	}},
	{domain.StatusRejected, []string{
		"we will not be moving forward with your application",
		"decided not to move forward with your application",
		"we will not be moving forward",
		"not selected for this position",
		"position has been filled",
		"we have decided to pursue other candidates",
	}},
}
