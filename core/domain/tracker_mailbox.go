package domain

import "golang.org/x/oauth2"

// MailboxSession is the authenticated mailbox a sync runs against.
type MailboxSession struct {
	Identity    string
	TokenSource oauth2.TokenSource
}

// MailboxStatus is what the connection endpoint reports.
type MailboxStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Email      string `json:"email,omitempty"`
}
