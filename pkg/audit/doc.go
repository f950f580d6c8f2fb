// Package audit records security-relevant writes as RFC5424 syslog lines.
//
// Every registry mutation, account registration, token issuance and policy
// creation produces one Event. The Auditor writes it to stdout and, when
// AUDIT_DATABASE_URL is configured, inserts it into audit_messages.
//
// # Usage
//
//	auditor, err := audit.New(cfg, log)
//	auditor.Log(audit.EntryEvent{
//	    User:      principal.Identity,
//	    EntryID:   id.String(),
//	    Operation: audit.OperationPromote,
//	    Success:   true,
//	})
package audit
