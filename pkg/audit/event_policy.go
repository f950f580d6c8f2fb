package audit

import "fmt"

// PolicyEvent records creation of an access policy
type PolicyEvent struct {
	User         string
	ClientIP     string
	PolicyID     string
	PolicyName   string
	Success      bool
	ErrorMessage string
}

func (e PolicyEvent) MessageID() string {
	return "policy"
}

func (e PolicyEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s created access policy %s (%s)", e.User, e.PolicyName, e.PolicyID)
	}
	msg := fmt.Sprintf("%s tried to create access policy %s", e.User, e.PolicyName)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e PolicyEvent) Severity() Severity {
	return severity(e.Success)
}

func (e PolicyEvent) Facility() int {
	return FacilityAuthPriv
}

func (e PolicyEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth:   {"user": e.User},
		SDIDClient: {"ip": e.ClientIP},
		SDIDAction: {"operation": "create", "result": result(e.Success)},
		SDIDSubject: {"policy": e.PolicyName},
	}
	if e.PolicyID != "" {
		sd[SDIDSubject]["id"] = e.PolicyID
	}
	return sd
}
