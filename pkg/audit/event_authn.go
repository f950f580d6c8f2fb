package audit

import "fmt"

// AuthenticateEvent records a token issuance attempt
type AuthenticateEvent struct {
	User          string
	ClientIP      string
	Authenticator string
	Success       bool
	ErrorMessage  string
}

func (e AuthenticateEvent) MessageID() string {
	return "authn"
}

func (e AuthenticateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully authenticated with authenticator %s", e.User, e.Authenticator)
	}
	msg := fmt.Sprintf("%s failed to authenticate with authenticator %s", e.User, e.Authenticator)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e AuthenticateEvent) Severity() Severity {
	return severity(e.Success)
}

func (e AuthenticateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e AuthenticateEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"authenticator": e.Authenticator,
			"user":          e.User,
		},
		SDIDClient: {"ip": e.ClientIP},
		SDIDAction: {"operation": "authenticate", "result": result(e.Success)},
	}
}

// AccountEvent records a self-service account registration
type AccountEvent struct {
	Email        string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e AccountEvent) MessageID() string {
	return "account"
}

func (e AccountEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("account %s registered", e.Email)
	}
	msg := fmt.Sprintf("failed to register account %s", e.Email)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e AccountEvent) Severity() Severity {
	return severity(e.Success)
}

func (e AccountEvent) Facility() int {
	return FacilityAuth
}

func (e AccountEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSubject: {"user": e.Email},
		SDIDClient:  {"ip": e.ClientIP},
		SDIDAction:  {"operation": "register", "result": result(e.Success)},
	}
}
