package audit

import "fmt"

// Registry entry operations recorded by EntryEvent
const (
	OperationRegister = "register"
	OperationUpdate   = "update"
	OperationPromote  = "promote"
	OperationDelete   = "delete"
	OperationAccess   = "access"
)

// EntryEvent records a write against a registry entry
type EntryEvent struct {
	User         string
	ClientIP     string
	EntryID      string
	Operation    string
	Detail       string
	Success      bool
	ErrorMessage string
}

func (e EntryEvent) MessageID() string {
	return e.Operation
}

func (e EntryEvent) Message() string {
	target := "model " + e.EntryID
	if e.EntryID == "" {
		target = "a model"
	}
	if e.Detail != "" {
		target += " (" + e.Detail + ")"
	}
	if e.Success {
		return fmt.Sprintf("%s performed %s on %s", e.User, e.Operation, target)
	}
	msg := fmt.Sprintf("%s tried to %s %s", e.User, e.Operation, target)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e EntryEvent) Severity() Severity {
	return severity(e.Success)
}

func (e EntryEvent) Facility() int {
	return FacilityAuthPriv
}

func (e EntryEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth:   {"user": e.User},
		SDIDClient: {"ip": e.ClientIP},
		SDIDAction: {"operation": e.Operation, "result": result(e.Success)},
	}
	if e.EntryID != "" {
		sd[SDIDSubject] = map[string]string{"model": e.EntryID}
	}
	return sd
}
