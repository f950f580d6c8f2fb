package audit

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func fixedLogger(buf *bytes.Buffer) *Logger {
	l := NewLogger()
	l.SetWriter(buf)
	l.hostname = "host1"
	l.pid = 42
	l.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return l
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := fixedLogger(&buf)

	logger.Log(EntryEvent{
		User:      "alice@example.com",
		ClientIP:  "192.168.1.1",
		EntryID:   "6f1c",
		Operation: OperationPromote,
		Detail:    "to production",
		Success:   true,
	})

	want := `<86>1 2024-05-01T12:00:00.000Z host1 model-registry 42 promote ` +
		`[action@32473 operation="promote" result="success"]` +
		`[auth@32473 user="alice@example.com"]` +
		`[client@32473 ip="192.168.1.1"]` +
		`[subject@32473 model="6f1c"] ` +
		"alice@example.com performed promote on model 6f1c (to production)\n"
	if got := buf.String(); got != want {
		t.Errorf("Log() =\n%q\nwant\n%q", got, want)
	}
}

func TestEntryEvent(t *testing.T) {
	tests := []struct {
		name      string
		event     EntryEvent
		wantMsg   string
		wantSev   Severity
		wantMsgID string
	}{
		{
			name:      "successful register",
			event:     EntryEvent{User: "alice", EntryID: "m1", Operation: OperationRegister, Success: true},
			wantMsg:   "alice performed register on model m1",
			wantSev:   SeverityInfo,
			wantMsgID: "register",
		},
		{
			name:      "failed delete",
			event:     EntryEvent{User: "bob", EntryID: "m2", Operation: OperationDelete, ErrorMessage: "Model not found"},
			wantMsg:   "bob tried to delete model m2: Model not found",
			wantSev:   SeverityWarning,
			wantMsgID: "delete",
		},
		{
			name:      "failed register has no id",
			event:     EntryEvent{User: "carol", Operation: OperationRegister, ErrorMessage: "checksum is required"},
			wantMsg:   "carol tried to register a model: checksum is required",
			wantSev:   SeverityWarning,
			wantMsgID: "register",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Message(); got != tt.wantMsg {
				t.Errorf("Message() = %q, want %q", got, tt.wantMsg)
			}
			if tt.event.Severity() != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", tt.event.Severity(), tt.wantSev)
			}
			if tt.event.Facility() != FacilityAuthPriv {
				t.Errorf("Facility() = %v, want %v", tt.event.Facility(), FacilityAuthPriv)
			}
			if tt.event.MessageID() != tt.wantMsgID {
				t.Errorf("MessageID() = %v, want %v", tt.event.MessageID(), tt.wantMsgID)
			}
		})
	}
}

func TestEntryEventStructuredData(t *testing.T) {
	sd := EntryEvent{User: "alice", ClientIP: "10.0.0.1", Operation: OperationAccess, Success: false}.StructuredData()

	if sd[SDIDAction]["result"] != "failure" {
		t.Errorf("result = %q, want failure", sd[SDIDAction]["result"])
	}
	if _, ok := sd[SDIDSubject]; ok {
		t.Error("subject should be omitted without an entry id")
	}
}

func TestAuthenticateEvent(t *testing.T) {
	ok := AuthenticateEvent{User: "alice", Authenticator: "authn", Success: true}
	if !strings.Contains(ok.Message(), "successfully authenticated") {
		t.Errorf("Message() = %q", ok.Message())
	}

	failed := AuthenticateEvent{User: "alice", Authenticator: "authn", ErrorMessage: "invalid credentials"}
	if !strings.HasSuffix(failed.Message(), ": invalid credentials") {
		t.Errorf("Message() = %q", failed.Message())
	}
	if failed.Severity() != SeverityWarning {
		t.Errorf("Severity() = %v, want warning", failed.Severity())
	}
}

func TestAccountAndPolicyEvents(t *testing.T) {
	acct := AccountEvent{Email: "new@example.com", Success: true}
	if acct.Message() != "account new@example.com registered" {
		t.Errorf("Message() = %q", acct.Message())
	}
	if acct.Facility() != FacilityAuth {
		t.Errorf("Facility() = %d, want %d", acct.Facility(), FacilityAuth)
	}

	pol := PolicyEvent{User: "alice", PolicyID: "p1", PolicyName: "read-only", Success: true}
	if pol.StructuredData()[SDIDSubject]["id"] != "p1" {
		t.Errorf("StructuredData() = %v", pol.StructuredData())
	}
}

func TestEscapeSDValue(t *testing.T) {
	if got := escapeSDValue(`a"b]c\d`); got != `"a\"b\]c\\d"` {
		t.Errorf("escapeSDValue() = %s", got)
	}
}

func TestAuditor(t *testing.T) {
	t.Run("nil auditor discards", func(t *testing.T) {
		var a *Auditor
		a.Log(EntryEvent{Operation: OperationRegister})
		if err := a.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	t.Run("enabled auditor writes", func(t *testing.T) {
		var buf bytes.Buffer
		a := NewAuditor(fixedLogger(&buf), nil, zerolog.Nop())
		a.Log(EntryEvent{User: "alice", Operation: OperationDelete, EntryID: "m1", Success: true})
		if !strings.Contains(buf.String(), "alice performed delete on model m1") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("disabled auditor is silent", func(t *testing.T) {
		var buf bytes.Buffer
		a := NewAuditor(fixedLogger(&buf), nil, zerolog.Nop())
		a.enabled = false
		a.Log(EntryEvent{User: "alice", Operation: OperationDelete})
		if buf.Len() != 0 {
			t.Errorf("output = %q, want empty", buf.String())
		}
	})
}
