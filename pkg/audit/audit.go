package audit

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sridhar-Quarlets/model-registry/pkg/config"
)

// SDID constants for structured data IDs (RFC5424). 32473 is the IANA
// private enterprise number reserved for documentation.
const (
	RegistryPEN = 32473
	SDIDAuth    = "auth@32473"
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDClient  = "client@32473"
)

// AppName is the RFC5424 APP-NAME of every audit line
const AppName = "model-registry"

// Syslog facility constants
const (
	FacilityAuth     = 4  // LOG_AUTH - security/authorization messages
	FacilityAuthPriv = 10 // LOG_AUTHPRIV - security/authorization messages (private)
)

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota // 0
	SeverityAlert                     // 1
	SeverityCritical                  // 2
	SeverityError                     // 3
	SeverityWarning                   // 4
	SeverityNotice                    // 5
	SeverityInfo                      // 6
	SeverityDebug                     // 7
)

// Event represents an audit event
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Logger writes audit events in RFC5424 syslog format
type Logger struct {
	writer   io.Writer
	hostname string
	appName  string
	pid      int
	now      func() time.Time
}

// NewLogger creates a logger writing to stdout
func NewLogger() *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		writer:   os.Stdout,
		hostname: hostname,
		appName:  AppName,
		pid:      os.Getpid(),
		now:      time.Now,
	}
}

// SetWriter sets the output writer for the logger
func (l *Logger) SetWriter(w io.Writer) {
	l.writer = w
}

// Log writes an audit event.
// Format: <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (l *Logger) Log(event Event) {
	pri := event.Facility()*8 + int(event.Severity())
	timestamp := l.now().UTC().Format("2006-01-02T15:04:05.000Z")

	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = "-"
	}

	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}

	logLine := fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri,
		timestamp,
		hostname,
		l.appName,
		l.pid,
		event.MessageID(),
		sd,
		event.Message(),
	)

	_, _ = l.writer.Write([]byte(logLine))
}

// formatStructuredData renders [sdid k="v" ...] blocks with SD-IDs and
// parameter names in sorted order.
func formatStructuredData(sd map[string]map[string]string) string {
	if len(sd) == 0 {
		return ""
	}

	ids := make([]string, 0, len(sd))
	for sdid := range sd {
		ids = append(ids, sdid)
	}
	sort.Strings(ids)

	var sb strings.Builder
	for _, sdid := range ids {
		params := sd[sdid]
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("[" + sdid)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf(" %s=%s", k, escapeSDValue(params[k])))
		}
		sb.WriteString("]")
	}
	return sb.String()
}

// escapeSDValue escapes special characters in structured data values per RFC5424
func escapeSDValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}

// Auditor fans audit events out to the syslog-format logger and, when
// configured, the audit_messages table. A nil *Auditor discards events.
type Auditor struct {
	enabled bool
	logger  *Logger
	store   *Store
	log     zerolog.Logger
}

// New builds the auditor described by cfg. Persistence is enabled only when
// AuditDatabaseURL is set.
func New(cfg *config.RegistryConfig, log zerolog.Logger) (*Auditor, error) {
	a := &Auditor{enabled: cfg.AuditEnabled, logger: NewLogger(), log: log}
	if cfg.AuditEnabled && cfg.AuditDatabaseURL != "" {
		store, err := NewStore(cfg.AuditDatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit database: %w", err)
		}
		a.store = store
	}
	return a, nil
}

// NewAuditor assembles an enabled auditor from parts. store may be nil.
func NewAuditor(logger *Logger, store *Store, log zerolog.Logger) *Auditor {
	return &Auditor{enabled: true, logger: logger, store: store, log: log}
}

// Log writes event to every configured sink. Persistence failures are
// logged and never propagated to the caller.
func (a *Auditor) Log(event Event) {
	if a == nil || !a.enabled {
		return
	}
	a.logger.Log(event)

	if a.store != nil {
		if err := a.store.Save(event); err != nil {
			a.log.Error().Err(err).Str("msgid", event.MessageID()).Msg("audit: failed to save event")
		}
	}
}

// Close releases the audit database connection, if any.
func (a *Auditor) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	return a.store.Close()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func severity(success bool) Severity {
	if success {
		return SeverityInfo
	}
	return SeverityWarning
}
