package audit

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
)

func TestStoreSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStoreWithDB(db)

	event := EntryEvent{
		User:      "alice@example.com",
		ClientIP:  "10.0.0.1",
		EntryID:   "0b9f",
		Operation: OperationAccess,
		Success:   true,
	}

	mock.ExpectExec(`INSERT INTO audit_messages`).
		WithArgs(
			FacilityAuthPriv,  // facility
			int(SeverityInfo), // severity
			sqlmock.AnyArg(),  // timestamp
			sqlmock.AnyArg(),  // hostname
			AppName,           // appname
			sqlmock.AnyArg(),  // procid
			"access",          // msgid
			sqlmock.AnyArg(),  // sdata (JSON)
			event.Message(),   // message
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.Save(event); err != nil {
		t.Errorf("Save() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreSaveFailedEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO audit_messages`).
		WithArgs(
			FacilityAuthPriv,
			int(SeverityWarning),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			AppName,
			sqlmock.AnyArg(),
			"authn",
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = NewStoreWithDB(db).Save(AuthenticateEvent{User: "mallory", Authenticator: "authn"})
	if err != nil {
		t.Errorf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreSaveNilDB(t *testing.T) {
	if err := (&Store{}).Save(EntryEvent{}); err != nil {
		t.Errorf("Save() on nil db error = %v", err)
	}
}

func TestAuditorPersistenceFailureIsLogged(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO audit_messages`).WillReturnError(errors.New("disk full"))

	var syslog, applog bytes.Buffer
	a := NewAuditor(fixedLogger(&syslog), NewStoreWithDB(db), zerolog.New(&applog))
	a.Log(PolicyEvent{User: "alice", PolicyName: "p", Success: true})

	if !strings.Contains(syslog.String(), "created access policy p") {
		t.Errorf("syslog output = %q", syslog.String())
	}
	if !strings.Contains(applog.String(), "disk full") {
		t.Errorf("application log = %q", applog.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
