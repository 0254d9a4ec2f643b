package audit

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EventType enumerates the security-relevant client actions worth a
// structured trail: everything that touches credentials, the session,
// or an admin mutation.
type EventType string

const (
	EventLoginSuccess     EventType = "login_success"
	EventLoginFailure     EventType = "login_failure"
	EventOtpDispatch      EventType = "otp_dispatch"
	EventOtpFailure       EventType = "otp_failure"
	EventLogout           EventType = "logout"
	EventSessionRestore   EventType = "session_restore"
	EventRegisterSubmit   EventType = "register_submit"
	EventStatusCommit     EventType = "status_commit"
	EventStatusRejected   EventType = "status_rejected"
	EventEvidenceDownload EventType = "evidence_download"
)

type Event struct {
	Type       EventType
	Email      string
	UserID     int64
	PetitionID int64
	Details    map[string]interface{}
}

// Log emits one audit event through the global logger. Callers mask
// emails before passing them in.
func Log(event Event) {
	logger := log.With().
		Str("audit", "security").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.Email != "" {
		logger = logger.With().Str("email", event.Email).Logger()
	}
	if event.UserID != 0 {
		logger = logger.With().Int64("user_id", event.UserID).Logger()
	}
	if event.PetitionID != 0 {
		logger = logger.With().Int64("petition_id", event.PetitionID).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("security audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	case float64:
		return e.Float64(key, v)
	default:
		return e.Interface(key, v)
	}
}
