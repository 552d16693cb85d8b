package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldSession is the structured log field key for the browsing session id.
	FieldSession = "session_id"
	// FieldUser is the structured log field key for the user id.
	FieldUser = "user_id"
	// FieldMatch is the structured log field key for a match id.
	FieldMatch = "match_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches the fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// SessionFields describes a browsing session. Empty values are skipped.
func SessionFields(sessionID, userID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldSession, Value: sessionID},
		StringField{Key: FieldUser, Value: userID},
	)
}

// WithSession attaches the session fields to the logger.
func WithSession(logger *zap.Logger, sessionID, userID string) *zap.Logger {
	return WithFields(logger, SessionFields(sessionID, userID)...)
}
