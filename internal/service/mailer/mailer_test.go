package mailer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/authservice/internal/logger"
)

// Logger that keeps formatted records per level
type levelLogger struct {
	records map[string][]string
}

func (l *levelLogger) log(level string, msg string, args ...any) {
	l.records[level] = append(l.records[level], fmt.Sprint(append([]any{msg}, args...)...))
}

func (l *levelLogger) Debug(msg string, args ...any) { l.log("debug", msg, args...) }
func (l *levelLogger) Info(msg string, args ...any)  { l.log("info", msg, args...) }
func (l *levelLogger) Warn(msg string, args ...any)  { l.log("warn", msg, args...) }
func (l *levelLogger) Error(msg string, args ...any) { l.log("error", msg, args...) }
func (l *levelLogger) With(args ...any) logger.Logger {
	return l
}
func (l *levelLogger) WithGroup(name string) logger.Logger {
	return l
}

func Test_LogSender(t *testing.T) {
	l := &levelLogger{records: map[string][]string{}}
	s := LogSender{Logger: l}

	err := s.Send(t.Context(), Message{
		To:      "user@example.com",
		Subject: "Auth service: Password reset",
		Body:    "Your new password: s3cr3tPassw0rd",
	})

	require.NoError(t, err)
	require.Len(t, l.records["info"], 1)
	require.Contains(t, l.records["info"][0], "user@example.com")
	require.Contains(t, l.records["info"][0], "Auth service: Password reset")
	require.NotContains(t, l.records["info"][0], "s3cr3tPassw0rd", "body must not be logged at info level")

	require.Len(t, l.records["debug"], 1)
	require.Contains(t, l.records["debug"][0], "s3cr3tPassw0rd")
	require.Empty(t, l.records["warn"])
	require.Empty(t, l.records["error"])
}
