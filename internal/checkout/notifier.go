package checkout

import "oxytoxin-be/internal/logger"

// Notifier surfaces user-visible outcomes. The transport layer carries
// them to the client; the default just logs.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type logNotifier struct{}

func NewLogNotifier() Notifier { return logNotifier{} }

func (logNotifier) Success(msg string) { logger.L().Info(msg) }
func (logNotifier) Error(msg string) { logger.L().Warn(msg) }
