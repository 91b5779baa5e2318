package errors

import (
	"github.com/sirupsen/logrus"
)

// LogHandler is an ErrorHandler that writes structured log entries.
type LogHandler struct {
	// Logger receives the entries. Nil means the logrus standard logger.
	Logger logrus.FieldLogger
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

func (h *LogHandler) logger() logrus.FieldLogger {
	if h.Logger == nil {
		return logrus.StandardLogger()
	}
	return h.Logger
}

// HandleError logs a LoomError.
func (h *LogHandler) HandleError(err *LoomError) {
	if err == nil {
		return
	}
	fields := logrus.Fields{"op": err.Op, "kind": err.Kind.String()}
	if err.Session != "" {
		fields["session"] = err.Session
	}
	if h.Verbose && err.StackTrace != "" {
		fields["stack"] = err.StackTrace
	}
	entry := h.logger().WithFields(fields)
	// Malformed client input is expected noise and stays below error level.
	if err.Kind == KindParsing {
		entry.Warn(err.Err)
		return
	}
	entry.Error(err.Err)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	fields := logrus.Fields{"kind": KindPanic.String()}
	if err.Op != "" {
		fields["op"] = err.Op
	}
	if h.Verbose && err.StackTrace != "" {
		fields["stack"] = err.StackTrace
	}
	h.logger().WithFields(fields).Errorf("panic: %v", err.Value)
}

// HandleCallbackError logs a CallbackError.
func (h *LogHandler) HandleCallbackError(err *CallbackError) {
	if err == nil {
		return
	}
	fields := logrus.Fields{
		"kind": KindDispatch.String(),
		"node": err.Node,
	}
	if err.Label != "" {
		fields["label"] = err.Label
	}
	if h.Verbose && err.StackTrace != "" {
		fields["stack"] = err.StackTrace
	}
	h.logger().WithFields(fields).Error(err.Error())
}
