package mylog

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = newStandardLogger
	}
}

type standardLogger struct {
	sugar *zap.SugaredLogger
}

func newStandardLogger(componentName string) Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger for %s: %s\n", componentName, err)
		logger = zap.NewNop()
	}

	return standardLogger{
		sugar: logger.Sugar().Named(componentName),
	}
}

func (l standardLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	s := l.sugar
	if traceLabel != "" {
		s = s.With("session", traceLabel)
	}

	switch severity {
	case SeverityDebug:
		s.Debug(msg)
	case SeverityWarn:
		s.Warn(msg)
	case SeverityError:
		s.Error(msg)
	default:
		s.Info(msg)
	}
}
