package store

import (
	"context"

	"go.uber.org/zap"
)

// Auth is the identity service attached to a backend. Authentication is not
// enforced by this service; backends expose an anonymous identity.
type Auth interface {
	CurrentUser(ctx context.Context) (string, error)
}

// AppLogs records application events alongside the data.
type AppLogs interface {
	Record(ctx context.Context, event string, fields map[string]any) error
}

type anonymousAuth struct{}

func (anonymousAuth) CurrentUser(context.Context) (string, error) { return "anonymous", nil }

// zapAppLogs writes app events to the structured log.
type zapAppLogs struct {
	logger *zap.SugaredLogger
}

func newZapAppLogs(logger *zap.Logger) zapAppLogs {
	return zapAppLogs{logger: logger.Sugar().Named("applog")}
}

func (l zapAppLogs) Record(_ context.Context, event string, fields map[string]any) error {
	kv := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	l.logger.Infow(event, kv...)
	return nil
}
