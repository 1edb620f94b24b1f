// Package observer provides registry event sinks: a zap-backed logger for
// off-system indexing and a recorder for tests.
package observer

import (
	"github.com/rs/xid"
	"go.uber.org/zap"

	"cloudfest-chat/internal/registry"
)

// Log writes every event as a structured log entry. Each Log instance tags
// its entries with a stream id so events from different registry runs can be
// told apart downstream.
type Log struct {
	logger *zap.Logger
	stream string
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{
		logger: logger,
		stream: xid.New().String(),
	}
}

func (l *Log) Notify(e registry.Event) {
	stream := zap.String("stream", l.stream)

	switch ev := e.(type) {
	case registry.UserRegistered:
		l.logger.Info("user registered",
			stream,
			zap.String("identity", string(ev.Identity)),
			zap.String("username", ev.Username),
			zap.String("image_hash", ev.ImageHash),
		)
	case registry.MessageSent:
		l.logger.Info("message sent",
			stream,
			zap.Int64("id", ev.ID),
			zap.String("sender", string(ev.Sender)),
			zap.Bool("private", ev.Private),
			zap.Int64("group_id", ev.GroupID),
		)
	case registry.GroupCreated:
		l.logger.Info("group created",
			stream,
			zap.Int64("group_id", ev.GroupID),
			zap.String("name", ev.Name),
			zap.String("creator", string(ev.Creator)),
		)
	case registry.UserJoinedGroup:
		l.logger.Info("user joined group",
			stream,
			zap.Int64("group_id", ev.GroupID),
			zap.String("identity", string(ev.Identity)),
		)
	case registry.UserLeftGroup:
		l.logger.Info("user left group",
			stream,
			zap.Int64("group_id", ev.GroupID),
			zap.String("identity", string(ev.Identity)),
		)
	default:
		l.logger.Warn("unknown event", stream, zap.Any("event", e))
	}
}

// Recorder collects events in emission order.
type Recorder struct {
	Events []registry.Event
}

func (r *Recorder) Notify(e registry.Event) {
	r.Events = append(r.Events, e)
}
