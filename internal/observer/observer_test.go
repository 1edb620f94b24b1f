package observer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"cloudfest-chat/internal/registry"
)

func TestLogNotify(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	sink := NewLog(zap.New(core))

	sink.Notify(registry.UserRegistered{Identity: "0xa", Username: "alice", ImageHash: "Qm"})
	sink.Notify(registry.MessageSent{ID: 0, Sender: "0xa"})

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "user registered", entries[0].Message)
	require.Equal(t, "message sent", entries[1].Message)

	// both entries carry the same stream id
	fields0 := entries[0].ContextMap()
	fields1 := entries[1].ContextMap()
	require.NotEmpty(t, fields0["stream"])
	require.Equal(t, fields0["stream"], fields1["stream"])
	require.Equal(t, "alice", fields0["username"])
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	rec.Notify(registry.GroupCreated{GroupID: 0, Name: "general", Creator: "0xa"})
	rec.Notify(registry.UserJoinedGroup{GroupID: 0, Identity: "0xb"})

	require.Len(t, rec.Events, 2)
	require.Equal(t, registry.GroupCreated{GroupID: 0, Name: "general", Creator: "0xa"}, rec.Events[0])
}
