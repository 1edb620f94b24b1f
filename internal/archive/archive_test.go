package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cloudfest-chat/internal/registry"
)

const testOwner registry.Identity = "0x00000000000000000000000000000000000f33d0"

func bootstrap(t *testing.T) *Archive {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	a, err := New(logger.Sugar(), Config{
		Driver: DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "archive.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	return a
}

// fixedClock keeps timestamps reproducible across a save/load round trip.
func fixedClock() func() time.Time {
	base := time.Unix(0, 1617278400000000000)
	n := int64(0)
	return func() time.Time {
		n++
		return time.Unix(0, base.UnixNano()+n)
	}
}

func buildRegistry(t *testing.T) *registry.Registry {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	r := registry.New(logger.Sugar(), testOwner,
		registry.RegistrationFee(10),
		registry.Clock(fixedClock()),
	)

	require.NoError(t, r.Register("0xa", "alice", "QmAlice", 10))
	require.NoError(t, r.Register("0xb", "bob", "QmBob", 12))
	require.NoError(t, r.SendGlobal("0xa", "hello"))
	require.NoError(t, r.SendPrivate("0xa", "0xb", "psst"))

	groupID, err := r.CreateGroup("0xa", "general")
	require.NoError(t, err)
	require.NoError(t, r.JoinGroup("0xb", groupID))
	require.NoError(t, r.SendGroup("0xb", groupID, "welcome"))
	require.NoError(t, r.SetPaused(testOwner, true))

	// deactivate-then-re-register leaves one identity owning two reserved
	// usernames; the archive must carry both
	require.NoError(t, r.DeactivateUser(testOwner, "0xb"))
	require.NoError(t, r.Register("0xb", "bobby", "QmBobby", 10))

	return r
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	a := bootstrap(t)
	r := buildRegistry(t)
	want := r.Snapshot()

	require.NoError(t, a.Save(context.Background(), want))
	got, err := a.Load(context.Background())
	require.NoError(t, err)

	require.Equal(t, want, got)
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	t.Parallel()

	a := bootstrap(t)
	r := buildRegistry(t)

	require.NoError(t, a.Save(context.Background(), r.Snapshot()))

	require.NoError(t, r.SendGlobal("0xa", "one more"))
	want := r.Snapshot()
	require.NoError(t, a.Save(context.Background(), want))

	got, err := a.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Len(t, got.Messages, 4)
}

func TestLoadEmpty(t *testing.T) {
	t.Parallel()

	a := bootstrap(t)

	_, err := a.Load(context.Background())
	require.ErrorIs(t, err, ErrEmptyArchive)
}

func TestSaveCorruptSnapshot(t *testing.T) {
	t.Parallel()

	a := bootstrap(t)
	r := buildRegistry(t)

	snap := r.Snapshot()
	// duplicate message id breaks the primary key
	snap.Messages = append(snap.Messages, snap.Messages[0])

	require.ErrorIs(t, a.Save(context.Background(), snap), ErrCorruptSnapshot)

	// the failed save is rolled back, leaving the archive empty
	_, err := a.Load(context.Background())
	require.ErrorIs(t, err, ErrEmptyArchive)
}

func TestRoundTripIntoRegistry(t *testing.T) {
	t.Parallel()

	a := bootstrap(t)
	r := buildRegistry(t)
	require.NoError(t, a.Save(context.Background(), r.Snapshot()))

	snap, err := a.Load(context.Background())
	require.NoError(t, err)

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	restored := registry.New(logger.Sugar(), testOwner)
	require.NoError(t, restored.Restore(snap))

	require.Equal(t, r.Usernames(), restored.Usernames())
	require.Equal(t, r.Balance(), restored.Balance())
	require.True(t, restored.Paused())

	members, err := restored.GroupMembers(0)
	require.NoError(t, err)
	require.Equal(t, []registry.Identity{"0xa", "0xb"}, members)

	// both usernames of the re-registered identity stay reserved
	require.ErrorIs(t, restored.Register("0xc", "bob", "Qm", 10), registry.ErrUsernameTaken)
	require.ErrorIs(t, restored.Register("0xc", "bobby", "Qm", 10), registry.ErrUsernameTaken)
}
