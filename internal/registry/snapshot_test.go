package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildSnapshotFixture(t *testing.T) *Registry {
	r := bootstrap(t, RegistrationFee(10))

	require.NoError(t, r.Register(alice, "alice", "QmAlice", 10))
	require.NoError(t, r.Register(bob, "bob", "QmBob", 15))
	require.NoError(t, r.Register(carol, "carol", "QmCarol", 10))

	require.NoError(t, r.SendGlobal(alice, "hello"))
	require.NoError(t, r.SendPrivate(alice, bob, "psst"))

	groupID, err := r.CreateGroup(alice, "general")
	require.NoError(t, err)
	require.NoError(t, r.JoinGroup(bob, groupID))
	require.NoError(t, r.JoinGroup(carol, groupID))
	require.NoError(t, r.LeaveGroup(bob, groupID))
	require.NoError(t, r.SendGroup(alice, groupID, "welcome"))

	require.NoError(t, r.DeactivateUser(testOwner, carol))
	// a deactivated identity may register again under a fresh username; the
	// old one stays reserved
	require.NoError(t, r.Register(carol, "carol2", "QmCarol2", 10))
	require.NoError(t, r.SetPaused(testOwner, true))

	return r
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	r := buildSnapshotFixture(t)
	snap := r.Snapshot()

	restored := bootstrap(t)
	require.NoError(t, restored.Restore(snap))

	require.Equal(t, r.Usernames(), restored.Usernames())
	require.Equal(t, r.Balance(), restored.Balance())
	require.Equal(t, r.RegistrationFeeAmount(), restored.RegistrationFeeAmount())
	require.Equal(t, r.Paused(), restored.Paused())

	want, err := r.Messages(0, 100)
	require.NoError(t, err)
	got, err := restored.Messages(0, 100)
	require.NoError(t, err)
	require.Equal(t, want, got)

	// swap-remove ordering survives the round trip
	wantMembers, err := r.GroupMembers(0)
	require.NoError(t, err)
	gotMembers, err := restored.GroupMembers(0)
	require.NoError(t, err)
	require.Equal(t, wantMembers, gotMembers)

	// id sequences continue where they left off
	require.NoError(t, restored.SendGlobal(alice, "again"))
	msgs, err := restored.Messages(3, 1)
	require.NoError(t, err)
	require.Equal(t, int64(3), msgs[0].ID)

	// the re-registered identity keeps its current record and both of its
	// usernames stay reserved
	u, err := restored.UserByIdentity(carol)
	require.NoError(t, err)
	require.Equal(t, "carol2", u.Username)
	require.ErrorIs(t, restored.Register("0xnew", "carol", "Qm", 10), ErrUsernameTaken)
	require.ErrorIs(t, restored.Register("0xnew", "carol2", "Qm", 10), ErrUsernameTaken)
}

func TestRestoreRefusesLiveState(t *testing.T) {
	t.Parallel()

	r := buildSnapshotFixture(t)

	require.ErrorIs(t, r.Restore(r.Snapshot()), ErrConflict)
}
