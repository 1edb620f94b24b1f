package scenario

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cloudfest-chat/internal/registry"
)

const testOwner registry.Identity = "0x00000000000000000000000000000000000f33d0"

func bootstrap(t *testing.T, opts ...registry.Option) (*Runner, *registry.Registry) {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	reg := registry.New(logger.Sugar(), testOwner, opts...)

	return NewRunner(logger.Sugar(), reg), reg
}

const demoScript = `[
	{"op": "register", "as": "0xa1", "username": "alice", "image": "QmAlice", "payment": 10},
	{"op": "register", "as": "0xb2", "username": "bob", "image": "QmBob", "payment": 10},
	{"op": "send-global", "as": "0xa1", "content": "Hello everyone!"},
	{"op": "create-group", "as": "0xa1", "name": "Dev Team"},
	{"op": "join-group", "as": "0xb2", "group": 0},
	{"op": "leave-group", "as": "0xb2", "group": 0},
	{"op": "send-group", "as": "0xa1", "group": 0, "content": "Welcome"},
	{"op": "ens-name", "as": "0xa1"},
	{"op": "usernames"},
	{"op": "messages", "start": 0, "count": 10},
	{"op": "group-info", "group": 0},
	{"op": "withdraw-fees", "as": "0x00000000000000000000000000000000000f33d0"}
]`

func TestRunDemoScript(t *testing.T) {
	t.Parallel()

	r, reg := bootstrap(t, registry.RegistrationFee(10))

	res, err := r.Run([]byte(demoScript))
	require.NoError(t, err)
	require.Equal(t, 12, res.Steps)
	require.Equal(t, 0, res.Rejected)

	require.Equal(t, []string{"alice", "bob"}, reg.Usernames())
	require.Equal(t, uint64(0), reg.Balance())

	info, err := reg.GroupInfoByID(0)
	require.NoError(t, err)
	require.Equal(t, "Dev Team", info.Name)
	require.Equal(t, 1, info.MemberCount)

	msgs, err := reg.Messages(0, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "Hello everyone!", msgs[0].Content)
	require.Equal(t, "Welcome", msgs[1].Content)
}

func TestRunCountsRejections(t *testing.T) {
	t.Parallel()

	r, _ := bootstrap(t)

	script := `[
		{"op": "register", "as": "0xa1", "username": "alice", "image": "QmAlice", "payment": 0},
		{"op": "register", "as": "0xa1", "username": "alice2", "image": "QmAlice", "payment": 0},
		{"op": "send-global", "as": "0xdead", "content": "hi"}
	]`

	res, err := r.Run([]byte(script))
	require.NoError(t, err)
	require.Equal(t, 3, res.Steps)
	require.Equal(t, 2, res.Rejected)
}

func TestRunNegativeWindowRejected(t *testing.T) {
	t.Parallel()

	r, _ := bootstrap(t)

	script := `[
		{"op": "register", "as": "0xa1", "username": "alice", "image": "QmAlice", "payment": 0},
		{"op": "send-global", "as": "0xa1", "content": "hi"},
		{"op": "messages", "start": 0, "count": -1},
		{"op": "messages", "start": -1, "count": 1},
		{"op": "private-messages", "as": "0xa1", "other": "0xb2", "start": 0, "count": -5}
	]`

	var res Result
	var err error
	require.NotPanics(t, func() {
		res, err = r.Run([]byte(script))
	})
	require.NoError(t, err)
	require.Equal(t, 5, res.Steps)
	require.Equal(t, 3, res.Rejected)
}

func TestRunMalformedScript(t *testing.T) {
	t.Parallel()

	r, _ := bootstrap(t)

	_, err := r.Run([]byte(`{"op": "usernames"}`))
	require.Error(t, err)

	_, err = r.Run([]byte(`[{"op": "bogus"}]`))
	require.Error(t, err)

	_, err = r.Run([]byte(`[{"op": "register", "as": "0xa1"}]`))
	require.Error(t, err)

	_, err = r.Run([]byte(`[{"op": "send-global", "content": "hi"}]`))
	require.Error(t, err)

	_, err = r.Run([]byte(`[{"op": "join-group", "as": "0xa1", "group": "zero"}]`))
	require.Error(t, err)
}

func TestRunMalformedStopsRun(t *testing.T) {
	t.Parallel()

	r, reg := bootstrap(t)

	script := `[
		{"op": "register", "as": "0xa1", "username": "alice", "image": "QmAlice", "payment": 0},
		{"op": "no-such-op"},
		{"op": "register", "as": "0xb2", "username": "bob", "image": "QmBob", "payment": 0}
	]`

	_, err := r.Run([]byte(script))
	require.Error(t, err)

	// steps before the malformed one applied, later ones did not
	require.Equal(t, []string{"alice"}, reg.Usernames())
}
