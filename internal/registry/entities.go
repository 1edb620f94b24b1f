package registry

import "time"

// Identity is the authenticated principal on whose behalf an operation is
// performed, analogous to an account address. Attribution happens outside
// the registry; an Identity arriving here is taken as already authenticated.
type Identity string

// None is the absent identity (no recipient, no principal).
const None Identity = ""

type User struct {
	ID           Identity
	Username     string
	ImageHash    string
	RegisteredAt time.Time
	Active       bool
}

type Message struct {
	ID        int64
	Sender    Identity
	Recipient Identity
	Private   bool
	Content   string
	GroupID   int64
	SentAt    time.Time
}

// GroupInfo is the read-only view of a group returned by queries. Membership
// containers are never exposed directly; use IsMember and GroupMembers.
type GroupInfo struct {
	Name        string
	Creator     Identity
	MemberCount int
	CreatedAt   time.Time
}

// group keeps the member set and the insertion-ordered member list in 1:1
// correspondence. memberPos indexes each member's slot in memberList so
// swap-remove stays O(1).
type group struct {
	id         int64
	name       string
	creator    Identity
	members    map[Identity]struct{}
	memberList []Identity
	memberPos  map[Identity]int
	createdAt  time.Time
	active     bool
}
