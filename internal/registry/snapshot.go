package registry

import (
	"fmt"
	"time"
)

// Snapshot is the persistable state of a Registry: the full entity set, the
// registration-ordered username list and the scalar counters. Group member
// lists carry their exact current order so swap-remove history survives a
// round trip, and username records carry their identity so reservations held
// by old usernames of re-registered identities survive too.
type Snapshot struct {
	Fee     uint64
	Paused  bool
	Balance uint64

	Users     []User
	Usernames []UsernameRecord
	Messages  []Message
	Groups    []SnapshotGroup
}

// UsernameRecord is one slot of the registration-ordered username list. An
// identity that was deactivated and registered again owns several records;
// every one of them keeps its name reserved.
type UsernameRecord struct {
	Name string
	ID   Identity
}

type SnapshotGroup struct {
	ID        int64
	Name      string
	Creator   Identity
	Members   []Identity
	CreatedAt time.Time
	Active    bool
}

// Snapshot copies the current state under the read lock. Users appear in
// registration order, one record per identity.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := &Snapshot{
		Fee:       r.fee,
		Paused:    r.paused,
		Balance:   r.balance,
		Users:     make([]User, 0, len(r.users)),
		Usernames: make([]UsernameRecord, 0, len(r.usernames)),
		Messages:  make([]Message, len(r.messages)),
		Groups:    make([]SnapshotGroup, 0, len(r.groups)),
	}

	copy(snap.Messages, r.messages)

	seen := make(map[Identity]bool, len(r.users))
	for _, name := range r.usernames {
		id := r.byUsername[name]
		snap.Usernames = append(snap.Usernames, UsernameRecord{Name: name, ID: id})
		if !seen[id] {
			seen[id] = true
			snap.Users = append(snap.Users, *r.users[id])
		}
	}

	for _, g := range r.groups {
		members := make([]Identity, len(g.memberList))
		copy(members, g.memberList)
		snap.Groups = append(snap.Groups, SnapshotGroup{
			ID:        g.id,
			Name:      g.name,
			Creator:   g.creator,
			Members:   members,
			CreatedAt: g.createdAt,
			Active:    g.active,
		})
	}

	return snap
}

// Restore loads a snapshot into an empty Registry. Restoring over live state
// is refused: id counters are process-lifetime monotonic and must not be
// reset once entities exist.
func (r *Registry) Restore(snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.users) != 0 || len(r.messages) != 0 || len(r.groups) != 0 {
		return fmt.Errorf("%w: registry is not empty", ErrConflict)
	}

	r.fee = snap.Fee
	r.paused = snap.Paused
	r.balance = snap.Balance

	for i := range snap.Users {
		u := snap.Users[i]
		r.users[u.ID] = &u
	}
	r.usernames = make([]string, 0, len(snap.Usernames))
	for _, rec := range snap.Usernames {
		r.usernames = append(r.usernames, rec.Name)
		r.byUsername[rec.Name] = rec.ID
	}
	r.messages = append([]Message(nil), snap.Messages...)

	for _, sg := range snap.Groups {
		g := &group{
			id:         sg.ID,
			name:       sg.Name,
			creator:    sg.Creator,
			members:    make(map[Identity]struct{}, len(sg.Members)),
			memberList: append([]Identity(nil), sg.Members...),
			memberPos:  make(map[Identity]int, len(sg.Members)),
			createdAt:  sg.CreatedAt,
			active:     sg.Active,
		}
		for i, id := range g.memberList {
			g.members[id] = struct{}{}
			g.memberPos[id] = i
		}
		r.groups = append(r.groups, g)
	}

	r.logger.Debugf("Restored snapshot: %d users, %d messages, %d groups", len(r.users), len(r.messages), len(r.groups))

	return nil
}
