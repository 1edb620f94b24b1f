package registry

// CreateGroup allocates the next sequential group id with the caller as its
// sole initial member.
func (r *Registry) CreateGroup(id Identity, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeUser(id) == nil {
		return 0, ErrNotRegistered
	}
	if len(name) == 0 || len(name) > groupNameMaxLen {
		return 0, ErrBadGroupName
	}

	g := &group{
		id:         int64(len(r.groups)),
		name:       name,
		creator:    id,
		members:    map[Identity]struct{}{id: {}},
		memberList: []Identity{id},
		memberPos:  map[Identity]int{id: 0},
		createdAt:  r.clock(),
		active:     true,
	}
	r.groups = append(r.groups, g)

	r.logger.Debugf("Created group (%s) with id %d", name, g.id)

	r.notify.Notify(GroupCreated{GroupID: g.id, Name: name, Creator: id})

	return g.id, nil
}

// JoinGroup adds the caller to the group's member set and appends it to the
// ordered member list.
func (r *Registry) JoinGroup(id Identity, groupID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeUser(id) == nil {
		return ErrNotRegistered
	}
	g, err := r.group(groupID)
	if err != nil {
		return err
	}
	if !g.active {
		return ErrGroupInactive
	}
	if _, member := g.members[id]; member {
		return ErrAlreadyMember
	}

	g.members[id] = struct{}{}
	g.memberPos[id] = len(g.memberList)
	g.memberList = append(g.memberList, id)

	r.notify.Notify(UserJoinedGroup{GroupID: groupID, Identity: id})

	return nil
}

// LeaveGroup removes the caller from the group. The ordered list uses
// swap-remove: the last member overwrites the vacated slot and the tail is
// truncated, so the moved member changes position. Callers have always
// observed this reordering; do not replace it with a stable shift-left.
func (r *Registry) LeaveGroup(id Identity, groupID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := r.group(groupID)
	if err != nil {
		return err
	}
	pos, member := g.memberPos[id]
	if !member {
		return ErrNotMember
	}

	last := len(g.memberList) - 1
	moved := g.memberList[last]
	g.memberList[pos] = moved
	g.memberPos[moved] = pos
	g.memberList = g.memberList[:last]

	delete(g.members, id)
	delete(g.memberPos, id)

	r.notify.Notify(UserLeftGroup{GroupID: groupID, Identity: id})

	return nil
}

// IsMember reports whether id currently belongs to the group.
func (r *Registry) IsMember(groupID int64, id Identity) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, err := r.group(groupID)
	if err != nil {
		return false, err
	}
	_, member := g.members[id]

	return member, nil
}

// GroupMembers returns the ordered member list: creator first, then join
// order, as reshuffled by any swap-removes.
func (r *Registry) GroupMembers(groupID int64) ([]Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, err := r.group(groupID)
	if err != nil {
		return nil, err
	}

	out := make([]Identity, len(g.memberList))
	copy(out, g.memberList)

	return out, nil
}

// GroupInfoByID returns the read-only view of the group.
func (r *Registry) GroupInfoByID(groupID int64) (GroupInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, err := r.group(groupID)
	if err != nil {
		return GroupInfo{}, err
	}

	return GroupInfo{
		Name:        g.name,
		Creator:     g.creator,
		MemberCount: len(g.memberList),
		CreatedAt:   g.createdAt,
	}, nil
}

// group resolves groupID. Callers must hold at least the read lock.
func (r *Registry) group(groupID int64) (*group, error) {
	if groupID < 0 || groupID >= int64(len(r.groups)) {
		return nil, ErrGroupNotFound
	}
	return r.groups[groupID], nil
}
