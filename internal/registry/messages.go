package registry

// SendGlobal appends a public message visible to everyone.
func (r *Registry) SendGlobal(id Identity, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeUser(id) == nil {
		return ErrNotRegistered
	}
	if len(content) == 0 || len(content) > contentMaxLen {
		return ErrBadContent
	}

	r.append(Message{
		Sender:  id,
		Content: content,
	})

	return nil
}

// SendPrivate appends a message addressed to recipient. The recipient must be
// an active registered user distinct from the sender.
func (r *Registry) SendPrivate(id, recipient Identity, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeUser(id) == nil {
		return ErrNotRegistered
	}
	if len(content) == 0 || len(content) > contentMaxLen {
		return ErrBadContent
	}
	if r.activeUser(recipient) == nil {
		return ErrUserNotFound
	}
	if recipient == id {
		return ErrSelfMessage
	}

	r.append(Message{
		Sender:    id,
		Recipient: recipient,
		Private:   true,
		Content:   content,
	})

	return nil
}

// SendGroup appends a message scoped to groupID. The caller must be a member
// and the group must still be active.
func (r *Registry) SendGroup(id Identity, groupID int64, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeUser(id) == nil {
		return ErrNotRegistered
	}
	if len(content) == 0 || len(content) > contentMaxLen {
		return ErrBadContent
	}
	g, err := r.group(groupID)
	if err != nil {
		return err
	}
	if !g.active {
		return ErrGroupInactive
	}
	if _, member := g.members[id]; !member {
		return ErrNotMember
	}

	r.append(Message{
		Sender:  id,
		GroupID: groupID,
		Content: content,
	})

	return nil
}

// append assigns the next sequential id, stamps the message and commits it to
// the ledger together with its notification. Callers must hold mu.
func (r *Registry) append(m Message) {
	m.ID = int64(len(r.messages))
	m.SentAt = r.clock()
	r.messages = append(r.messages, m)

	r.logger.Debugf("Recorded message %d from %s (private: %t, group: %d)", m.ID, m.Sender, m.Private, m.GroupID)

	r.notify.Notify(MessageSent{ID: m.ID, Sender: m.Sender, Private: m.Private, GroupID: m.GroupID})
}

// Messages returns the ledger slice [start, min(start+count, total)) in id
// order. start at or past the end of the ledger is an error.
func (r *Registry) Messages(start, count int64) ([]Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if start < 0 || count < 0 {
		return nil, ErrBadWindow
	}

	total := int64(len(r.messages))
	if start >= total {
		return nil, ErrMessageNotFound
	}

	end := start + count
	if end > total {
		end = total
	}

	out := make([]Message, end-start)
	copy(out, r.messages[start:end])

	return out, nil
}

// GroupMessages scans the ledger in id order for non-private messages scoped
// to groupID, skips the first start matches and collects up to count. The
// result always has length count; slots past the last real match stay
// zero-valued, so callers must track the true match count themselves. This
// mirrors the fixed-size pages the system has always returned.
func (r *Registry) GroupMessages(groupID, start, count int64) ([]Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if start < 0 || count < 0 {
		return nil, ErrBadWindow
	}
	if _, err := r.group(groupID); err != nil {
		return nil, err
	}

	match := func(m *Message) bool {
		return !m.Private && m.GroupID == groupID
	}

	return r.page(match, start, count), nil
}

// PrivateMessages collects the private conversation between id and other, in
// either direction, with the same skip/collect and fixed-size page policy as
// GroupMessages.
func (r *Registry) PrivateMessages(id, other Identity, start, count int64) ([]Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if start < 0 || count < 0 {
		return nil, ErrBadWindow
	}
	if r.activeUser(id) == nil {
		return nil, ErrNotRegistered
	}
	if r.activeUser(other) == nil {
		return nil, ErrUserNotFound
	}

	match := func(m *Message) bool {
		if !m.Private {
			return false
		}
		return (m.Sender == id && m.Recipient == other) || (m.Sender == other && m.Recipient == id)
	}

	return r.page(match, start, count), nil
}

// page applies the skip/collect window over the ledger. Callers must hold at
// least the read lock.
func (r *Registry) page(match func(*Message) bool, start, count int64) []Message {
	out := make([]Message, count)

	var seen, collected int64
	for i := range r.messages {
		if collected == count {
			break
		}
		if !match(&r.messages[i]) {
			continue
		}
		if seen < start {
			seen++
			continue
		}
		out[collected] = r.messages[i]
		collected++
	}

	return out
}
