package registry

// SetRegistrationFee changes the fee gating future registrations.
func (r *Registry) SetRegistrationFee(caller Identity, fee uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return ErrNotOwner
	}

	r.logger.Debugf("Registration fee changed from %d to %d", r.fee, fee)
	r.fee = fee

	return nil
}

// SetPaused stores the pause flag. The flag is not consulted by any other
// operation; the toggle is kept for compatibility with existing callers.
func (r *Registry) SetPaused(caller Identity, paused bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return ErrNotOwner
	}

	r.paused = paused

	return nil
}

// DeactivateUser flips the user's Active flag. The record, its username and
// its messages are retained forever.
func (r *Registry) DeactivateUser(caller, id Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return ErrNotOwner
	}
	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}

	u.Active = false

	r.logger.Debugf("Deactivated user (%s)", u.Username)

	return nil
}

// DeactivateGroup flips the group's active flag, blocking further joins and
// sends. Membership and past messages are retained.
func (r *Registry) DeactivateGroup(caller Identity, groupID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return ErrNotOwner
	}
	g, err := r.group(groupID)
	if err != nil {
		return err
	}

	g.active = false

	r.logger.Debugf("Deactivated group (%s)", g.name)

	return nil
}

// WithdrawFees transfers the entire accumulated balance to the owner and
// zeroes it, returning the amount withdrawn.
func (r *Registry) WithdrawFees(caller Identity) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return 0, ErrNotOwner
	}
	if r.balance == 0 {
		return 0, ErrNoBalance
	}

	amount := r.balance
	r.balance = 0

	r.logger.Debugf("Withdrew %d accumulated fees", amount)

	return amount, nil
}
