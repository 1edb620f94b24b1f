package registry

const (
	usernameMaxLen  = 20
	ensSuffix       = ".cloudfest"
	contentMaxLen   = 500
	groupNameMaxLen = 50
)

// Register creates the User record for id. The attached payment must cover
// the current registration fee; any excess is retained by the registry and
// never refunded. Exactly one registration per identity is possible, and the
// username must not be mapped to another identity.
func (r *Registry) Register(id Identity, username, imageHash string, payment uint64) error {
	if !r.beginRegister() {
		return ErrReentrancy
	}
	defer r.endRegister()

	r.mu.Lock()
	defer r.mu.Unlock()

	if payment < r.fee {
		return ErrInsufficientFee
	}
	if _, taken := r.byUsername[username]; taken {
		return ErrUsernameTaken
	}
	if r.activeUser(id) != nil {
		return ErrAlreadyRegistered
	}
	if len(username) == 0 || len(username) > usernameMaxLen {
		return ErrBadUsername
	}
	if len(imageHash) == 0 {
		return ErrBadImageHash
	}

	r.logger.Debugf("Registering user (%s) for identity %s", username, id)

	r.users[id] = &User{
		ID:           id,
		Username:     username,
		ImageHash:    imageHash,
		RegisteredAt: r.clock(),
		Active:       true,
	}
	r.byUsername[username] = id
	r.usernames = append(r.usernames, username)
	r.balance += payment

	r.notify.Notify(UserRegistered{Identity: id, Username: username, ImageHash: imageHash})

	return nil
}

// UpdateProfile replaces the caller's image hash. No other field of a User
// record is ever mutated after registration.
func (r *Registry) UpdateProfile(id Identity, imageHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.activeUser(id)
	if u == nil {
		return ErrNotRegistered
	}
	if len(imageHash) == 0 {
		return ErrBadImageHash
	}

	u.ImageHash = imageHash

	return nil
}

// UserByUsername returns the user registered under username. Deactivated
// users are reported as absent.
func (r *Registry) UserByUsername(username string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return User{}, ErrUserNotFound
	}
	u := r.activeUser(id)
	if u == nil {
		return User{}, ErrUserNotFound
	}

	return *u, nil
}

// UserByIdentity returns the user record for id. Deactivated users are
// reported as absent.
func (r *Registry) UserByIdentity(id Identity) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u := r.activeUser(id)
	if u == nil {
		return User{}, ErrUserNotFound
	}

	return *u, nil
}

// ENSName derives the display name for id: username + ".cloudfest".
func (r *Registry) ENSName(id Identity) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u := r.activeUser(id)
	if u == nil {
		return "", ErrNotRegistered
	}

	return u.Username + ensSuffix, nil
}

// Usernames returns every registered username in registration order. Names
// whose owner was later deactivated stay on the list.
func (r *Registry) Usernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.usernames))
	copy(out, r.usernames)

	return out
}
