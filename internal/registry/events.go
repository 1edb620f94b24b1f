package registry

// Event is a notification emitted as part of a committed mutation. Emission
// happens inside the committing critical section, so an Observer sees events
// in commit order.
type Event interface {
	event()
}

type UserRegistered struct {
	Identity  Identity
	Username  string
	ImageHash string
}

type MessageSent struct {
	ID      int64
	Sender  Identity
	Private bool
	GroupID int64
}

type GroupCreated struct {
	GroupID int64
	Name    string
	Creator Identity
}

type UserJoinedGroup struct {
	GroupID  int64
	Identity Identity
}

type UserLeftGroup struct {
	GroupID  int64
	Identity Identity
}

func (UserRegistered) event()  {}
func (MessageSent) event()     {}
func (GroupCreated) event()    {}
func (UserJoinedGroup) event() {}
func (UserLeftGroup) event()   {}

// Observer consumes emitted events for off-system indexing. Notify is called
// with the registry lock held; an observer that calls back into a mutating
// operation will deadlock, except registration which is rejected by the
// reentrancy guard.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }

type noopObserver struct{}

func (noopObserver) Notify(Event) {}
