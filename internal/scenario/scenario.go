// Package scenario runs demo scripts against a registry. A script is a JSON
// array of operation objects, one per registry operation, each attributed via
// an "as" field:
//
//	[
//	  {"op": "register", "as": "0xa1", "username": "alice", "image": "QmAlice", "payment": 10},
//	  {"op": "send-global", "as": "0xa1", "content": "Hello everyone!"}
//	]
//
// Malformed steps abort the run; rejections from the registry itself are
// logged and counted, since demo scripts exercise failure paths on purpose.
package scenario

import (
	"fmt"

	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"cloudfest-chat/internal/registry"
)

type Runner struct {
	logger *zap.SugaredLogger
	reg    *registry.Registry
	pool   fastjson.ParserPool
}

// Result sums up a run: how many steps executed and how many of them the
// registry rejected.
type Result struct {
	Steps    int
	Rejected int
}

func NewRunner(logger *zap.SugaredLogger, reg *registry.Registry) *Runner {
	return &Runner{
		logger: logger,
		reg:    reg,
	}
}

// Run executes every step of script in order.
func (r *Runner) Run(script []byte) (Result, error) {
	parser := r.pool.Get()
	defer r.pool.Put(parser)

	root, err := parser.ParseBytes(script)
	if err != nil {
		return Result{}, fmt.Errorf("malformed script: %v", err)
	}

	steps, err := root.Array()
	if err != nil {
		return Result{}, fmt.Errorf("script must be a JSON array of steps")
	}

	var res Result
	for i, step := range steps {
		res.Steps++
		if err := r.runStep(step); err != nil {
			if malformed, ok := err.(*stepError); ok {
				return res, fmt.Errorf("step %d: %v", i, malformed.reason)
			}
			res.Rejected++
			r.logger.Warnf("Step %d rejected: %v", i, err)
		}
	}

	return res, nil
}

// stepError marks a script-shape problem, as opposed to a registry rejection.
type stepError struct {
	reason string
}

func (e *stepError) Error() string { return e.reason }

func malformedf(format string, args ...interface{}) error {
	return &stepError{reason: fmt.Sprintf(format, args...)}
}

func (r *Runner) runStep(v *fastjson.Value) error {
	op, err := stringField(v, "op")
	if err != nil {
		return err
	}

	switch op {
	case "register":
		return r.register(v)
	case "update-profile":
		return r.updateProfile(v)
	case "send-global":
		return r.sendGlobal(v)
	case "send-private":
		return r.sendPrivate(v)
	case "send-group":
		return r.sendGroup(v)
	case "create-group":
		return r.createGroup(v)
	case "join-group":
		return r.joinGroup(v)
	case "leave-group":
		return r.leaveGroup(v)
	case "set-fee":
		return r.setFee(v)
	case "set-paused":
		return r.setPaused(v)
	case "deactivate-user":
		return r.deactivateUser(v)
	case "deactivate-group":
		return r.deactivateGroup(v)
	case "withdraw-fees":
		return r.withdrawFees(v)
	case "usernames":
		r.logger.Infof("Usernames: %v", r.reg.Usernames())
		return nil
	case "user-by-username":
		return r.userByUsername(v)
	case "ens-name":
		return r.ensName(v)
	case "messages":
		return r.messages(v)
	case "group-messages":
		return r.groupMessages(v)
	case "private-messages":
		return r.privateMessages(v)
	case "group-info":
		return r.groupInfo(v)
	case "group-members":
		return r.groupMembers(v)
	default:
		return malformedf("unknown op %q", op)
	}
}

func (r *Runner) register(v *fastjson.Value) error {
	caller, err := callerField(v)
	if err != nil {
		return err
	}
	username, err := stringField(v, "username")
	if err != nil {
		return err
	}
	image, err := stringField(v, "image")
	if err != nil {
		return err
	}
	payment, err := uintField(v, "payment")
	if err != nil {
		return err
	}

	return r.reg.Register(caller, username, image, payment)
}

func (r *Runner) updateProfile(v *fastjson.Value) error {
	caller, err := callerField(v)
	if err != nil {
		return err
	}
	image, err := stringField(v, "image")
	if err != nil {
		return err
	}

	return r.reg.UpdateProfile(caller, image)
}

func (r *Runner) sendGlobal(v *fastjson.Value) error {
	caller, err := callerField(v)
	if err != nil {
		return err
	}
	content, err := stringField(v, "content")
	if err != nil {
		return err
	}

	return r.reg.SendGlobal(caller, content)
}

func (r *Runner) sendPrivate(v *fastjson.Value) error {
	caller, err := callerField(v)
	if err != nil {
		return err
	}
	to, err := stringField(v, "to")
	if err != nil {
		return err
	}
	content, err := stringField(v, "content")
	if err != nil {
		return err
	}

	return r.reg.SendPrivate(caller, registry.Identity(to), content)
}

func (r *Runner) sendGroup(v *fastjson.Value) error {
	caller, err := callerField(v)
	if err != nil {
		return err
	}
	groupID, err := intField(v, "group")
	if err != nil {
		return err
	}
	content, err := stringField(v, "content")
	if err != nil {
		return err
	}

	return r.reg.SendGroup(caller, groupID, content)
}

func (r *Runner) createGroup(v *fastjson.Value) error {
	caller, err := callerField(v)
	if err != nil {
		return err
	}
	name, err := stringField(v, "name")
	if err != nil {
		return err
	}

	groupID, err := r.reg.CreateGroup(caller, name)
	if err != nil {
		return err
	}
	r.logger.Infof("Created group %d (%s)", groupID, name)

	return nil
}

func (r *Runner) joinGroup(v *fastjson.Value) error {
	caller, err := callerField(v)
	if err != nil {
		return err
	}
	groupID, err := intField(v, "group")
	if err != nil {
		return err
	}

	return r.reg.JoinGroup(caller, groupID)
}

func (r *Runner) leaveGroup(v *fastjson.Value) error {
	caller, err := callerField(v)
	if err != nil {
		return err
	}
	groupID, err := intField(v, "group")
	if err != nil {
		return err
	}

	return r.reg.LeaveGroup(caller, groupID)
}

func (r *Runner) setFee(v *fastjson.Value) error {
	caller, err := callerField(v)
	if err != nil {
		return err
	}
	fee, err := uintField(v, "fee")
	if err != nil {
		return err
	}

	return r.reg.SetRegistrationFee(caller, fee)
}

func (r *Runner) setPaused(v *fastjson.Value) error {
	caller, err := callerField(v)
	if err != nil {
		return err
	}
	paused, err := boolField(v, "paused")
	if err != nil {
		return err
	}

	return r.reg.SetPaused(caller, paused)
}

func (r *Runner) deactivateUser(v *fastjson.Value) error {
	caller, err := callerField(v)
	if err != nil {
		return err
	}
	user, err := stringField(v, "user")
	if err != nil {
		return err
	}

	return r.reg.DeactivateUser(caller, registry.Identity(user))
}

func (r *Runner) deactivateGroup(v *fastjson.Value) error {
	caller, err := callerField(v)
	if err != nil {
		return err
	}
	groupID, err := intField(v, "group")
	if err != nil {
		return err
	}

	return r.reg.DeactivateGroup(caller, groupID)
}

func (r *Runner) withdrawFees(v *fastjson.Value) error {
	caller, err := callerField(v)
	if err != nil {
		return err
	}

	amount, err := r.reg.WithdrawFees(caller)
	if err != nil {
		return err
	}
	r.logger.Infof("Withdrew %d accumulated fees", amount)

	return nil
}

func (r *Runner) userByUsername(v *fastjson.Value) error {
	username, err := stringField(v, "username")
	if err != nil {
		return err
	}

	u, err := r.reg.UserByUsername(username)
	if err != nil {
		return err
	}
	r.logger.Infof("User %s: identity %s, image %s", u.Username, u.ID, u.ImageHash)

	return nil
}

func (r *Runner) ensName(v *fastjson.Value) error {
	caller, err := callerField(v)
	if err != nil {
		return err
	}

	name, err := r.reg.ENSName(caller)
	if err != nil {
		return err
	}
	r.logger.Infof("ENS name for %s: %s", caller, name)

	return nil
}

func (r *Runner) messages(v *fastjson.Value) error {
	start, err := intField(v, "start")
	if err != nil {
		return err
	}
	count, err := intField(v, "count")
	if err != nil {
		return err
	}

	msgs, err := r.reg.Messages(start, count)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		r.logger.Infof("Message %d from %s: %s", m.ID, m.Sender, m.Content)
	}

	return nil
}

func (r *Runner) groupMessages(v *fastjson.Value) error {
	groupID, err := intField(v, "group")
	if err != nil {
		return err
	}
	start, err := intField(v, "start")
	if err != nil {
		return err
	}
	count, err := intField(v, "count")
	if err != nil {
		return err
	}

	msgs, err := r.reg.GroupMessages(groupID, start, count)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if m.Sender == registry.None {
			break
		}
		r.logger.Infof("Group %d message %d from %s: %s", groupID, m.ID, m.Sender, m.Content)
	}

	return nil
}

func (r *Runner) privateMessages(v *fastjson.Value) error {
	caller, err := callerField(v)
	if err != nil {
		return err
	}
	other, err := stringField(v, "other")
	if err != nil {
		return err
	}
	start, err := intField(v, "start")
	if err != nil {
		return err
	}
	count, err := intField(v, "count")
	if err != nil {
		return err
	}

	msgs, err := r.reg.PrivateMessages(caller, registry.Identity(other), start, count)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if m.Sender == registry.None {
			break
		}
		r.logger.Infof("Private message %d %s -> %s: %s", m.ID, m.Sender, m.Recipient, m.Content)
	}

	return nil
}

func (r *Runner) groupInfo(v *fastjson.Value) error {
	groupID, err := intField(v, "group")
	if err != nil {
		return err
	}

	info, err := r.reg.GroupInfoByID(groupID)
	if err != nil {
		return err
	}
	r.logger.Infof("Group %d (%s): creator %s, %d members", groupID, info.Name, info.Creator, info.MemberCount)

	return nil
}

func (r *Runner) groupMembers(v *fastjson.Value) error {
	groupID, err := intField(v, "group")
	if err != nil {
		return err
	}

	members, err := r.reg.GroupMembers(groupID)
	if err != nil {
		return err
	}
	r.logger.Infof("Group %d members: %v", groupID, members)

	return nil
}
