// Package archive persists registry snapshots to a SQL database so a
// registry's state survives between runs of the serializing authority. The
// schema holds exactly the persisted entity set: users, messages, groups with
// their ordered member lists, and the scalar state (fee, pause flag,
// balance). Both embedded sqlite3 and postgres via the pgx stdlib driver are
// supported.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	_ "github.com/jackc/pgx/v4/stdlib" // pgx database/sql driver
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"cloudfest-chat/internal/registry"
)

var (
	// ErrCorruptSnapshot reports a snapshot that violates the schema's
	// integrity constraints (duplicate ids, members of unknown groups).
	ErrCorruptSnapshot = errors.New("snapshot violates archive constraints")

	// ErrEmptyArchive reports a Load from an archive that has never been
	// saved to.
	ErrEmptyArchive = errors.New("archive holds no snapshot")
)

// Archive stores at most one snapshot; Save replaces it wholesale inside a
// single transaction.
type Archive struct {
	logger *zap.SugaredLogger
	db     *sql.DB
	driver string
}

const schema = `
create table if not exists registry_state (
	key   text primary key,
	value text not null
);

create table if not exists users (
	pos           integer primary key,
	identity      text not null unique,
	username      text not null unique,
	image_hash    text not null,
	registered_at bigint not null,
	active        boolean not null
);

create table if not exists usernames (
	pos      integer primary key,
	username text not null unique,
	identity text not null
);

create table if not exists messages (
	id        bigint primary key,
	sender    text not null,
	recipient text not null,
	private   boolean not null,
	content   text not null,
	group_id  bigint not null,
	sent_at   bigint not null
);

create table if not exists groups (
	id         bigint primary key,
	name       text not null,
	creator    text not null,
	created_at bigint not null,
	active     boolean not null
);

create table if not exists group_members (
	group_id bigint not null references groups (id),
	pos      integer not null,
	identity text not null,
	primary key (group_id, pos),
	unique (group_id, identity)
);
`

// New opens (and if necessary initializes) the archive described by cfg.
func New(logger *zap.SugaredLogger, cfg Config) (*Archive, error) {
	db, err := sql.Open(cfg.Driver, cfg.DataSource())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Archive{
		logger: logger,
		db:     db,
		driver: cfg.Driver,
	}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// rebind rewrites ? placeholders to $1, $2, ... for the pgx driver.
func (a *Archive) rebind(query string) string {
	if a.driver != DriverPgx {
		return query
	}

	var out strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			out.WriteByte('$')
			out.WriteString(strconv.Itoa(n))
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

// mapConstraintErr converts driver-specific integrity violations into
// ErrCorruptSnapshot, keeping everything else as-is.
func (a *Archive) mapConstraintErr(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation, pgerrcode.ForeignKeyViolation:
			return ErrCorruptSnapshot
		}
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return ErrCorruptSnapshot
	}

	return err
}

// Save replaces the stored snapshot. The delete-and-insert runs in one
// transaction, so a failed save leaves the previous snapshot intact.
func (a *Archive) Save(ctx context.Context, snap *registry.Snapshot) error {
	a.logger.Debugf("Saving snapshot: %d users, %d messages, %d groups", len(snap.Users), len(snap.Messages), len(snap.Groups))

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"group_members", "groups", "messages", "usernames", "users", "registry_state"} {
		if _, err := tx.ExecContext(ctx, "delete from "+table); err != nil {
			return err
		}
	}

	state := map[string]string{
		"fee":     strconv.FormatUint(snap.Fee, 10),
		"paused":  strconv.FormatBool(snap.Paused),
		"balance": strconv.FormatUint(snap.Balance, 10),
	}
	for key, value := range state {
		q := a.rebind("insert into registry_state (key, value) values (?, ?)")
		if _, err := tx.ExecContext(ctx, q, key, value); err != nil {
			return err
		}
	}

	for pos, u := range snap.Users {
		q := a.rebind("insert into users (pos, identity, username, image_hash, registered_at, active) values (?, ?, ?, ?, ?, ?)")
		_, err := tx.ExecContext(ctx, q, pos, string(u.ID), u.Username, u.ImageHash, u.RegisteredAt.UnixNano(), u.Active)
		if err != nil {
			return a.mapConstraintErr(err)
		}
	}

	for pos, rec := range snap.Usernames {
		q := a.rebind("insert into usernames (pos, username, identity) values (?, ?, ?)")
		if _, err := tx.ExecContext(ctx, q, pos, rec.Name, string(rec.ID)); err != nil {
			return a.mapConstraintErr(err)
		}
	}

	for _, m := range snap.Messages {
		q := a.rebind("insert into messages (id, sender, recipient, private, content, group_id, sent_at) values (?, ?, ?, ?, ?, ?, ?)")
		_, err := tx.ExecContext(ctx, q, m.ID, string(m.Sender), string(m.Recipient), m.Private, m.Content, m.GroupID, m.SentAt.UnixNano())
		if err != nil {
			return a.mapConstraintErr(err)
		}
	}

	for _, g := range snap.Groups {
		q := a.rebind("insert into groups (id, name, creator, created_at, active) values (?, ?, ?, ?, ?)")
		if _, err := tx.ExecContext(ctx, q, g.ID, g.Name, string(g.Creator), g.CreatedAt.UnixNano(), g.Active); err != nil {
			return a.mapConstraintErr(err)
		}
		for pos, id := range g.Members {
			q := a.rebind("insert into group_members (group_id, pos, identity) values (?, ?, ?)")
			if _, err := tx.ExecContext(ctx, q, g.ID, pos, string(id)); err != nil {
				return a.mapConstraintErr(err)
			}
		}
	}

	return tx.Commit()
}

// Load reads the stored snapshot back. Ordering columns restore registration
// order for users and the exact (swap-remove shuffled) member order for
// groups.
func (a *Archive) Load(ctx context.Context) (*registry.Snapshot, error) {
	snap := &registry.Snapshot{}

	rows, err := a.db.QueryContext(ctx, "select key, value from registry_state")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		seen++
		switch key {
		case "fee":
			snap.Fee, _ = strconv.ParseUint(value, 10, 64)
		case "paused":
			snap.Paused, _ = strconv.ParseBool(value)
		case "balance":
			snap.Balance, _ = strconv.ParseUint(value, 10, 64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if seen == 0 {
		return nil, ErrEmptyArchive
	}

	if err := a.loadUsers(ctx, snap); err != nil {
		return nil, err
	}
	if err := a.loadUsernames(ctx, snap); err != nil {
		return nil, err
	}
	if err := a.loadMessages(ctx, snap); err != nil {
		return nil, err
	}
	if err := a.loadGroups(ctx, snap); err != nil {
		return nil, err
	}

	a.logger.Debugf("Loaded snapshot: %d users, %d messages, %d groups", len(snap.Users), len(snap.Messages), len(snap.Groups))

	return snap, nil
}

func (a *Archive) loadUsers(ctx context.Context, snap *registry.Snapshot) error {
	rows, err := a.db.QueryContext(ctx, "select identity, username, image_hash, registered_at, active from users order by pos")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u registry.User
		var id string
		var registeredAt int64
		if err := rows.Scan(&id, &u.Username, &u.ImageHash, &registeredAt, &u.Active); err != nil {
			return err
		}
		u.ID = registry.Identity(id)
		u.RegisteredAt = time.Unix(0, registeredAt)
		snap.Users = append(snap.Users, u)
	}

	return rows.Err()
}

func (a *Archive) loadUsernames(ctx context.Context, snap *registry.Snapshot) error {
	rows, err := a.db.QueryContext(ctx, "select username, identity from usernames order by pos")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, id string
		if err := rows.Scan(&name, &id); err != nil {
			return err
		}
		snap.Usernames = append(snap.Usernames, registry.UsernameRecord{
			Name: name,
			ID:   registry.Identity(id),
		})
	}

	return rows.Err()
}

func (a *Archive) loadMessages(ctx context.Context, snap *registry.Snapshot) error {
	rows, err := a.db.QueryContext(ctx, "select id, sender, recipient, private, content, group_id, sent_at from messages order by id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m registry.Message
		var sender, recipient string
		var sentAt int64
		if err := rows.Scan(&m.ID, &sender, &recipient, &m.Private, &m.Content, &m.GroupID, &sentAt); err != nil {
			return err
		}
		m.Sender = registry.Identity(sender)
		m.Recipient = registry.Identity(recipient)
		m.SentAt = time.Unix(0, sentAt)
		snap.Messages = append(snap.Messages, m)
	}

	return rows.Err()
}

func (a *Archive) loadGroups(ctx context.Context, snap *registry.Snapshot) error {
	rows, err := a.db.QueryContext(ctx, "select id, name, creator, created_at, active from groups order by id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g registry.SnapshotGroup
		var creator string
		var createdAt int64
		if err := rows.Scan(&g.ID, &g.Name, &creator, &createdAt, &g.Active); err != nil {
			return err
		}
		g.Creator = registry.Identity(creator)
		g.CreatedAt = time.Unix(0, createdAt)
		snap.Groups = append(snap.Groups, g)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range snap.Groups {
		q := a.rebind("select identity from group_members where group_id = ? order by pos")
		memberRows, err := a.db.QueryContext(ctx, q, snap.Groups[i].ID)
		if err != nil {
			return err
		}
		for memberRows.Next() {
			var id string
			if err := memberRows.Scan(&id); err != nil {
				memberRows.Close()
				return err
			}
			snap.Groups[i].Members = append(snap.Groups[i].Members, registry.Identity(id))
		}
		if err := memberRows.Err(); err != nil {
			memberRows.Close()
			return err
		}
		memberRows.Close()
	}

	return nil
}
