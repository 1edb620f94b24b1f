package main

import (
	"context"
	"errors"
	"io/ioutil"
	"log"

	"github.com/caarlos0/env/v6"
	"go.uber.org/zap"

	"cloudfest-chat/internal/archive"
	"cloudfest-chat/internal/observer"
	"cloudfest-chat/internal/registry"
	"cloudfest-chat/internal/scenario"
)

// EnvConfig defines fields used for parsing from environment variables
type EnvConfig struct {
	Owner    string `env:"OWNER" envDefault:"0x00000000000000000000000000000000000f33d0"`
	Fee      uint64 `env:"FEE" envDefault:"10"`
	Scenario string `env:"SCENARIO"`

	ArchiveDriver string `env:"ARCHIVE_DRIVER" envDefault:"sqlite3"`
	ArchivePath   string `env:"ARCHIVE_PATH"`

	// pgx archive parameters, used when ARCHIVE_DRIVER=pgx
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     uint16 `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME" envDefault:"cloudfest"`
}

// defaultScript is run when no SCENARIO file is provided: two paid
// registrations, a global message, group churn and a fee withdrawal.
const defaultScript = `[
	{"op": "register", "as": "0xa1", "username": "alice", "image": "QmAlice", "payment": 10},
	{"op": "register", "as": "0xb2", "username": "bob", "image": "QmBob", "payment": 10},
	{"op": "send-global", "as": "0xa1", "content": "Hello everyone!"},
	{"op": "create-group", "as": "0xa1", "name": "Dev Team"},
	{"op": "join-group", "as": "0xb2", "group": 0},
	{"op": "leave-group", "as": "0xb2", "group": 0},
	{"op": "send-group", "as": "0xa1", "group": 0, "content": "Welcome"},
	{"op": "ens-name", "as": "0xa1"},
	{"op": "group-info", "group": 0},
	{"op": "messages", "start": 0, "count": 10},
	{"op": "withdraw-fees", "as": "0x00000000000000000000000000000000000f33d0"}
]`

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("zap.NewDevelopment: %v", err)
	}
	defer logger.Sync()

	sugar := logger.Sugar()
	sugar.Info("Registry demo is starting")

	cfg := EnvConfig{}
	if err := env.Parse(&cfg); err != nil {
		sugar.Fatalf("Cannot parse env config: %v", err)
	}

	reg := registry.New(sugar, registry.Identity(cfg.Owner),
		registry.RegistrationFee(cfg.Fee),
		registry.Notify(observer.NewLog(logger)),
	)

	var arch *archive.Archive
	if cfg.ArchivePath != "" || cfg.ArchiveDriver == archive.DriverPgx {
		arch, err = archive.New(sugar, archive.Config{
			Driver:   cfg.ArchiveDriver,
			Path:     cfg.ArchivePath,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			DBName:   cfg.DBName,
		})
		if err != nil {
			sugar.Fatalf("Cannot open archive: %v", err)
		}
		defer arch.Close()

		snap, err := arch.Load(context.Background())
		switch {
		case errors.Is(err, archive.ErrEmptyArchive):
			sugar.Info("Archive is empty, starting fresh")
		case err != nil:
			sugar.Fatalf("Cannot load archive: %v", err)
		default:
			if err := reg.Restore(snap); err != nil {
				sugar.Fatalf("Cannot restore snapshot: %v", err)
			}
		}
	}

	script := []byte(defaultScript)
	if cfg.Scenario != "" {
		script, err = ioutil.ReadFile(cfg.Scenario)
		if err != nil {
			sugar.Fatalf("Cannot read scenario file: %v", err)
		}
	}

	res, err := scenario.NewRunner(sugar, reg).Run(script)
	if err != nil {
		sugar.Fatalf("Scenario failed: %v", err)
	}
	sugar.Infof("Scenario finished: %d steps, %d rejected", res.Steps, res.Rejected)

	if arch != nil {
		if err := arch.Save(context.Background(), reg.Snapshot()); err != nil {
			sugar.Fatalf("Cannot save snapshot: %v", err)
		}
		sugar.Info("Snapshot saved")
	}
}
