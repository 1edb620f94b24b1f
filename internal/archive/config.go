package archive

import "strconv"

// Supported database/sql driver names.
const (
	DriverSQLite = "sqlite3"
	DriverPgx    = "pgx"
)

// Config selects the driver and where the archive lives: a file path for
// sqlite3, connection parameters for pgx.
type Config struct {
	Driver string

	// sqlite3
	Path string

	// pgx
	User     string
	Password string
	Host     string
	Port     uint16
	DBName   string
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return "user=" + c.User +
		" password=" + c.Password +
		" host=" + c.Host +
		" port=" + strconv.FormatUint(uint64(c.Port), 10) +
		" dbname=" + c.DBName +
		" sslmode=disable"
}

// DataSource returns the database/sql data source name for the configured
// driver.
func (c Config) DataSource() string {
	if c.Driver == DriverPgx {
		return c.DSN()
	}
	return c.Path
}
