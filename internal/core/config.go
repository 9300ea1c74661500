package core

// SessionKind distinguishes the two registry families.
type SessionKind string

const (
	// KindRelational identifies MySQL-family sessions.
	KindRelational SessionKind = "relational"

	// KindKeyValue identifies Redis-family sessions.
	KindKeyValue SessionKind = "key-value"
)

// DatabaseConfig contains the user-supplied parameters for a relational
// connection. Immutable once a session is created from it.
type DatabaseConfig struct {
	// Type is the engine tag (e.g. "mysql", "mariadb"). Informational;
	// every supported engine speaks the MySQL wire protocol.
	Type string `yaml:"type" json:"type"`

	// Name is the display name shown by the presentation layer.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Host is the server hostname or address.
	Host string `yaml:"host" json:"host"`

	// Port is the server port. Defaults to 3306 when zero.
	Port int `yaml:"port,omitempty" json:"port,omitempty"`

	// User is the authentication user. Always present for relational
	// configs, possibly empty.
	User string `yaml:"user" json:"user"`

	// Password is the authentication password.
	Password string `yaml:"password,omitempty" json:"password,omitempty"`

	// Database is the optional default database name.
	Database string `yaml:"database,omitempty" json:"database,omitempty"`
}

// Addr returns host:port with the default port applied.
func (c DatabaseConfig) Addr() (string, int) {
	port := c.Port
	if port == 0 {
		port = 3306
	}
	return c.Host, port
}

// KVConfig contains the user-supplied parameters for a key-value
// connection. It carries no user field; the Redis family authenticates
// with a password alone.
type KVConfig struct {
	// Name is the display name shown by the presentation layer.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Host is the server hostname or address.
	Host string `yaml:"host" json:"host"`

	// Port is the server port. Defaults to 6379 when zero.
	Port int `yaml:"port,omitempty" json:"port,omitempty"`

	// Password is the optional authentication password.
	Password string `yaml:"password,omitempty" json:"password,omitempty"`

	// Database is the logical database index (0-15).
	Database int `yaml:"database,omitempty" json:"database,omitempty"`
}

// Addr returns host:port with the default port applied.
func (c KVConfig) Addr() (string, int) {
	port := c.Port
	if port == 0 {
		port = 6379
	}
	return c.Host, port
}
