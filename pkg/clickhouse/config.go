package clickhouse

import "time"

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// ClientConfig holds connection settings for the quote store. Zero
// values fall back to the defaults in NewClient.
type ClientConfig struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxExecTime     time.Duration
}

// WithHost sets the server host.
func WithHost(host string) ClientOption {
	return func(c *ClientConfig) { c.Host = host }
}

// WithPort sets the native protocol port.
func WithPort(port int) ClientOption {
	return func(c *ClientConfig) { c.Port = port }
}

// WithDatabase sets the target database.
func WithDatabase(database string) ClientOption {
	return func(c *ClientConfig) { c.Database = database }
}

// WithCredentials sets the user and password.
func WithCredentials(user, password string) ClientOption {
	return func(c *ClientConfig) { c.User, c.Password = user, password }
}

// WithMaxConnections bounds the pool size.
func WithMaxConnections(maxOpen, maxIdle int) ClientOption {
	return func(c *ClientConfig) { c.MaxOpenConns, c.MaxIdleConns = maxOpen, maxIdle }
}

// WithTimeouts sets the dial, read, and write timeouts.
func WithTimeouts(dial, read, write time.Duration) ClientOption {
	return func(c *ClientConfig) { c.DialTimeout, c.ReadTimeout, c.WriteTimeout = dial, read, write }
}

// WithMaxExecutionTime caps per-query execution time server side.
func WithMaxExecutionTime(d time.Duration) ClientOption {
	return func(c *ClientConfig) { c.MaxExecTime = d }
}
