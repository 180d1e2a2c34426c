package types

import (
	"time"
)

// Mode constants for service operation
const (
	ModeLocal  = "local"  // No Redis/Postgres, in-memory repositories
	ModeRemote = "remote" // Full infrastructure
)

// AppConfig is the root configuration for the zerobyte service
type AppConfig struct {
	Mode       string `key:"mode" json:"mode"` // "local" or "remote"
	DebugMode  bool   `key:"debugMode" json:"debug_mode"`
	PrettyLogs bool   `key:"prettyLogs" json:"pretty_logs"`

	Database DatabaseConfig `key:"database" json:"database"`
	Server   ServerConfig   `key:"server" json:"server"`
	Storage  StorageConfig  `key:"storage" json:"storage"`
	Monitor  MonitorConfig  `key:"monitor" json:"monitor"`
	Secrets  SecretsConfig  `key:"secrets" json:"secrets"`
}

// IsLocalMode returns true if running in local mode (no Redis/Postgres)
func (c *AppConfig) IsLocalMode() bool {
	return c.Mode == ModeLocal
}

// ----------------------------------------------------------------------------
// Database Configuration
// ----------------------------------------------------------------------------

type DatabaseConfig struct {
	Redis    RedisConfig    `key:"redis" json:"redis"`
	Postgres PostgresConfig `key:"postgres" json:"postgres"`
}

type RedisConfig struct {
	Addr         string        `key:"addr" json:"addr"`
	Username     string        `key:"username" json:"username"`
	Password     string        `key:"password" json:"password"`
	ClientName   string        `key:"clientName" json:"client_name"`
	PoolSize     int           `key:"poolSize" json:"pool_size"`
	DialTimeout  time.Duration `key:"dialTimeout" json:"dial_timeout"`
	ReadTimeout  time.Duration `key:"readTimeout" json:"read_timeout"`
	WriteTimeout time.Duration `key:"writeTimeout" json:"write_timeout"`
}

type PostgresConfig struct {
	Host            string        `key:"host" json:"host"`
	Port            int           `key:"port" json:"port"`
	User            string        `key:"user" json:"user"`
	Password        string        `key:"password" json:"password"`
	Database        string        `key:"database" json:"database"`
	SSLMode         string        `key:"sslMode" json:"ssl_mode"`
	MaxOpenConns    int           `key:"maxOpenConns" json:"max_open_conns"`
	MaxIdleConns    int           `key:"maxIdleConns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `key:"connMaxLifetime" json:"conn_max_lifetime"`
}

// ----------------------------------------------------------------------------
// Server Configuration
// ----------------------------------------------------------------------------

type ServerConfig struct {
	HTTP            HTTPConfig    `key:"http" json:"http"`
	ShutdownTimeout time.Duration `key:"shutdownTimeout" json:"shutdown_timeout"`
	AuthToken       string        `key:"authToken" json:"auth_token"`
}

type HTTPConfig struct {
	Host             string     `key:"host" json:"host"`
	Port             int        `key:"port" json:"port"`
	EnablePrettyLogs bool       `key:"enablePrettyLogs" json:"enable_pretty_logs"`
	CORS             CORSConfig `key:"cors" json:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `key:"allowedOrigins" json:"allowed_origins"`
	AllowedHeaders []string `key:"allowedHeaders" json:"allowed_headers"`
	AllowedMethods []string `key:"allowedMethods" json:"allowed_methods"`
}

// ----------------------------------------------------------------------------
// Storage Configuration
// ----------------------------------------------------------------------------

// StorageConfig configures where network-backend mount points live. Each
// volume gets its own subdirectory under MountBase, keyed by volume name.
type StorageConfig struct {
	MountBase string `key:"mountBase" json:"mount_base"`
}

// MonitorConfig configures the background volume health monitor.
type MonitorConfig struct {
	Enabled  bool          `key:"enabled" json:"enabled"`
	Interval time.Duration `key:"interval" json:"interval"`
}

// SecretsConfig configures the secret store. Key is a 64-char hex string
// (32 bytes) used to seal secrets at rest.
type SecretsConfig struct {
	Key string `key:"key" json:"key"`
}
