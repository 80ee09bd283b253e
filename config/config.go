/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tomoncle/datarepo/database"
	"github.com/tomoncle/datarepo/utils"
)

// EnvPrefix prefixes every environment override, e.g. DATAREPO_SERVER_ADDR
// or DATAREPO_DATABASE_CONNECTION_TYPE.
const EnvPrefix = "DATAREPO"

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release or test
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	DefaultAuditor  string        `mapstructure:"default_auditor"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Log      LogConfig       `mapstructure:"log"`
	Database database.Config `mapstructure:"database"`
}

var _ database.AbstractDatabaseConfigProvider = (*Config)(nil)

// ConfigLoader returns the database section.
func (c *Config) ConfigLoader() *database.Config {
	return &c.Database
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Mode:            "release",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Database: *database.DefaultConfig(),
	}
}

// Load reads path, when given, on top of the defaults. Variables from a .env
// file in the working directory are exported first; real environment
// variables win over both.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ApplyLogging configures the named loggers from the log section.
func (c *Config) ApplyLogging() {
	utils.ConfigureLogFormat(c.Log.Format)
	utils.ConfigureLogLevel(c.Log.Level)
}

// setDefaults registers every key so that AutomaticEnv can resolve it during
// Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.default_auditor", d.Server.DefaultAuditor)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	c := d.Database.ConnectionConfig
	for key, value := range map[string]any{
		"type":                  c.Type,
		"host":                  c.Host,
		"port":                  c.Port,
		"username":              c.Username,
		"password":              c.Password,
		"dbname":                c.DBName,
		"sslmode":               c.SSLMode,
		"max_idle_conns":        c.MaxIdleConns,
		"max_open_conns":        c.MaxOpenConns,
		"conn_max_lifetime":     c.ConnMaxLifetime,
		"conn_max_idle_time":    c.ConnMaxIdleTime,
		"connect_timeout":       c.ConnectTimeout,
		"read_timeout":          c.ReadTimeout,
		"write_timeout":         c.WriteTimeout,
		"enable_reconnect":      c.EnableReconnect,
		"reconnect_interval":    c.ReconnectInterval,
		"max_reconnect_tries":   c.MaxReconnectTries,
		"health_check_interval": c.HealthCheckInterval,
		"enable_query_log":      c.EnableQueryLog,
		"color_query_log":       c.ColorQueryLog,
		"slow_query_time":       c.SlowQueryTime,
		"enable_metrics":        c.EnableMetrics,
	} {
		v.SetDefault("database.connection."+key, value)
	}

	m := d.Database.DataMigrateConfig
	v.SetDefault("database.migrate.enable_migrate_on_startup", m.EnableMigrateOnStartup)
	v.SetDefault("database.migrate.enable_foreign_key", m.EnableForeignKey)
	v.SetDefault("database.migrate.foreign_key_file", m.ForeignKeyFile)

	s := d.Database.DataInitConfig
	v.SetDefault("database.seed.seed_on_startup", s.SeedOnStartup)
	v.SetDefault("database.seed.seed_members", s.SeedMembers)
}
