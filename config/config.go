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
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tomoncle/datasource/database"
)

// EnvPrefix prefixes environment overrides, e.g. DATASOURCE_SERVER_ADDR.
const EnvPrefix = "DATASOURCE"

// Config holds all application configuration.
type Config struct {
	Database    database.ConnectionConfig `mapstructure:"database"`
	Log         LogConfig                 `mapstructure:"log"`
	DataSources DataSourcesConfig         `mapstructure:"datasources"`
	Fixtures    FixturesConfig            `mapstructure:"fixtures"`
	Server      ServerConfig              `mapstructure:"server"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

type DataSourcesConfig struct {
	Dir               string `mapstructure:"dir"`
	DefaultMaxResults int    `mapstructure:"default_max_results"`
}

type FixturesConfig struct {
	Dir         string `mapstructure:"dir"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func setDefaults(v *viper.Viper) {
	db := database.DefaultConnectionConfig()
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "")
	v.SetDefault("database.dbname", "datasource")
	v.SetDefault("database.max_idle_conns", db.MaxIdleConns)
	v.SetDefault("database.max_open_conns", db.MaxOpenConns)
	v.SetDefault("database.conn_max_lifetime", db.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", db.ConnMaxIdleTime)
	v.SetDefault("database.connect_timeout", db.ConnectTimeout)
	v.SetDefault("database.read_timeout", db.ReadTimeout)
	v.SetDefault("database.write_timeout", db.WriteTimeout)
	v.SetDefault("database.slow_query_time", db.SlowQueryTime)
	v.SetDefault("database.health_check_interval", time.Duration(0))
	v.SetDefault("database.enable_query_log", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("datasources.dir", "datasources")
	v.SetDefault("datasources.default_max_results", 20)
	v.SetDefault("fixtures.dir", "fixtures")
	v.SetDefault("fixtures.environment", "dev")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
}

// Load reads the configuration file at path, or looks for config.yaml in
// the current and ./config directories when path is empty. Only in the
// latter case a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}
