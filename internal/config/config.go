// Copyright 2026 The LLMSpell Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the fully-resolved runtime configuration for a kernel
// process: storage backend selection, session retention, and logging.
type Config struct {
	DataDir string `mapstructure:"data_dir"`

	Storage StorageConfig `mapstructure:"storage"`
	Session SessionConfig `mapstructure:"session"`
	Kernel  KernelConfig  `mapstructure:"kernel"`
	Log     LogConfig     `mapstructure:"log"`
}

// StorageConfig selects and configures the OrderedKV backend.
type StorageConfig struct {
	// Backend is one of "memory", "sqlite", "postgres", "mysql".
	Backend string `mapstructure:"backend"`
	DSN     string `mapstructure:"dsn"`
}

// SessionConfig controls session retention and archival.
type SessionConfig struct {
	RetentionPeriod time.Duration `mapstructure:"retention_period"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	ArchiveDir      string        `mapstructure:"archive_dir"`
}

// KernelConfig controls the kernel's network binding and signing key.
type KernelConfig struct {
	IP              string `mapstructure:"ip"`
	Transport       string `mapstructure:"transport"`
	SignatureScheme string `mapstructure:"signature_scheme"`
	ConnectionFile  string `mapstructure:"connection_file"`
	// HTTPAddr, if non-empty, binds an HTTP listener exposing the
	// SSE iopub bridge (/events) and the read-only admin endpoints
	// (/admin/...) alongside the five TCP channels. Empty disables
	// both; the wire protocol itself never depends on HTTP.
	HTTPAddr string `mapstructure:"http_addr"`
}

// LogConfig controls the ambient logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load builds a viper instance layered as env > file > defaults and
// unmarshals it into a Config. configFile may be empty, in which case
// only the default search paths (DataDir()/config.yaml) are consulted.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LLMSPELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DataDir())
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configFile != "" {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", DataDir())
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.dsn", SubDir("llmspell.db"))
	v.SetDefault("session.retention_period", 30*24*time.Hour)
	v.SetDefault("session.cleanup_interval", time.Hour)
	v.SetDefault("session.archive_dir", SubDir("archive"))
	v.SetDefault("kernel.ip", "127.0.0.1")
	v.SetDefault("kernel.transport", "tcp")
	v.SetDefault("kernel.signature_scheme", "hmac-sha256")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}
