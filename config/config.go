/*
 * Copyright 2025 The BTEB Results Authors.
 *
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
	"io/ioutil"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	log "github.com/sirupsen/logrus"
)

// DefaultSourceTimeout applies when a per-source timeout is not set.
const DefaultSourceTimeout = 10

// SourceConfig defines one hosted database project in the fallback chain.
type SourceConfig struct {
	Name        string `yaml:"Name"`
	DSN         string `yaml:"DSN"`
	Description string `yaml:"Description"`
}

// WebAPIConfig defines one external web API fallback.
//
// Endpoint and Params values may carry {roll}, {regulation} and {program}
// placeholders which are substituted per lookup.
type WebAPIConfig struct {
	Name        string            `yaml:"Name"`
	BaseURL     string            `yaml:"BaseURL"`
	Endpoint    string            `yaml:"Endpoint"`
	Params      map[string]string `yaml:"Params"`
	Timeout     int               `yaml:"Timeout"` // seconds
	Priority    int               `yaml:"Priority"`
	Description string            `yaml:"Description"`
}

// StorageConfig defines the local persistence options for the proxy.
type StorageConfig struct {
	// sqlite3 database file for settings and the lookup audit log.
	Database string `yaml:"Database"`
}

// Config defines the configurable options for the result proxy.
type Config struct {
	ListenAddr string `yaml:"ListenAddr"`

	// per-source lookup timeout in seconds.
	SourceTimeout int `yaml:"SourceTimeout"`

	// persistence config for settings and audit log.
	Storage *StorageConfig `yaml:"Storage"`

	// ordered database projects and the search order over them.
	Sources       []*SourceConfig `yaml:"Sources"`
	SearchOrder   []string        `yaml:"SearchOrder"`
	CurrentSource string          `yaml:"CurrentSource"`

	// external web APIs consulted after all database projects miss.
	WebAPIs []*WebAPIConfig `yaml:"WebAPIs"`
}

type confWrapper struct {
	Proxy *Config `yaml:"Proxy"`
}

// SourceTimeoutDuration returns the per-source timeout as a duration.
func (c *Config) SourceTimeoutDuration() time.Duration {
	if c.SourceTimeout <= 0 {
		return DefaultSourceTimeout * time.Second
	}
	return time.Duration(c.SourceTimeout) * time.Second
}

// GetSource returns the source config with the given name.
func (c *Config) GetSource(name string) *SourceConfig {
	for _, s := range c.Sources {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (c *Config) validate() (err error) {
	if c.ListenAddr == "" {
		err = ErrInvalidProxyConfig
		log.Error("ListenAddr is not defined in proxy config")
		return
	}

	if len(c.Sources) == 0 && len(c.WebAPIs) == 0 {
		err = ErrInvalidProxyConfig
		log.Error("at least one database project or web api is required")
		return
	}

	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		if err = s.validate(); err != nil {
			return
		}
		if seen[s.Name] {
			err = ErrInvalidProxyConfig
			log.WithField("source", s.Name).Error("duplicate source name")
			return
		}
		seen[s.Name] = true
	}

	for _, name := range c.SearchOrder {
		if !seen[name] {
			err = ErrInvalidProxyConfig
			log.WithField("source", name).Error("search order names an undeclared source")
			return
		}
	}

	if c.CurrentSource != "" && !seen[c.CurrentSource] {
		err = ErrInvalidProxyConfig
		log.WithField("source", c.CurrentSource).Error("current source is not declared")
		return
	}

	for _, w := range c.WebAPIs {
		if err = w.validate(); err != nil {
			return
		}
	}

	if err = c.Storage.validate(); err != nil {
		return
	}

	return
}

func (sc *SourceConfig) validate() (err error) {
	if sc.Name == "" || sc.DSN == "" {
		err = ErrInvalidProxyConfig
		log.Error("a name and connection dsn is required for every source")
		return
	}
	return
}

func (wc *WebAPIConfig) validate() (err error) {
	if wc.Name == "" || wc.BaseURL == "" || wc.Endpoint == "" {
		err = ErrInvalidProxyConfig
		log.Error("a name, base url and endpoint is required for every web api")
		return
	}

	if wc.Timeout <= 0 {
		wc.Timeout = DefaultSourceTimeout
	}

	return
}

func (pc *StorageConfig) validate() (err error) {
	if pc == nil {
		// settings and audit log are kept in memory only
		return
	}

	if pc.Database == "" {
		err = ErrInvalidProxyConfig
		log.Error("a database file is required for proxy persistence")
		return
	}

	return
}

// loadFromEnv appends database projects declared through environment
// variables: RESULT_DB_DSN for the primary project, then
// RESULT_DB_DSN_1/RESULT_DB_NAME_1 and so on until a gap.
func (c *Config) loadFromEnv() {
	if dsn := os.Getenv("RESULT_DB_DSN"); dsn != "" && c.GetSource("primary") == nil {
		c.Sources = append(c.Sources, &SourceConfig{
			Name:        "primary",
			DSN:         dsn,
			Description: "primary database project",
		})
		if c.CurrentSource == "" {
			c.CurrentSource = "primary"
		}
		log.Info("loaded primary project from environment")
	}

	for i := 1; ; i++ {
		dsn := os.Getenv(fmt.Sprintf("RESULT_DB_DSN_%d", i))
		if dsn == "" {
			break
		}

		name := os.Getenv(fmt.Sprintf("RESULT_DB_NAME_%d", i))
		if name == "" {
			name = fmt.Sprintf("project_%d", i)
		}
		if c.GetSource(name) != nil {
			continue
		}

		c.Sources = append(c.Sources, &SourceConfig{
			Name:        name,
			DSN:         dsn,
			Description: fmt.Sprintf("database project %d", i),
		})
		log.WithField("source", name).Info("loaded project from environment")
	}
}

// LoadConfig loads the proxy config from a yaml file, fills in sources
// declared through the environment and validates the result.
func LoadConfig(listenAddr string, configPath string) (config *Config, err error) {
	configWrapper := &confWrapper{}

	if configPath != "" {
		var configBytes []byte
		if configBytes, err = ioutil.ReadFile(configPath); err != nil {
			log.WithError(err).Error("read config file failed")
			return
		}

		if err = yaml.Unmarshal(configBytes, configWrapper); err != nil {
			log.WithError(err).Error("unmarshal config file failed")
			return
		}
	}

	if configWrapper.Proxy == nil {
		configWrapper.Proxy = &Config{}
	}

	config = configWrapper.Proxy
	config.loadFromEnv()

	// override config
	if listenAddr != "" {
		config.ListenAddr = listenAddr
	}

	// default search order follows declaration order
	if len(config.SearchOrder) == 0 {
		for _, s := range config.Sources {
			config.SearchOrder = append(config.SearchOrder, s.Name)
		}
	}

	if config.CurrentSource == "" && len(config.Sources) > 0 {
		config.CurrentSource = config.Sources[0].Name
	}

	if err = config.validate(); err != nil {
		config = nil
		return
	}

	return
}
