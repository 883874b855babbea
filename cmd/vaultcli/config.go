package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iov-one/quorum"
	"github.com/spf13/viper"
)

const (
	defaultHRP     = "vault"
	defaultChainID = "vault-local"
	envPrefix      = "VAULTCLI"
	configName     = "vaultcli"
)

// Config holds the settings shared by all commands. Values are taken from
// the command line flags, VAULTCLI_* environment variables and the
// vaultcli.yaml file, in that order of precedence.
type Config struct {
	// Home is the directory holding the state and the event journal.
	Home string `mapstructure:"home"`
	// Key is the path of the private key file used to sign.
	Key      string `mapstructure:"key"`
	LogLevel string `mapstructure:"log_level"`
	// HRP is the human readable part of bech32 addresses.
	HRP     string `mapstructure:"hrp"`
	ChainID string `mapstructure:"chain_id"`
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vaultcli"
	}
	return filepath.Join(home, ".vaultcli")
}

// loadConfig resolves the configuration. When file is empty, vaultcli.yaml
// is looked up in the home directory and then in the working directory. A
// missing configuration file is not an error.
func loadConfig(v *viper.Viper, file string) (*Config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("home", defaultHome())
	v.SetDefault("key", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("hrp", defaultHRP)
	v.SetDefault("chain_id", defaultChainID)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString("home"))
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("cannot read configuration: %s", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("cannot decode configuration: %s", err)
	}
	if c.Key == "" {
		c.Key = filepath.Join(c.Home, "key.priv")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate returns an error if the configuration cannot be used.
func (c *Config) Validate() error {
	if c.Home == "" {
		return errors.New("home directory is required")
	}
	if c.HRP == "" {
		return errors.New("bech32 prefix is required")
	}
	if !quorum.IsValidChainID(c.ChainID) {
		return fmt.Errorf("invalid chain id %q", c.ChainID)
	}
	return nil
}
