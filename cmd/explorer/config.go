package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pokefinder-cloud/internal/explorer"
)

// clientConfig is everything the SDK needs to talk to a server.
type clientConfig struct {
	ServerURL   string
	SessionFile string
}

// loadConfig resolves settings from flags, POKEFINDER_* environment
// variables and an optional ~/.pokefinder/config.yaml, in that precedence.
func loadConfig(cmd *cobra.Command) (clientConfig, error) {
	v := viper.New()
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("session_file", "")

	v.SetConfigType("yaml")
	v.SetConfigName("config")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".pokefinder"))
	}
	v.SetEnvPrefix("POKEFINDER")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return clientConfig{}, err
		}
	}

	cfg := clientConfig{
		ServerURL:   v.GetString("server_url"),
		SessionFile: v.GetString("session_file"),
	}
	if flag, _ := cmd.Flags().GetString("server"); flag != "" {
		cfg.ServerURL = flag
	}
	if flag, _ := cmd.Flags().GetString("session-file"); flag != "" {
		cfg.SessionFile = flag
	}
	if cfg.ServerURL == "" {
		return clientConfig{}, errors.New("no server URL configured")
	}
	return cfg, nil
}

// newClient builds the SDK client for a command invocation.
func newClient(cmd *cobra.Command) (*explorer.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	store, err := explorer.NewCredentialStore(cfg.SessionFile)
	if err != nil {
		return nil, err
	}
	return explorer.NewClient(cfg.ServerURL, store, newLogger())
}
