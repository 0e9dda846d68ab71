package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultPort       = "8080"
	defaultBackendURL = "http://localhost:5000"
	defaultStatePath  = "./.searchcompare/state.db"
	defaultLogLevel   = "info"
)

type Config struct {
	config *viper.Viper
}

func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

func (c *Config) GetPort() string {
	return c.getString("PORT", "server.port", defaultPort)
}

// GetBackendURL is the base URL of the search backend, without the /api suffix.
func (c *Config) GetBackendURL() string {
	return c.getString("BACKEND_URL", "backend.url", defaultBackendURL)
}

func (c *Config) GetStatePath() string {
	return c.getString("STATE_DB_PATH", "database.state_path", defaultStatePath)
}

func (c *Config) GetLogLevel() string {
	return c.getString("LOG_LEVEL", "log.level", defaultLogLevel)
}

// GetDefaultProcesses and GetDefaultThreads return the raw configured values.
// They are normalized by the search config state, so an invalid value here is
// not an error.
func (c *Config) GetDefaultProcesses() any {
	return c.getAny("DEFAULT_PROCESSES", "search.processes")
}

func (c *Config) GetDefaultThreads() any {
	return c.getAny("DEFAULT_THREADS", "search.threads")
}

func (c *Config) getString(envKey string, fileKey string, fallback string) string {
	value := c.config.GetString(envKey)
	if len(value) == 0 {
		value = c.config.GetString(fileKey)
	}
	if len(value) == 0 {
		value = fallback
	}

	return value
}

func (c *Config) getAny(envKey string, fileKey string) any {
	if value := c.config.Get(envKey); value != nil {
		return value
	}

	return c.config.Get(fileKey)
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
