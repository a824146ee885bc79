package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Service      ServiceConfig      `toml:"service"`
	Notification NotificationConfig `toml:"notification"`
	Camera       CameraConfig       `toml:"camera"`
	Database     DatabaseConfig     `toml:"database"`
}

// ServiceConfig contains the remote inspection service endpoints.
type ServiceConfig struct {
	BaseURL        string `toml:"base_url"`
	PredictPath    string `toml:"predict_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// NotificationConfig contains the email notification service settings.
type NotificationConfig struct {
	BaseURL           string  `toml:"base_url"`
	PublicKey         string  `toml:"public_key"`
	PPEServiceID      string  `toml:"ppe_service_id"`
	PPETemplateID     string  `toml:"ppe_template_id"`
	MachineServiceID  string  `toml:"machine_service_id"`
	MachineTemplateID string  `toml:"machine_template_id"`
	RateLimit         float64 `toml:"rate_limit"`
}

// CameraConfig contains the local capture device settings.
type CameraConfig struct {
	DeviceID int `toml:"device_id"`
	Width    int `toml:"width"`
	Height   int `toml:"height"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
