package mixloop

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every configuration validation error.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultConfigPath is where LoadConfig looks when no path is given.
const DefaultConfigPath = "~/.config/mixloop/config.yaml"

// Config holds the runtime settings of the command line tool.
type Config struct {
	SampleRate   int     `yaml:"sample_rate"`
	BufferFrames int     `yaml:"buffer_frames"`
	Channels     int     `yaml:"channels"`
	Gain         float64 `yaml:"gain"`
	Pan          float64 `yaml:"pan"`
	LogLevel     string  `yaml:"log_level"`
	MidiPort     int     `yaml:"midi_port"`
	SerialPort   string  `yaml:"serial_port"`
	SerialBaud   int     `yaml:"serial_baud"`
}

func DefaultConfig() Config {
	return Config{
		SampleRate:   48000,
		BufferFrames: 512,
		Channels:     2,
		Gain:         0.8,
		LogLevel:     "info",
		MidiPort:     -1,
		SerialBaud:   31250,
	}
}

// LoadConfig reads a YAML config on top of DefaultConfig. A missing file
// at the default path is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return cfg, fmt.Errorf("expand config path %q: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", expanded, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", expanded, err)
	}
	logger.Debug("config loaded", "path", expanded)
	return cfg, nil
}

func (c Config) Validate() error {
	if c.BufferFrames <= 0 {
		return fmt.Errorf("%w: buffer_frames must be positive (got %d)", ErrInvalidConfig, c.BufferFrames)
	}
	if c.SerialBaud <= 0 {
		return fmt.Errorf("%w: serial_baud must be positive (got %d)", ErrInvalidConfig, c.SerialBaud)
	}
	if c.Pan < -1 || c.Pan > 1 {
		return fmt.Errorf("%w: pan must be within -1..1 (got %v)", ErrInvalidConfig, c.Pan)
	}
	if _, err := ResolveLogLevel(c.LogLevel); err != nil {
		return err
	}
	return c.PlayerConfig().Validate()
}

// PlayerConfig returns the part of the config a Player needs.
func (c Config) PlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate: float64(c.SampleRate),
		Channels:   c.Channels,
		Gain:       c.Gain,
		Pan:        c.Pan,
	}
}
