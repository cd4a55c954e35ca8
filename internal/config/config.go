package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultBufferSize   = 256
	DefaultBaud         = 115200
	DefaultReadTimeout  = "1s"
	DefaultServerName   = "meatpackd"
	DefaultServerAddr   = ":9300"
	DefaultMaxBodyBytes = 8 << 20

	// one raw byte can become three packed bytes
	minPackerBuffer   = 3
	minUnpackerBuffer = 2
)

type Config struct {
	Packer   PackerConfig   `toml:"packer"`
	Unpacker UnpackerConfig `toml:"unpacker"`
	Serial   SerialConfig   `toml:"serial"`
	Server   ServerConfig   `toml:"server"`
}

type PackerConfig struct {
	BufferSize      int  `toml:"buffer_size"`
	StripComments   bool `toml:"strip_comments"`
	StripWhitespace bool `toml:"strip_whitespace"`
}

type UnpackerConfig struct {
	BufferSize int `toml:"buffer_size"`
}

type SerialConfig struct {
	Port        string `toml:"port"`
	Baud        int    `toml:"baud"`
	ReadTimeout string `toml:"read_timeout"`
}

type ServerConfig struct {
	Name         string   `toml:"name"`
	Addr         string   `toml:"addr"`
	CorsOrigins  []string `toml:"cors_origins"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
}

func Default() Config {
	return Config{
		Packer:   PackerConfig{BufferSize: DefaultBufferSize},
		Unpacker: UnpackerConfig{BufferSize: DefaultBufferSize},
		Serial: SerialConfig{
			Baud:        DefaultBaud,
			ReadTimeout: DefaultReadTimeout,
		},
		Server: ServerConfig{
			Name:         DefaultServerName,
			Addr:         DefaultServerAddr,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func Validate(cfg Config) error {
	if err := ValidatePacker(cfg.Packer); err != nil {
		return fmt.Errorf("packer invalid: %w", err)
	}
	if err := ValidateUnpacker(cfg.Unpacker); err != nil {
		return fmt.Errorf("unpacker invalid: %w", err)
	}
	if err := ValidateSerial(cfg.Serial); err != nil {
		return fmt.Errorf("serial invalid: %w", err)
	}
	if err := ValidateServer(cfg.Server); err != nil {
		return fmt.Errorf("server invalid: %w", err)
	}
	return nil
}

func ValidatePacker(cfg PackerConfig) error {
	if cfg.BufferSize < minPackerBuffer {
		return fmt.Errorf("buffer_size must be at least %d, got %d", minPackerBuffer, cfg.BufferSize)
	}
	return nil
}

func ValidateUnpacker(cfg UnpackerConfig) error {
	if cfg.BufferSize < minUnpackerBuffer {
		return fmt.Errorf("buffer_size must be at least %d, got %d", minUnpackerBuffer, cfg.BufferSize)
	}
	return nil
}

// ValidateSerial leaves port optional; it is checked when a port is opened.
func ValidateSerial(cfg SerialConfig) error {
	if cfg.Baud <= 0 {
		return fmt.Errorf("baud must be positive")
	}
	if _, err := cfg.Timeout(); err != nil {
		return err
	}
	return nil
}

func ValidateServer(cfg ServerConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("addr is required")
	}
	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive")
	}
	return nil
}

// Timeout parses ReadTimeout. An empty value means reads block.
func (c SerialConfig) Timeout() (time.Duration, error) {
	if strings.TrimSpace(c.ReadTimeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.ReadTimeout)
	if err != nil {
		return 0, fmt.Errorf("read_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("read_timeout must not be negative")
	}
	return d, nil
}
