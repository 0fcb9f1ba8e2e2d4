package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the complete server configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	OCR     OCRConfig     `toml:"ocr"`
	PDF     PDFConfig     `toml:"pdf"`
	Logging LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Host           string     `toml:"host"`
	Port           int        `toml:"port"`
	MaxUploadBytes int64      `toml:"max_upload_bytes"`
	TempDirectory  string     `toml:"temp_directory"`
	Auth           AuthConfig `toml:"auth"`
	TLS            TLSConfig  `toml:"tls"`
}

type AuthConfig struct {
	Enabled           bool     `toml:"enabled"`
	APIKeys           []string `toml:"api_keys"`
	APIKeyFile        string   `toml:"api_key_file"`
	BasicAuthUser     string   `toml:"basic_auth_user"`
	BasicAuthPassHash string   `toml:"basic_auth_password_hash"`
}

type TLSConfig struct {
	Enabled  bool   `toml:"enabled"`
	CertFile string `toml:"cert_file"`
	KeyFile  string `toml:"key_file"`
}

// OCRConfig controls how the tesseract engine is invoked.
type OCRConfig struct {
	TesseractPath string   `toml:"tesseract_path"`
	Language      string   `toml:"language"`
	OEM           int      `toml:"oem"`
	PSM           int      `toml:"psm"`
	Timeout       Duration `toml:"timeout"`
}

// PDFConfig controls how PDF pages are rasterized before recognition.
type PDFConfig struct {
	PdftoppmPath string   `toml:"pdftoppm_path"`
	DPI          int      `toml:"dpi"`
	Timeout      Duration `toml:"timeout"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration wraps time.Duration for TOML unmarshaling.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads and parses the server configuration from a TOML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.loadSecrets(); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns the configuration with sensible defaults. The OCR
// and PDF defaults mirror the documented external tool invocations, so a
// server started without a config file behaves identically to the defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			MaxUploadBytes: 50 << 20,
		},
		OCR: OCRConfig{
			TesseractPath: "tesseract",
			OEM:           3,
			PSM:           3,
			Timeout:       Duration(120 * time.Second),
		},
		PDF: PDFConfig{
			PdftoppmPath: "pdftoppm",
			DPI:          300,
			Timeout:      Duration(120 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// loadSecrets reads secret values from files.
func (c *Config) loadSecrets() error {
	if c.Server.Auth.APIKeyFile != "" {
		key, err := readSecretFile(c.Server.Auth.APIKeyFile)
		if err != nil && c.Server.Auth.Enabled {
			return fmt.Errorf("api key: %w", err)
		}
		if key != "" {
			c.Server.Auth.APIKeys = append(c.Server.Auth.APIKeys, key)
		}
	}
	return nil
}

func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
