package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
)

const (
	DefaultConfigPath = "/etc/casino/config"
	ConfigFileName    = "casino.yml"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "console"}
)

// CasinoConfig holds all casino configuration settings
type CasinoConfig struct {
	// LogLevel is the minimum level of emitted log events
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogFormat is json or console
	LogFormat string `yaml:"log_format" json:"log_format"`

	// LogOutput is stdout, stderr or a file path
	LogOutput string `yaml:"log_output" json:"log_output"`

	// BindAddress is the address the HTTP server listens on
	BindAddress string `yaml:"bind_address" json:"bind_address"`

	// Port is the HTTP server port
	Port int `yaml:"port" json:"port"`

	// AuditEnabled turns the RFC5424 audit trail on or off
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// Authenticators is the local chain, in configuration order
	Authenticators Group `yaml:"authenticators" json:"authenticators"`

	// ExternalAuthenticators is the external chain, in configuration order
	ExternalAuthenticators Group `yaml:"external_authenticators" json:"external_authenticators"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors CasinoConfig with pointers where the zero value is a
// legitimate setting
type fileConfig struct {
	LogLevel               string `yaml:"log_level"`
	LogFormat              string `yaml:"log_format"`
	LogOutput              string `yaml:"log_output"`
	BindAddress            string `yaml:"bind_address"`
	Port                   int    `yaml:"port"`
	AuditEnabled           *bool  `yaml:"audit_enabled"`
	Authenticators         *Group `yaml:"authenticators"`
	ExternalAuthenticators *Group `yaml:"external_authenticators"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// newDefault returns a config with default values
func newDefault() *CasinoConfig {
	return &CasinoConfig{
		LogLevel:     "info",
		LogFormat:    "json",
		LogOutput:    "stderr",
		BindAddress:  "0.0.0.0",
		Port:         8000,
		AuditEnabled: true,
		sources:      make(map[string]string),
	}
}

// Load loads configuration from the file in CASINO_CONFIG_PATH and from
// environment variables. Environment variables take precedence over file values.
func Load() (*CasinoConfig, error) {
	configPath := os.Getenv("CASINO_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return LoadFile(filepath.Join(configPath, ConfigFileName))
}

// LoadFile loads configuration from path and from environment variables.
// A missing file leaves the defaults in place.
func LoadFile(path string) (*CasinoConfig, error) {
	config := newDefault()
	config.configFilePath = path

	// Initialize all sources as "default"
	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		config.applyFileConfig(&file)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"log_level", "log_format", "log_output", "bind_address", "port",
		"audit_enabled", "authenticators", "external_authenticators",
	}
}

func (c *CasinoConfig) applyFileConfig(file *fileConfig) {
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
		c.sources["log_level"] = "file"
	}
	if file.LogFormat != "" {
		c.LogFormat = file.LogFormat
		c.sources["log_format"] = "file"
	}
	if file.LogOutput != "" {
		c.LogOutput = file.LogOutput
		c.sources["log_output"] = "file"
	}
	if file.BindAddress != "" {
		c.BindAddress = file.BindAddress
		c.sources["bind_address"] = "file"
	}
	if file.Port != 0 {
		c.Port = file.Port
		c.sources["port"] = "file"
	}
	if file.AuditEnabled != nil {
		c.AuditEnabled = *file.AuditEnabled
		c.sources["audit_enabled"] = "file"
	}
	if file.Authenticators != nil {
		c.Authenticators = *file.Authenticators
		c.sources["authenticators"] = "file"
	}
	if file.ExternalAuthenticators != nil {
		c.ExternalAuthenticators = *file.ExternalAuthenticators
		c.sources["external_authenticators"] = "file"
	}
}

func (c *CasinoConfig) applyEnvConfig() {
	if val := os.Getenv("CASINO_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
		c.sources["log_level"] = "environment"
	}
	if val := os.Getenv("CASINO_LOG_FORMAT"); val != "" {
		c.LogFormat = strings.ToLower(val)
		c.sources["log_format"] = "environment"
	}
	if val := os.Getenv("CASINO_LOG_OUTPUT"); val != "" {
		c.LogOutput = val
		c.sources["log_output"] = "environment"
	}
	if val := os.Getenv("CASINO_BIND_ADDRESS"); val != "" {
		c.BindAddress = val
		c.sources["bind_address"] = "environment"
	}
	if val := os.Getenv("CASINO_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.Port = i
			c.sources["port"] = "environment"
		}
	}
	if val := os.Getenv("CASINO_AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = val == "true" || val == "1"
		c.sources["audit_enabled"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *CasinoConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *CasinoConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// Address returns the host:port the server listens on
func (c *CasinoConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.BindAddress, c.Port)
}

// Entries returns the configured entries of chain, in order. It makes the
// configuration usable as an authenticator.EntrySource.
func (c *CasinoConfig) Entries(chain authenticator.ChainType) []authenticator.Entry {
	switch chain {
	case authenticator.Local:
		return c.Authenticators
	case authenticator.External:
		return c.ExternalAuthenticators
	default:
		return nil
	}
}

// Validate validates the configuration
func (c *CasinoConfig) Validate() error {
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level value: %s", c.LogLevel)
	}
	if !contains(validLogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log_format value: %s", c.LogFormat)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port value: %d", c.Port)
	}

	for _, chain := range authenticator.ChainTypes() {
		for _, entry := range c.Entries(chain) {
			if entry.Record && entry.Class == "" && entry.Authenticator == "" {
				return fmt.Errorf("%s.%s: one of class or authenticator is required", chain, entry.Name)
			}
		}
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *CasinoConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "log_format", Value: c.LogFormat, Source: c.Source("log_format")},
		{Name: "log_output", Value: c.LogOutput, Source: c.Source("log_output")},
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "port", Value: strconv.Itoa(c.Port), Source: c.Source("port")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
		{Name: "authenticators", Value: strings.Join(c.Authenticators.Names(), ","), Source: c.Source("authenticators")},
		{Name: "external_authenticators", Value: strings.Join(c.ExternalAuthenticators.Names(), ","), Source: c.Source("external_authenticators")},
	}
}

// FormatText returns a text representation of the configuration
func (c *CasinoConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *CasinoConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
