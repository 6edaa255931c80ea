// Package config loads and validates the inventario YAML configuration.
// It applies defaults so the server can rely on fully populated values.
package config

import (
	"errors"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// AppConfig holds warehouse option lists. These are startup constants:
// they are read once at boot and are not editable through the UI.
type AppConfig struct {
	Suppliers []string `yaml:"suppliers"`
	Machines  []string `yaml:"machines"`
}

// Config mirrors the inventario.yaml schema.
type Config struct {
	Log  LogConfig  `yaml:"log"`
	DB   DBConfig   `yaml:"db"`
	HTTP HTTPConfig `yaml:"http"`
	App  AppConfig  `yaml:"app"`
}

// DefaultSuppliers is the fixed supplier list used when the config does
// not override it.
var DefaultSuppliers = []string{"GASA", "TERNIUM"}

// DefaultMachines is the fixed machine list used when the config does
// not override it.
var DefaultMachines = []string{
	"TR-01", "TR-02", "TR-03", "TR-04", "TR-05", "TR-06",
	"TR-07", "TR-08", "TR-09", "ESTRIBO",
}

// Load reads a YAML config file, applies defaults, and validates it.
// It returns a fully populated Config or a descriptive error.
func Load(path string) (Config, error) {
	var c Config
	if path == "" {
		return c, errors.New("config path is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	ApplyDefaults(&c)
	if err := validate(&c); err != nil {
		return Config{}, err
	}
	c.DB.Path = strings.TrimSpace(c.DB.Path)
	return c, nil
}

// ApplyDefaults populates zero-values with sane defaults.
func ApplyDefaults(c *Config) {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.DB.Path == "" {
		c.DB.Path = "./inventario.db"
	}
	if c.HTTP.Bind == "" {
		c.HTTP.Bind = "127.0.0.1"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 5000
	}
	if len(c.App.Suppliers) == 0 {
		c.App.Suppliers = append([]string(nil), DefaultSuppliers...)
	}
	if len(c.App.Machines) == 0 {
		c.App.Machines = append([]string(nil), DefaultMachines...)
	}
}

// validate performs basic sanity checks for required fields and ranges.
// It does not mutate the config.
func validate(c *Config) error {
	if strings.TrimSpace(c.Log.Level) == "" {
		return errors.New("log.level is required")
	}
	if c.DB.Path == "" {
		return errors.New("db.path is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return errors.New("http.port is invalid")
	}
	for _, s := range c.App.Suppliers {
		if strings.TrimSpace(s) == "" {
			return errors.New("app.suppliers contains an empty entry")
		}
	}
	for _, m := range c.App.Machines {
		if strings.TrimSpace(m) == "" {
			return errors.New("app.machines contains an empty entry")
		}
	}
	return nil
}
