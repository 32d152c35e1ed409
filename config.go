package vehicletrack

import (
	_ "embed"
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

//go:embed default.ini
var defaultINI []byte

// Config holds the tuning parameters as a flat section -> key -> value
// mapping backed by an INI file
type Config struct {
	file *ini.File
}

// LoadConfig reads the INI configuration file at path
func LoadConfig(path string) (*Config, error) {

	f, err := ini.Load(path)

	if err != nil {
		return nil, errors.Wrapf(err, "error loading config file %s", path)
	}

	return &Config{file: f}, nil
}

// ParseConfig parses INI formatted configuration data
func ParseConfig(data []byte) (*Config, error) {

	f, err := ini.Load(data)

	if err != nil {
		return nil, errors.Wrap(err, "error parsing config")
	}

	return &Config{file: f}, nil
}

// DefaultConfig returns the built in configuration tuned for 1280x720 video
func DefaultConfig() *Config {
	cfg, err := ParseConfig(defaultINI)

	if err != nil {
		// embedded file is fixed at compile time
		panic(err)
	}

	return cfg
}

// Has returns true if the key exists in section
func (c *Config) Has(section, key string) bool {
	sec, err := c.file.GetSection(section)

	if err != nil {
		return false
	}

	return sec.HasKey(key)
}

// String returns the raw value of key in section, or a ConfigError if it
// does not exist
func (c *Config) String(section, key string) (string, error) {

	sec, err := c.file.GetSection(section)

	if err != nil {
		return "", NewConfigError(section, "", "section not defined")
	}

	if !sec.HasKey(key) {
		return "", NewConfigError(section, key, "key not defined")
	}

	return strings.TrimSpace(sec.Key(key).String()), nil
}

// Int returns the integer value of key in section
func (c *Config) Int(section, key string) (int, error) {

	val, err := c.String(section, key)

	if err != nil {
		return 0, err
	}

	i, err := strconv.Atoi(val)

	if err != nil {
		return 0, NewConfigError(section, key, "invalid integer %q", val)
	}

	return i, nil
}

// Float returns the floating point value of key in section
func (c *Config) Float(section, key string) (float64, error) {

	val, err := c.String(section, key)

	if err != nil {
		return 0, err
	}

	f, err := strconv.ParseFloat(val, 64)

	if err != nil {
		return 0, NewConfigError(section, key, "invalid number %q", val)
	}

	return f, nil
}

// Strings returns the comma delimited list value of key in section
func (c *Config) Strings(section, key string) ([]string, error) {

	val, err := c.String(section, key)

	if err != nil {
		return nil, err
	}

	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return nil, NewConfigError(section, key, "empty list")
	}

	return out, nil
}

// Point returns the "x,y" value of key in section as a point.  Window sizes
// use the same format with X as width and Y as height.
func (c *Config) Point(section, key string) (image.Point, error) {

	parts, err := c.Strings(section, key)

	if err != nil {
		return image.Point{}, err
	}

	if len(parts) != 2 {
		return image.Point{}, NewConfigError(section, key,
			"expected x,y pair, got %d values", len(parts))
	}

	x, errX := strconv.Atoi(parts[0])
	y, errY := strconv.Atoi(parts[1])

	if errX != nil || errY != nil {
		return image.Point{}, NewConfigError(section, key,
			"invalid integer pair %q", strings.Join(parts, ","))
	}

	return image.Pt(x, y), nil
}

// Set overrides the value of an existing key.  Only keys already defined in
// the configuration can be set.
func (c *Config) Set(section, key, value string) error {

	sec, err := c.file.GetSection(section)

	if err != nil {
		return NewConfigError(section, "", "section not defined")
	}

	if !sec.HasKey(key) {
		return NewConfigError(section, key, "key not defined")
	}

	sec.Key(key).SetValue(value)
	return nil
}

// WriteTo writes the configuration in INI format to w
func (c *Config) WriteTo(w io.Writer) (int64, error) {
	return c.file.WriteTo(w)
}
