package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Options represents the top-level implicits.yaml configuration.
type Options struct {
	// MaxDepth bounds the nesting of constructor-argument resolution.
	// Deeper chains are reported as cyclic instance dependencies.
	MaxDepth int `yaml:"max_depth,omitempty"`

	// InstancesPackage is the conventional subpackage searched for instances
	// of a type or capability (e.g. com.data.instances).
	InstancesPackage string `yaml:"instances_package,omitempty"`

	// CompanionName is the name of the singleton scope attached to a type.
	CompanionName string `yaml:"companion_name,omitempty"`

	// Color is one of auto, always, never.
	Color string `yaml:"color,omitempty"`

	Report ReportOptions `yaml:"report,omitempty"`
}

// ReportOptions configures the SQLite resolution report.
type ReportOptions struct {
	// Path of the SQLite database. Empty disables the report.
	Path string `yaml:"path,omitempty"`
}

// Default returns the options used when no config file is found.
func Default() *Options {
	opts := &Options{}
	opts.setDefaults()
	return opts
}

// LoadOptions reads and parses an implicits.yaml file.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseOptions(data, path)
}

// ParseOptions parses implicits.yaml content from bytes.
// The path argument is used only for error messages.
func ParseOptions(data []byte, path string) (*Options, error) {
	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := opts.validate(path); err != nil {
		return nil, err
	}
	opts.setDefaults()
	if opts.Report.Path != "" && !filepath.IsAbs(opts.Report.Path) {
		opts.Report.Path = filepath.Join(filepath.Dir(path), opts.Report.Path)
	}
	return &opts, nil
}

// FindOptions searches for implicits.yaml starting from dir and walking up
// to parent directories.
// Returns the path to the config file, or empty string if none was found.
func FindOptions(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range []string{DefaultConfigName, AlternateConfigName} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (o *Options) validate(path string) error {
	if o.MaxDepth < 0 {
		return fmt.Errorf("%s: max_depth must not be negative, got %d", path, o.MaxDepth)
	}
	switch o.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("%s: color must be one of auto, always, never, got %q", path, o.Color)
	}
	if o.InstancesPackage != "" && !isIdentifier(o.InstancesPackage) {
		return fmt.Errorf("%s: instances_package %q is not an identifier", path, o.InstancesPackage)
	}
	if o.CompanionName != "" && !isIdentifier(o.CompanionName) {
		return fmt.Errorf("%s: companion_name %q is not an identifier", path, o.CompanionName)
	}
	return nil
}

func (o *Options) setDefaults() {
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.InstancesPackage == "" {
		o.InstancesPackage = DefaultInstancesPackage
	}
	if o.CompanionName == "" {
		o.CompanionName = DefaultCompanionName
	}
	if o.Color == "" {
		o.Color = "auto"
	}
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
