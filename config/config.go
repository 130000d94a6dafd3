/*
Package config loads the YAML configuration of a spanroutes server and builds the
negotiator set and logger it describes.

	server:
	  address: ":8080"
	logging:
	  level: info
	  format: json
	negotiators:
	  - name: json
	    default_charset: utf-8
	  - name: xml
	    produces: application/xml

The order of negotiators is the order handed to the engine, so the first entry is the
default negotiator.
*/
package config

import (
	"os"
	"strings"

	"github.com/illuscio-dev/spanroutes-go/encoding"
	"github.com/illuscio-dev/spanroutes-go/mimetype"
	"go.uber.org/multierr"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// DefaultAddress is the address served on when none is configured.
const DefaultAddress = ":8080"

// Config is the root of the configuration file.
type Config struct {
	Server      Server             `yaml:"server"`
	Logging     Logging            `yaml:"logging"`
	Negotiators []NegotiatorConfig `yaml:"negotiators"`
}

// Server holds the listener settings.
type Server struct {
	Address string `yaml:"address"`
}

/*
NegotiatorConfig declares one negotiator. Name is a factory name from
encoding.FactoryNames(). The remaining fields are optional and override the
negotiator's own declared types.
*/
type NegotiatorConfig struct {
	Name           string `yaml:"name"`
	DefaultCharset string `yaml:"default_charset"`
	Accepts        string `yaml:"accepts"`
	Produces       string `yaml:"produces"`
}

// Default returns a configuration serving JSON only.
func Default() *Config {
	return &Config{
		Server:      Server{Address: DefaultAddress},
		Logging:     DefaultLogging(),
		Negotiators: []NegotiatorConfig{{Name: "json"}},
	}
}

// Parse reads a configuration from YAML. Missing sections keep their defaults and
// unknown keys are an error.
func Parse(data []byte) (*Config, error) {
	config := Default()
	config.Negotiators = nil

	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return nil, xerrors.Errorf("error parsing config: %w", err)
	}
	if len(config.Negotiators) == 0 {
		config.Negotiators = Default().Negotiators
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("error reading config file %v: %w", path, err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, xerrors.Errorf("config file %v: %w", path, err)
	}
	return config, nil
}

// Validate checks every section and reports every problem found, each naming the
// offending entry.
func (config *Config) Validate() error {
	var errs error

	if strings.TrimSpace(config.Server.Address) == "" {
		errs = multierr.Append(errs, xerrors.New("server.address cannot be blank"))
	}

	if err := config.Logging.Validate(); err != nil {
		errs = multierr.Append(errs, xerrors.Errorf("logging: %w", err))
	}

	if len(config.Negotiators) == 0 {
		errs = multierr.Append(errs, xerrors.New("at least one negotiator must be configured"))
	}

	seen := make(map[string]bool, len(config.Negotiators))
	for index, negotiator := range config.Negotiators {
		if _, err := negotiator.options(); err != nil {
			errs = multierr.Append(errs, xerrors.Errorf(
				"negotiators[%v] (%v): %w", index, negotiator.Name, err,
			))
		}
		if seen[negotiator.Name] {
			errs = multierr.Append(errs, xerrors.Errorf(
				"negotiators[%v]: %v is configured twice", index, negotiator.Name,
			))
		}
		seen[negotiator.Name] = true
	}

	return errs
}

// BuildNegotiators builds the configured negotiators, in order.
func (config *Config) BuildNegotiators() ([]encoding.Negotiator, error) {
	negotiators := make([]encoding.Negotiator, 0, len(config.Negotiators))

	for index, negotiatorConfig := range config.Negotiators {
		negotiator, err := negotiatorConfig.Build()
		if err != nil {
			return nil, xerrors.Errorf(
				"negotiators[%v] (%v): %w", index, negotiatorConfig.Name, err,
			)
		}
		negotiators = append(negotiators, negotiator)
	}

	return negotiators, nil
}

// Build creates the negotiator with the factory registered under Name.
func (negotiatorConfig NegotiatorConfig) Build() (encoding.Negotiator, error) {
	factory, ok := encoding.LookupFactory(negotiatorConfig.Name)
	if !ok {
		return nil, xerrors.Errorf(
			"unknown negotiator %q, expected one of %v",
			negotiatorConfig.Name,
			strings.Join(encoding.FactoryNames(), ", "),
		)
	}

	opts, err := negotiatorConfig.options()
	if err != nil {
		return nil, err
	}
	return factory(opts...)
}

func (negotiatorConfig NegotiatorConfig) options() ([]encoding.NegotiatorOption, error) {
	if _, ok := encoding.LookupFactory(negotiatorConfig.Name); !ok {
		return nil, xerrors.Errorf(
			"unknown negotiator %q, expected one of %v",
			negotiatorConfig.Name,
			strings.Join(encoding.FactoryNames(), ", "),
		)
	}

	var opts []encoding.NegotiatorOption

	if negotiatorConfig.DefaultCharset != "" {
		charset, err := mimetype.LookupCharset(negotiatorConfig.DefaultCharset)
		if err != nil {
			return nil, xerrors.Errorf("default_charset: %w", err)
		}
		opts = append(opts, encoding.WithDefaultCharset(charset))
	}

	if negotiatorConfig.Accepts != "" {
		accepts, err := mimetype.Parse(negotiatorConfig.Accepts)
		if err != nil {
			return nil, xerrors.Errorf("accepts: %w", err)
		}
		opts = append(opts, encoding.WithAccepts(accepts))
	}

	if negotiatorConfig.Produces != "" {
		produces, err := mimetype.Parse(negotiatorConfig.Produces)
		if err != nil {
			return nil, xerrors.Errorf("produces: %w", err)
		}
		opts = append(opts, encoding.WithProduces(produces))
	}

	return opts, nil
}
