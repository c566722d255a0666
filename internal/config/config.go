// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/mailonfail/internal/ctxlog"
)

// EnvPrefix is prepended to every environment override, e.g. MAILONFAIL_SMTP_HOST.
const EnvPrefix = "MAILONFAIL_"

var (
	// ErrReadFile is returned when the configuration file cannot be read.
	ErrReadFile = errors.New("failed to read configuration file")
	// ErrInvalidYaml is returned when the file is not valid YAML for a Config.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrEnvironment is returned when an environment override cannot be applied.
	ErrEnvironment = errors.New("invalid environment override")
	// ErrInvalidConfig is matched by every *ValidationError.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds the mail server settings used to deliver failure notifications.
type Config struct {
	SMTPHost string `yaml:"smtp_host" env:"SMTP_HOST" validate:"required,hostname_rfc1123"`
	SMTPPort int    `yaml:"smtp_port" env:"SMTP_PORT" validate:"required,min=1,max=65535"`
	User     string `yaml:"user"      env:"USER"      validate:"required"`
	Password string `yaml:"password"  env:"PASSWORD"  validate:"required"`
	From     string `yaml:"from"      env:"FROM"      validate:"required,email"`
	To       string `yaml:"to"        env:"TO"        validate:"required,email"`
}

// LogValue implements slog.LogValuer and leaves the password out.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("smtp_host", c.SMTPHost),
		slog.Int("smtp_port", c.SMTPPort),
		slog.String("user", c.User),
		slog.String("from", c.From),
		slog.String("to", c.To),
	)
}

// ValidationError lists every field of a configuration file that is missing
// or malformed.
type ValidationError struct {
	Path   string
	Fields *multierror.Error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Path, e.Fields.Error())
}

// Unwrap allows errors.Is(err, ErrInvalidConfig).
func (e *ValidationError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.Fields.WrappedErrors()...)
}

// Load reads, overrides from the environment and validates the configuration
// at src. A src containing "::" or "://" is fetched with go-getter, anything
// else is a path on the local filesystem.
func Load(ctx context.Context, src string) (*Config, error) {
	data, err := read(ctx, src)
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := validate(src, cfg); err != nil {
		return nil, err
	}

	ctxlog.Debug(ctx, "configuration loaded", "src", src, "config", cfg)

	return cfg, nil
}

// Parse decodes YAML (or JSON) and applies environment overrides.
// It does not validate the result.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}

	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidYaml, yaml.FormatError(err, false, true))
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.Join(ErrEnvironment, err)
	}

	return cfg, nil
}

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by the names users write in the file.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}

		return name
	})

	return v
}

func validate(path string, cfg *Config) error {
	err := structValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Join(ErrInvalidConfig, err)
	}

	fields := &multierror.Error{ErrorFormat: listFormat}

	for _, fe := range verrs {
		fields = multierror.Append(fields, fieldError(fe))
	}

	return &ValidationError{Path: path, Fields: fields}
}

func listFormat(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}

	return strings.Join(msgs, "; ")
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "email":
		return fmt.Errorf("%s must be an e-mail address", fe.Field())
	case "hostname_rfc1123":
		return fmt.Errorf("%s must be a host name or IP address", fe.Field())
	case "min", "max":
		return fmt.Errorf("%s must be between 1 and 65535", fe.Field())
	default:
		return fmt.Errorf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}
