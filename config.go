package variation

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds the configuration for a generation run.
type Config struct {
	// Patterns select the packages to process, in go command syntax.
	// e.g. []string{"./..."}
	// Default: []string{"."}
	Patterns []string `validate:"min=1,dive,required"`

	// Dir is the directory patterns are resolved in.
	// Default: the current directory.
	Dir string

	// Tags are build tags used when selecting source files.
	// e.g. []string{"integration"}
	Tags []string `validate:"dive,required"`

	// Env overrides the environment of the go command used for loading.
	Env []string

	// Concurrency bounds how many packages are emitted and written at once.
	// Default: GOMAXPROCS.
	Concurrency int `validate:"gte=0"`

	// KeepStale leaves previously generated files alone when no enum
	// produces them anymore. By default they are removed.
	KeepStale bool

	// Logger receives progress output. Default: slog.Default().
	Logger *slog.Logger
}

var validate = validator.New()

// applyConfigDefaults returns a copy of cfg with defaults filled in.
func applyConfigDefaults(cfg *Config) *Config {
	result := Config{}
	if cfg != nil {
		result = *cfg
	}

	if len(result.Patterns) == 0 {
		result.Patterns = []string{"."}
	}
	if result.Concurrency == 0 {
		result.Concurrency = runtime.GOMAXPROCS(0)
	}
	if result.Logger == nil {
		result.Logger = slog.Default()
	}

	return &result
}

// validateConfig reports invalid settings as a single error.
func validateConfig(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		messages = append(messages, ve.Namespace()+": "+formatValidationError(ve))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "must not be empty"
	case "min":
		return fmt.Sprintf("must have at least %s element(s)", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
