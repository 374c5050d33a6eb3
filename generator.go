package variation

import (
	"context"
	"log/slog"
)

// Generator provides a fluent API over [Config].
// Create one with FromPackages and finish with Write, Verify or Generate.
//
// Example, from a program run by go generate:
//
//	_, err := variation.FromPackages("./...").
//	    Tags("integration").
//	    Write(ctx)
type Generator struct {
	cfg Config
}

// FromPackages creates a Generator for the given package patterns.
// With no patterns, the package in the current directory is used.
func FromPackages(patterns ...string) *Generator {
	return &Generator{cfg: Config{Patterns: patterns}}
}

// Dir sets the directory the package patterns are resolved in.
func (g *Generator) Dir(dir string) *Generator {
	g.cfg.Dir = dir
	return g
}

// Tags adds build tags used when selecting source files.
func (g *Generator) Tags(tags ...string) *Generator {
	g.cfg.Tags = append(g.cfg.Tags, tags...)
	return g
}

// Env sets the environment of the go command used for loading.
func (g *Generator) Env(env ...string) *Generator {
	g.cfg.Env = env
	return g
}

// Concurrency bounds how many packages are processed at once.
func (g *Generator) Concurrency(n int) *Generator {
	g.cfg.Concurrency = n
	return g
}

// KeepStale leaves generated files that no enum produces anymore.
func (g *Generator) KeepStale() *Generator {
	g.cfg.KeepStale = true
	return g
}

// Logger sets the logger for progress output.
func (g *Generator) Logger(logger *slog.Logger) *Generator {
	g.cfg.Logger = logger
	return g
}

// Config returns a copy of the accumulated configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// Write generates and writes files next to their enums.
// This is a terminal operation.
func (g *Generator) Write(ctx context.Context) (*Result, error) {
	return Write(ctx, &g.cfg)
}

// Verify reports files on disk that differ from what would be generated.
// This is a terminal operation.
func (g *Generator) Verify(ctx context.Context) (*Result, error) {
	return Verify(ctx, &g.cfg)
}

// Generate returns generated files in memory without writing to disk.
// This is a terminal operation.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	return Generate(ctx, &g.cfg)
}
