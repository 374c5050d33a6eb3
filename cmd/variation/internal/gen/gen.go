package gen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/broady/variation"
)

type Cmd struct {
	Packages  []string `arg:"" optional:"" help:"Package patterns to scan (default: current directory)."`
	Dir       string   `help:"Resolve package patterns in this directory." short:"C" type:"existingdir"`
	Tags      []string `help:"Build tags to apply when selecting files." env:"VARIATION_TAGS" sep:","`
	KeepStale bool     `help:"Keep generated files that no enum produces anymore."`
}

func (c *Cmd) Run(ctx context.Context, logger *slog.Logger) error {
	result, err := variation.Write(ctx, &variation.Config{
		Patterns:  c.Packages,
		Dir:       c.Dir,
		Tags:      c.Tags,
		KeepStale: c.KeepStale,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	if len(result.Files) == 0 && len(result.Removed) == 0 {
		fmt.Fprintln(os.Stderr, "variation: no //variation:enum directives found")
		return nil
	}
	for _, f := range result.Files {
		fmt.Printf("✓ %s: %s\n", relPath(f.Path), f.Enum)
	}
	for _, path := range result.Removed {
		fmt.Printf("✓ removed %s\n", relPath(path))
	}
	return nil
}

// relPath shortens path relative to the working directory when possible.
func relPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil {
		return path
	}
	return rel
}
