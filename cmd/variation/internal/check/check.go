package check

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/broady/variation"
)

type Cmd struct {
	Packages []string `arg:"" optional:"" help:"Package patterns to scan (default: current directory)."`
	Dir      string   `help:"Resolve package patterns in this directory." short:"C" type:"existingdir"`
	Tags     []string `help:"Build tags to apply when selecting files." env:"VARIATION_TAGS" sep:","`
}

func (c *Cmd) Run(ctx context.Context, logger *slog.Logger) error {
	result, err := variation.Verify(ctx, &variation.Config{
		Patterns: c.Packages,
		Dir:      c.Dir,
		Tags:     c.Tags,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("%w\nrun variation gen to update", err)
	}

	fmt.Printf("✓ %d enums in %d packages\n", len(result.Files), result.Packages)
	fmt.Println("✓ All generated files up to date")
	return nil
}
