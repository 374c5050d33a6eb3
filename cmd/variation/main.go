// Command variation generates accessor methods for sum-type enums.
//
// Typical use is from go generate, next to an enum declaration:
//
//	//go:generate variation
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/broady/variation/cmd/variation/internal/check"
	"github.com/broady/variation/cmd/variation/internal/gen"
)

type CLI struct {
	Verbose bool `help:"Log debug output to stderr." short:"v" env:"VARIATION_VERBOSE"`

	Gen     gen.Cmd    `cmd:"" default:"withargs" help:"Generate accessor methods for enums (default command)."`
	Check   check.Cmd  `cmd:"" help:"Verify generated files are up to date without writing them."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("variation"),
		kong.Description("Generate Is, As, AsMut and Into accessors for Go sum-type enums."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	kctx.BindTo(ctx, (*context.Context)(nil))

	err := kctx.Run(logger)
	stop()
	kctx.FatalIfErrorf(err)
}
