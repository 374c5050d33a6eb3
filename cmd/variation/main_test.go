package main

import (
	"os"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("variation"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	return cli, kctx
}

func TestCLI_Parse(t *testing.T) {
	for _, env := range []string{"VARIATION_TAGS", "VARIATION_VERBOSE"} {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}

	tests := []struct {
		name     string
		args     []string
		command  string
		packages []string
		tags     []string
		dir      string
		verbose  bool
	}{
		{name: "no arguments runs gen", args: nil, command: "gen"},
		{name: "bare patterns run gen", args: []string{"./..."}, command: "gen <packages>", packages: []string{"./..."}},
		{name: "explicit gen", args: []string{"gen", "./a", "./b"}, command: "gen <packages>", packages: []string{"./a", "./b"}},
		{name: "tags", args: []string{"gen", "--tags", "x,y"}, command: "gen", tags: []string{"x", "y"}},
		{name: "dir", args: []string{"gen", "-C", "."}, command: "gen", dir: "."},
		{name: "verbose", args: []string{"-v", "check"}, command: "check", verbose: true},
		{name: "check with patterns", args: []string{"check", "./..."}, command: "check <packages>", packages: []string{"./..."}},
		{name: "version", args: []string{"version"}, command: "version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, kctx := parse(t, tt.args...)
			if kctx.Command() != tt.command {
				t.Errorf("command = %q, want %q", kctx.Command(), tt.command)
			}
			if cli.Verbose != tt.verbose {
				t.Errorf("verbose = %v, want %v", cli.Verbose, tt.verbose)
			}

			var packages, tags []string
			var dir string
			switch {
			case strings.HasPrefix(tt.command, "gen"):
				packages, tags, dir = cli.Gen.Packages, cli.Gen.Tags, cli.Gen.Dir
			case strings.HasPrefix(tt.command, "check"):
				packages, tags, dir = cli.Check.Packages, cli.Check.Tags, cli.Check.Dir
			}
			if strings.Join(packages, " ") != strings.Join(tt.packages, " ") {
				t.Errorf("packages = %v, want %v", packages, tt.packages)
			}
			if strings.Join(tags, ",") != strings.Join(tt.tags, ",") {
				t.Errorf("tags = %v, want %v", tags, tt.tags)
			}
			if tt.dir != "" && dir == "" {
				t.Errorf("dir not set")
			}
		})
	}
}

func TestCLI_TagsFromEnv(t *testing.T) {
	t.Setenv("VARIATION_TAGS", "integration,linux")
	cli, _ := parse(t, "gen")
	if strings.Join(cli.Gen.Tags, ",") != "integration,linux" {
		t.Errorf("tags = %v", cli.Gen.Tags)
	}
}

func TestVersion(t *testing.T) {
	v := Version()
	if v == "" {
		t.Fatal("empty version")
	}
	if !strings.Contains(v, "go") {
		t.Errorf("version %q should include the Go version", v)
	}
}
