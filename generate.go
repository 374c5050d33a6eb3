package variation

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/broady/variation/golang"
	"github.com/broady/variation/ir"
	"github.com/broady/variation/provider"
	"github.com/broady/variation/sink"
)

// Result describes the outcome of a generation run.
type Result struct {
	// Files are the generated files, sorted by path.
	Files []GeneratedFile

	// Removed are the absolute paths of previously generated files that no
	// enum produces anymore. In verify mode they are reported, not removed.
	Removed []string

	// Packages is the number of packages that declare at least one enum.
	Packages int
}

// GeneratedFile is one generated Go file.
type GeneratedFile struct {
	// Path is the absolute path of the file.
	Path string

	// Package is the import path of the package the file belongs to.
	Package string

	// Enum is the enum the file was generated for.
	Enum string

	// Content is the file content.
	Content []byte
}

// Enums returns the names of all enums processed, sorted.
func (r *Result) Enums() []string {
	names := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		names = append(names, f.Enum)
	}
	sort.Strings(names)
	return names
}

// Generate runs the generator and returns the files without writing them.
func Generate(ctx context.Context, cfg *Config) (*Result, error) {
	return run(ctx, cfg, func(string) sink.OutputSink {
		return sink.NewMemorySink()
	})
}

// Write runs the generator and writes each file next to its enum.
func Write(ctx context.Context, cfg *Config) (*Result, error) {
	return run(ctx, cfg, func(dir string) sink.OutputSink {
		return sink.NewFilesystemSink(dir)
	})
}

// Verify runs the generator and compares its output with the files on
// disk. It returns an error wrapping [sink.ErrStale] when any file is
// missing, different, or no longer generated. Nothing is written.
func Verify(ctx context.Context, cfg *Config) (*Result, error) {
	var mu sync.Mutex
	var sinks []*sink.VerifySink

	result, err := run(ctx, cfg, func(dir string) sink.OutputSink {
		s := sink.NewVerifySink(dir)
		mu.Lock()
		sinks = append(sinks, s)
		mu.Unlock()
		return s
	})
	if err != nil {
		return nil, err
	}

	var stale *multierror.Error
	for _, s := range sinks {
		if err := s.Err(); err != nil {
			stale = multierror.Append(stale, err)
		}
	}
	if err := stale.ErrorOrNil(); err != nil {
		return result, multierror.Flatten(err)
	}
	return result, nil
}

// run loads the configured packages and sends the output of each one to the
// sink created for its directory.
func run(ctx context.Context, cfg *Config, newSink func(dir string) sink.OutputSink) (*Result, error) {
	cfg = applyConfigDefaults(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	logger := cfg.Logger

	dir := cfg.Dir
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve dir: %w", err)
		}
		dir = abs
	}

	src := &provider.SourceProvider{Logger: logger}
	pkgs, err := src.Load(ctx, provider.SourceOptions{
		Patterns: cfg.Patterns,
		Dir:      dir,
		Tags:     cfg.Tags,
		Env:      cfg.Env,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var invalid *multierror.Error
	for _, pkg := range pkgs {
		if err := pkg.Validate(); err != nil {
			invalid = multierror.Append(invalid, fmt.Errorf("package %s: %w", pkg.Path, err))
		}
	}
	if err := invalid.ErrorOrNil(); err != nil {
		return nil, multierror.Flatten(err)
	}

	var (
		mu     sync.Mutex
		result = &Result{}
	)
	emitter := &golang.Emitter{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for _, pkg := range pkgs {
		pkg := pkg
		g.Go(func() error {
			files, removed, err := processPackage(gctx, pkg, emitter, newSink(pkg.Dir), cfg.KeepStale, logger)
			if err != nil {
				return fmt.Errorf("package %s: %w", pkg.Path, err)
			}

			mu.Lock()
			defer mu.Unlock()
			result.Files = append(result.Files, files...)
			result.Removed = append(result.Removed, removed...)
			if len(pkg.Enums) > 0 {
				result.Packages++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].Path < result.Files[j].Path })
	sort.Strings(result.Removed)

	logger.Debug("generation complete",
		slog.Int("packages", result.Packages),
		slog.Int("files", len(result.Files)),
		slog.Int("removed", len(result.Removed)))

	return result, nil
}

// processPackage emits the files of one package into out and removes
// generated files that are no longer produced.
func processPackage(ctx context.Context, pkg *ir.Package, emitter *golang.Emitter, out sink.OutputSink, keepStale bool, logger *slog.Logger) ([]GeneratedFile, []string, error) {
	files, err := emitter.Emit(pkg)
	if err != nil {
		return nil, nil, err
	}

	produced := make(map[string]bool, len(files))
	var generated []GeneratedFile
	for _, f := range files {
		if err := out.WriteFile(ctx, f.Name, f.Content); err != nil {
			return nil, nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
		produced[f.Name] = true

		path := filepath.Join(pkg.Dir, f.Name)
		logger.Debug("generated",
			slog.String("file", path),
			slog.String("enum", f.Enum))
		generated = append(generated, GeneratedFile{
			Path:    path,
			Package: pkg.Path,
			Enum:    f.Enum,
			Content: f.Content,
		})
	}

	var removed []string
	remover, canRemove := out.(sink.Remover)
	for _, name := range pkg.Generated {
		if produced[name] || keepStale || !canRemove {
			continue
		}
		if err := remover.RemoveFile(ctx, name); err != nil {
			return nil, nil, fmt.Errorf("remove %s: %w", name, err)
		}
		path := filepath.Join(pkg.Dir, name)
		logger.Debug("stale generated file", slog.String("file", path))
		removed = append(removed, path)
	}

	return generated, removed, nil
}
