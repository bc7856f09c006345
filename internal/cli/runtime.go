package cli

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formimport/internal/config"
	"github.com/goliatone/go-formimport/pkg/compiler"
	"github.com/goliatone/go-formimport/pkg/compiler/markup"
	"github.com/goliatone/go-formimport/pkg/compiler/structured"
	"github.com/goliatone/go-formimport/pkg/duplicate"
	"github.com/goliatone/go-formimport/pkg/orchestrator"
	"github.com/goliatone/go-formimport/pkg/remote"
	"github.com/goliatone/go-formimport/pkg/repository"
	"github.com/goliatone/go-formimport/pkg/repository/memory"
	"github.com/goliatone/go-formimport/pkg/repository/sqlite"
	"github.com/goliatone/go-formimport/pkg/trace"
)

// runtime is the per-invocation wiring built from flags and config.
type runtime struct {
	opts    *RootOptions
	cfg     config.Config
	logger  *slog.Logger
	emitter trace.Emitter
	closers []io.Closer
}

func newRuntime(opts *RootOptions, cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.Read(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log, opts.Verbose)
	return &runtime{
		opts:    opts,
		cfg:     cfg,
		logger:  logger,
		emitter: trace.NewSlogEmitter(logger),
	}, nil
}

func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func (r *runtime) directory() (remote.Directory, error) {
	if r.opts.Directory != nil {
		return r.opts.Directory, nil
	}
	remoteCfg := r.cfg.Remote
	switch {
	case remoteCfg.Dir != "":
		return remote.NewFileDirectory(os.DirFS(remoteCfg.Dir)), nil
	case remoteCfg.BaseURL != "":
		return remote.NewHTTPDirectory(remote.HTTPOptions{
			BaseURL:      remoteCfg.BaseURL,
			APIKey:       remoteCfg.APIKey,
			APIKeyHeader: remoteCfg.APIKeyHeader,
			Retry: remote.RetryOptions{
				Timeout:     remoteCfg.Timeout,
				MaxAttempts: remoteCfg.MaxAttempts,
			},
		})
	default:
		return nil, &config.Error{
			Code: config.ErrorCodeValidationFailed,
			Path: r.opts.ConfigPath,
			Err:  &config.ValidationError{Problems: []string{"remote.base_url or remote.dir is required"}},
		}
	}
}

func (r *runtime) store() (repository.Store, error) {
	if r.opts.Store != nil {
		return r.opts.Store, nil
	}
	if r.cfg.Store.Driver == config.DriverMemory {
		return memory.New(), nil
	}
	store, err := sqlite.Open(r.cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	r.closers = append(r.closers, store)
	r.logger.Debug("opened sqlite store", slog.String("path", r.cfg.Store.Path))
	return store, nil
}

func (r *runtime) compilers() *compiler.Registry {
	registry := compiler.NewRegistry()
	registry.MustRegister(markup.New(markup.WithEmitter(r.emitter)))
	registry.MustRegister(structured.New(
		structured.WithEmitter(r.emitter),
		structured.WithAdminEmail(r.cfg.Import.AdminEmail),
	))
	return registry
}

func (r *runtime) importer(directory remote.Directory, store repository.Store) *orchestrator.Importer {
	return orchestrator.New(
		orchestrator.WithDirectory(directory),
		orchestrator.WithRepository(store),
		orchestrator.WithCompilers(r.compilers()),
		orchestrator.WithDetector(duplicate.New(duplicate.ParseStrictness(r.cfg.Import.Strictness))),
		orchestrator.WithEmitter(r.emitter),
	)
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			r.logger.Warn("close failed", slog.Any("error", err))
		}
	}
}
