package pkgdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"printdoctor/internal/config"
	"printdoctor/internal/logging"
)

// Sources recorded alongside answers.
const (
	SourceUserCatalog = "user-catalog"
	SourceCatalog     = "catalog"
	SourceManual      = "manual"
)

// Options override system probing, for tests.
type Options struct {
	Executor Executor
	LookPath func(string) (string, error)
	Family   Family
}

// DB answers executable to package questions.
type DB struct {
	user     *Catalog
	builtin  *Catalog
	cache    *Cache
	provider Provider
	family   Family
	ttl      time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// Open loads the catalogs and opens the lookup cache at cfg.PkgDBPath().
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*DB, error) {
	if cfg == nil {
		return nil, errors.New("pkgdb requires configuration")
	}
	user, err := LoadCatalog(cfg.Drivers.CatalogPath)
	if err != nil {
		return nil, err
	}
	builtin, err := BuiltinCatalog()
	if err != nil {
		return nil, err
	}
	cache, err := OpenCache(ctx, cfg.PkgDBPath())
	if err != nil {
		return nil, err
	}

	provider := NewProvider(cfg.Drivers.Provider, opts.Executor, opts.LookPath)
	family := opts.Family
	if family == "" {
		if provider != nil {
			family = provider.Family()
		} else {
			family = DetectFamily(opts.LookPath)
		}
	}

	return &DB{
		user:     user,
		builtin:  builtin,
		cache:    cache,
		provider: provider,
		family:   family,
		ttl:      time.Duration(cfg.Drivers.CacheTTLHours) * time.Hour,
		timeout:  time.Duration(cfg.Drivers.LookupTimeoutSeconds) * time.Second,
		logger:   logging.NewComponentLogger(logger, "pkgdb"),
	}, nil
}

// Close releases the cache.
func (d *DB) Close() error {
	if d == nil {
		return nil
	}
	return d.cache.Close()
}

// ProviderName names the distribution query in use, or "none".
func (d *DB) ProviderName() string {
	if d.provider == nil {
		return ProviderNone
	}
	return d.provider.Name()
}

// Family returns the package naming in use.
func (d *DB) Family() Family {
	return d.family
}

// CachePath returns the cache database location.
func (d *DB) CachePath() string {
	return d.cache.Path()
}

// Lookup returns the package that provides exe.
func (d *DB) Lookup(ctx context.Context, exe string) (string, bool, error) {
	exe = strings.TrimSpace(exe)
	if exe == "" {
		return "", false, nil
	}
	logger := logging.WithContext(ctx, d.logger)

	if pkg, ok := d.user.Lookup(exe, d.family); ok {
		logger.Debug("package resolved", logging.String("executable", exe), logging.String("package", pkg), logging.String("source", SourceUserCatalog))
		return pkg, true, nil
	}
	if pkg, ok := d.builtin.Lookup(exe, d.family); ok {
		logger.Debug("package resolved", logging.String("executable", exe), logging.String("package", pkg), logging.String("source", SourceCatalog))
		return pkg, true, nil
	}

	entry, hit, err := d.cache.Get(ctx, exe, d.ttl)
	if err != nil {
		return "", false, err
	}
	if hit {
		logger.Debug("package cache hit", logging.String("executable", exe), logging.String("package", entry.Package))
		return entry.Package, entry.Package != "", nil
	}

	if d.provider == nil {
		return "", false, nil
	}
	queryCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	pkg, ok, err := d.provider.WhatProvides(queryCtx, exe)
	if err != nil {
		if errors.Is(err, ErrProviderUnavailable) {
			logger.Debug("package provider unavailable", logging.String("provider", d.provider.Name()), logging.Error(err))
			return "", false, nil
		}
		return "", false, fmt.Errorf("lookup %s: %w", exe, err)
	}
	if !ok {
		pkg = ""
	}
	if err := d.cache.Put(ctx, exe, pkg, d.provider.Name()); err != nil {
		logging.WarnWithContext(logger, "package cache write failed", "pkgdb_cache",
			logging.String("executable", exe),
			logging.Error(err),
			logging.String(logging.FieldImpact, "lookup will be repeated next run"),
		)
	}
	logger.Debug("package provider answered",
		logging.String("executable", exe),
		logging.String("package", pkg),
		logging.String("provider", d.provider.Name()),
	)
	return pkg, ok, nil
}

// Put records a manual answer in the cache.
func (d *DB) Put(ctx context.Context, exe, pkg string) error {
	exe = strings.TrimSpace(exe)
	if exe == "" {
		return errors.New("executable required")
	}
	return d.cache.Put(ctx, exe, strings.TrimSpace(pkg), SourceManual)
}

// Purge clears the lookup cache.
func (d *DB) Purge(ctx context.Context) (int64, error) {
	return d.cache.Purge(ctx)
}

// Entries lists the lookup cache.
func (d *DB) Entries(ctx context.Context) ([]Entry, error) {
	return d.cache.Entries(ctx)
}
