package drivers

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"printdoctor/internal/config"
	"printdoctor/internal/logging"
	"printdoctor/internal/ppd"
)

// DefaultSearchPath is used when no search path is configured.
const DefaultSearchPath = "/usr/bin:/bin"

// DefaultFilterDir is where missing CUPS filters are reported when no filter
// directory is configured.
const DefaultFilterDir = "/usr/lib/cups/filter"

// PackageLookup maps an executable to the package that provides it.
type PackageLookup interface {
	Lookup(ctx context.Context, executable string) (string, bool, error)
}

// Missing lists what a PPD needs but the system lacks. Executables holds the
// programs no package could be found for.
type Missing struct {
	Packages    []string `json:"packages" yaml:"packages"`
	Executables []string `json:"executables" yaml:"executables"`
}

// Empty reports whether nothing is missing.
func (m Missing) Empty() bool {
	return len(m.Packages) == 0 && len(m.Executables) == 0
}

// Resolver finds missing driver programs.
type Resolver struct {
	searchPath []string
	filterDirs []string
	packages   PackageLookup
	executable func(path string) bool
	logger     *slog.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithExecutableCheck replaces the X_OK access check, for tests.
func WithExecutableCheck(fn func(path string) bool) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.executable = fn
		}
	}
}

// New constructs a Resolver. packages may be nil, in which case every missing
// program is reported as an executable.
func New(cfg config.Drivers, packages PackageLookup, logger *slog.Logger, opts ...Option) *Resolver {
	searchPath := strings.TrimSpace(cfg.SearchPath)
	if searchPath == "" {
		searchPath = DefaultSearchPath
	}
	filterDirs := append([]string(nil), cfg.FilterDirs...)
	if len(filterDirs) == 0 {
		filterDirs = []string{DefaultFilterDir}
	}
	r := &Resolver{
		searchPath: filepath.SplitList(searchPath),
		filterDirs: filterDirs,
		packages:   packages,
		executable: isExecutable,
		logger:     logging.NewComponentLogger(logger, "drivers"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func isExecutable(path string) bool {
	return unix.Access(path, unix.X_OK) == nil
}

// Missing returns the packages and executables file needs but the system lacks.
func (r *Resolver) Missing(ctx context.Context, file *ppd.File) (Missing, error) {
	var result Missing
	if file == nil {
		return result, nil
	}
	logger := logging.WithContext(ctx, r.logger)
	seen := make(map[string]struct{})
	for _, exe := range r.MissingExecutables(file) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		pkg, ok, err := r.lookup(ctx, exe)
		if err != nil {
			logging.WarnWithContext(logger, "package lookup failed", "package_lookup",
				logging.String("executable", exe),
				logging.Error(err),
				logging.String(logging.FieldImpact, "program reported without a package"),
			)
		}
		if !ok {
			result.Executables = append(result.Executables, exe)
			continue
		}
		if _, dup := seen[pkg]; dup {
			continue
		}
		seen[pkg] = struct{}{}
		result.Packages = append(result.Packages, pkg)
	}
	if !result.Empty() {
		logger.Info("missing driver components",
			logging.Strings("packages", result.Packages),
			logging.Strings("executables", result.Executables),
		)
	}
	return result, nil
}

func (r *Resolver) lookup(ctx context.Context, exe string) (string, bool, error) {
	if r.packages == nil {
		return "", false, nil
	}
	pkg, ok, err := r.packages.Lookup(ctx, exe)
	if err != nil || ok {
		return pkg, ok && pkg != "", err
	}
	// Filters are reported by full path; catalogs often know only the name.
	if base := filepath.Base(exe); base != exe {
		pkg, ok, err = r.packages.Lookup(ctx, base)
		return pkg, ok && pkg != "", err
	}
	return "", false, nil
}

// MissingExecutables lists the programs file refers to that cannot be found,
// without consulting the package database.
func (r *Resolver) MissingExecutables(file *ppd.File) []string {
	var missing []string
	seen := make(map[string]struct{})
	add := func(exe string) {
		if _, ok := seen[exe]; ok {
			return
		}
		seen[exe] = struct{}{}
		missing = append(missing, exe)
	}
	check := func(exe string) bool {
		if r.pathCheck(exe) != "" {
			return true
		}
		add(exe)
		return false
	}

	chainOK := true
	if attr, ok := file.FindAttr("FoomaticRIPCommandLine"); ok {
		chainOK = r.checkFoomatic(attr.Value, check)
	}
	if !chainOK {
		return missing
	}

	for _, exe := range filterPrograms(file) {
		if exe == "-" {
			continue
		}
		if strings.Contains(exe, "/") {
			if !r.executable(exe) {
				add(exe)
			}
			continue
		}
		if r.findFilter(exe) == "" {
			add(filepath.Join(r.filterDirs[0], exe))
		}
	}
	return missing
}

// checkFoomatic walks the pipelines of a foomatic-rip command line. Every
// stage of a pipeline is checked. The walk stops after a pipeline whose last
// checked program is missing, and the result reports whether it was found.
func (r *Resolver) checkFoomatic(value string, check func(string) bool) bool {
	cmdline := strings.ReplaceAll(value, "&&\n", "")
	cmdline = strings.NewReplacer("&quot;", `"`, "&lt;", "<", "&gt;", ">").Replace(cmdline)
	if strings.ContainsAny(cmdline, "(&") {
		// Sub-shells and unknown entities cannot be followed.
		return true
	}
	found := true
	for _, pipeline := range strings.Split(cmdline, ";") {
		for _, stage := range strings.Split(pipeline, "|") {
			args := strings.Fields(stage)
			exe := ""
			if len(args) > 0 {
				exe = stripPlaceholders(args[0])
			}
			if exe == "" {
				found = true
				continue
			}
			if found = check(exe); !found {
				continue
			}
			if filepath.Base(exe) != "gs" {
				continue
			}
			// Only the first IJS server named on the gs command line counts.
			for _, arg := range args[1:] {
				server, ok := strings.CutPrefix(arg, "-sIjsServer=")
				if !ok {
					continue
				}
				if server = stripPlaceholders(strings.Trim(server, `"'`)); server != "" {
					found = check(server)
				}
				break
			}
		}
		if !found {
			break
		}
	}
	return found
}

func stripPlaceholders(token string) string {
	if idx := strings.IndexByte(token, '%'); idx >= 0 {
		token = token[:idx]
	}
	return strings.Trim(token, `"'`)
}

// filterPrograms returns the program named by every *cupsFilter and
// *cupsFilter2 line. The program is always the last field.
func filterPrograms(file *ppd.File) []string {
	var out []string
	for _, name := range []string{"cupsFilter", "cupsFilter2"} {
		for _, attr := range file.FindAttrs(name) {
			fields := strings.Fields(attr.Value)
			if len(fields) < 3 {
				continue
			}
			out = append(out, fields[len(fields)-1])
		}
	}
	return out
}

// pathCheck resolves name on the search path. "-" is the builtin filter and
// names containing a slash are checked as given.
func (r *Resolver) pathCheck(name string) string {
	if name == "-" {
		return "builtin"
	}
	if strings.Contains(name, "/") {
		if r.executable(name) {
			return name
		}
		return ""
	}
	for _, dir := range r.searchPath {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if r.executable(candidate) {
			return candidate
		}
	}
	return ""
}

func (r *Resolver) findFilter(name string) string {
	for _, dir := range r.filterDirs {
		candidate := filepath.Join(dir, name)
		if r.executable(candidate) {
			return candidate
		}
	}
	return ""
}
