package resolve

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// ToolchainRegistry discovers and resolves compiler toolchains (spec.md
// §4.5). It is constructed explicitly per Workspace/Env rather than as
// a package global: a name-keyed registry holding one or more cmake
// configs per toolchain name.
type ToolchainRegistry struct {
	// envRoots holds <NAME>_TOOLCHAIN_<M>_<N>_<P> -> root dir, as
	// discovered by projmgr.Env.
	envRoots map[string]map[string]string
	// configs holds every "<name>.<x.y.z>.cmake" found under the
	// toolbox etc/ directory.
	configs map[string][]configEntry
}

type configEntry struct {
	version *semver.Version
	path    string
}

var cmakeConfigRe = regexp.MustCompile(`^([A-Za-z0-9_-]+)\.(\d+\.\d+\.\d+)\.cmake$`)

// NewToolchainRegistry builds a registry from env and the toolbox etc/
// directory contents (spec.md §4.5).
func NewToolchainRegistry(env projmgr.Env, etcDir string, readDir func(string) ([]string, error)) (*ToolchainRegistry, error) {
	r := &ToolchainRegistry{envRoots: env.ToolchainVersions, configs: make(map[string][]configEntry)}

	if readDir == nil {
		return r, nil
	}
	names, err := readDir(etcDir)
	if err != nil {
		return r, nil // absence of an etc/ dir is not fatal; env-only toolchains still work
	}
	for _, n := range names {
		m := cmakeConfigRe.FindStringSubmatch(n)
		if m == nil {
			continue
		}
		v, err := semver.NewVersion(m[2])
		if err != nil {
			continue
		}
		r.configs[m[1]] = append(r.configs[m[1]], configEntry{version: v, path: filepath.Join(etcDir, n)})
	}
	for name := range r.configs {
		slices.SortFunc(r.configs[name], func(a, b configEntry) int {
			switch {
			case a.version.LessThan(b.version):
				return -1
			case b.version.LessThan(a.version):
				return 1
			default:
				return 0
			}
		})
	}
	return r, nil
}

// ParseCompilerSpec parses "name[@versionSpec]" per spec.md §4.5:
// "@x.y.z" means exact, "@>=x.y.z" means an open-ended range, blank
// means "any".
func ParseCompilerSpec(spec string) (name string, vr projmgr.VersionRange, err error) {
	name, verPart, hasAt := strings.Cut(spec, "@")
	if !hasAt || verPart == "" {
		return name, projmgr.VersionRange{}, nil
	}
	if strings.HasPrefix(verPart, ">=") {
		vr, err = projmgr.ParseVersionRange(strings.TrimPrefix(verPart, ">=") + ":")
		return name, vr, err
	}
	vr, err = projmgr.ParseVersionRange(verPart)
	return name, vr, err
}

// Resolve picks the registered toolchain for a compiler spec (spec.md
// §4.5): for an exact version, the highest config version <= that
// version; for a range, the highest config version inside the range.
func (r *ToolchainRegistry) Resolve(spec string) (projmgr.Toolchain, error) {
	name, vr, err := ParseCompilerSpec(spec)
	if err != nil {
		return projmgr.Toolchain{}, errors.Wrapf(err, "parsing compiler spec %q", spec)
	}

	entries := r.configs[name]
	var best *configEntry
	for i := range entries {
		e := &entries[i]
		if vr.Exact && e.version.GreaterThan(vr.Min) {
			continue
		}
		if !vr.Exact && vr.Min != nil && e.version.LessThan(vr.Min) {
			continue
		}
		if vr.Max != nil && vr.Max.LessThan(e.version) {
			continue
		}
		if best == nil || e.version.GreaterThan(best.version) {
			best = e
		}
	}

	if best == nil {
		root := r.envRootFor(name, vr)
		if root == "" {
			return projmgr.Toolchain{}, &projmgr.ToolchainNotFoundError{Name: name, VersionSpec: vr.String()}
		}
		return projmgr.Toolchain{Name: name, Root: root}, nil
	}

	tc := projmgr.Toolchain{Name: name, Version: best.version.String(), ConfigPath: best.path}
	tc.Root = r.envRootFor(name, vr)
	return tc, nil
}

func (r *ToolchainRegistry) envRootFor(name string, vr projmgr.VersionRange) string {
	versions := r.envRoots[name]
	if len(versions) == 0 {
		return ""
	}
	var bestVer *semver.Version
	var bestRoot string
	for verStr, root := range versions {
		v, err := semver.NewVersion(verStr)
		if err != nil {
			continue
		}
		if !vr.Matches(v) {
			continue
		}
		if bestVer == nil || v.GreaterThan(bestVer) {
			bestVer, bestRoot = v, root
		}
	}
	return bestRoot
}
