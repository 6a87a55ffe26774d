// Package registry implements C1: pack discovery under CMSIS_PACK_ROOT,
// pdsc caching, and version-range resolution (spec.md §4.1).
//
// The XML pdsc parser itself is explicitly out of scope (spec.md §1):
// Registry depends on it only through the PdscParser interface, so a
// real implementation can be swapped in without touching discovery or
// version-resolution logic — the same "collaborator, not global"
// boundary SPEC_FULL.md calls out for the pack registry.
package registry

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// PdscParser parses one pdsc file into a Pack. The XML grammar is out of
// this module's scope per spec.md §1; callers inject a real parser.
type PdscParser interface {
	Parse(path string) (*projmgr.Pack, error)
}

// Registry discovers and caches installed packs for one invocation.
type Registry struct {
	env    projmgr.Env
	parser PdscParser
	log    logrus.FieldLogger

	// cache is keyed by resolved PackID so a pdsc referenced by two
	// contexts is parsed once (spec.md §5: shared resources are
	// populated during init, then read-only).
	cache map[projmgr.PackID]*projmgr.Pack
	// byVendorName groups discovered-but-unparsed candidates, keyed by
	// "vendor::name", to support version-range resolution before a
	// pack is actually parsed.
	byVendorName map[string][]candidate

	// extraSearchPaths is the "local repository index" of spec.md §4.1.
	extraSearchPaths []string
}

type candidate struct {
	path    string // path to the pdsc file
	vendor  string
	name    string
	version string // version embedded in the directory layout, if known
}

// New constructs a Registry. log may be nil, in which case a discard
// logger is used.
func New(env projmgr.Env, parser PdscParser, log logrus.FieldLogger) *Registry {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Registry{
		env: env, parser: parser, log: log,
		cache:        make(map[projmgr.PackID]*projmgr.Pack),
		byVendorName: make(map[string][]candidate),
	}
}

// AddSearchPath registers an extra local-repository-index directory to
// walk in addition to env.PackRoot.
func (r *Registry) AddSearchPath(path string) {
	r.extraSearchPaths = append(r.extraSearchPaths, path)
}

const discoverDepth = 3

// Discover walks CMSIS_PACK_ROOT (and any extra search paths) to depth 3
// looking for pdsc files named "<Vendor>.<Name>.pdsc" under a
// "<Vendor>/<Name>/<Version>/" layout, per spec.md §4.1.
func (r *Registry) Discover() error {
	roots := append([]string{r.env.PackRoot}, r.extraSearchPaths...)
	for _, root := range roots {
		if root == "" {
			continue
		}
		if err := r.discoverRoot(root); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) discoverRoot(root string) error {
	base := strings.TrimRight(filepath.ToSlash(root), "/")
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// permission errors etc. are surfaced as warnings, not
			// aborts, so a partially readable pack root still works.
			r.log.WithError(err).Warnf("registry: skipping %s", path)
			return nil
		}
		if d.IsDir() {
			rel := strings.TrimPrefix(strings.TrimRight(filepath.ToSlash(path), "/"), base)
			rel = strings.Trim(rel, "/")
			if rel != "" && strings.Count(rel, "/") >= discoverDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".pdsc") {
			return nil
		}
		r.index(path)
		return nil
	})
}

// index records one discovered pdsc path as a candidate for its
// vendor/name, inferred from the "<Vendor>/<Name>/<Version>/" directory
// layout (falling back to the "<Vendor>.<Name>.pdsc" filename form used
// directly under a vendor directory).
func (r *Registry) index(path string) {
	dir := filepath.ToSlash(filepath.Dir(path))
	parts := strings.Split(dir, "/")

	var vendor, name, version string
	if len(parts) >= 2 {
		version = parts[len(parts)-1]
		name = parts[len(parts)-2]
		if len(parts) >= 3 {
			vendor = parts[len(parts)-3]
		}
	}
	if vendor == "" || name == "" {
		// fall back to "Vendor.Name.pdsc" filename parsing.
		base := strings.TrimSuffix(filepath.Base(path), ".pdsc")
		fields := strings.SplitN(base, ".", 2)
		if len(fields) == 2 {
			vendor, name = fields[0], fields[1]
		}
		version = ""
	}

	key := vendor + "::" + name
	r.byVendorName[key] = append(r.byVendorName[key], candidate{path: path, vendor: vendor, name: name, version: version})
}

// ExpandWildcard expands a "vendor::name" request where name contains a
// glob ('*'/'?') into the set of matching discovered vendor/name pairs
// (spec.md §4.1 "Wildcard names expand to the set of matching directory
// entries under vendor/").
func (r *Registry) ExpandWildcard(vendor, namePattern string) []string {
	var out []string
	seen := map[string]bool{}
	for key := range r.byVendorName {
		v, n, _ := strings.Cut(key, "::")
		if v != vendor {
			continue
		}
		if ok, _ := filepath.Match(namePattern, n); ok && !seen[key] {
			seen[key] = true
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}

// GetEffectivePdscFile resolves {vendor, name, versionRange} to the
// best-matching installed pdsc and its resolved id, using SemVer
// ordering with metadata stripped for ordering (spec.md §4.1).
func (r *Registry) GetEffectivePdscFile(vendor, name, versionRange string) (*projmgr.Pack, error) {
	vr, err := projmgr.ParseVersionRange(versionRange)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing version range for %s::%s", vendor, name)
	}

	key := vendor + "::" + name
	cands, ok := r.byVendorName[key]
	if !ok || len(cands) == 0 {
		return nil, &projmgr.PackNotFoundError{Vendor: vendor, Name: name, VersionRange: versionRange}
	}

	best, bestVer, err := r.pickBest(cands, vr)
	if err != nil {
		return nil, err
	}
	if best == nil {
		return nil, &projmgr.PackNotFoundError{Vendor: vendor, Name: name, VersionRange: versionRange}
	}

	id := projmgr.PackID{Vendor: vendor, Name: name, Version: bestVer.String()}
	if cached, ok := r.cache[id]; ok {
		return cached, nil
	}

	pack, err := r.parser.Parse(best.path)
	if err != nil {
		return nil, &projmgr.PdscParseError{Path: best.path, Err: err}
	}
	pack.ID = id
	pack.Path = filepath.Dir(best.path)
	r.cache[id] = pack
	return pack, nil
}

func (r *Registry) pickBest(cands []candidate, vr projmgr.VersionRange) (*candidate, *semver.Version, error) {
	// Disambiguate: more than one directory match with no version info
	// at all (no revision/version parsed) is an error per spec.md §4.1.
	if len(cands) > 1 && vr.String() == "" {
		allUnversioned := true
		for _, c := range cands {
			if c.version != "" {
				allUnversioned = false
			}
		}
		if allUnversioned {
			names := make([]string, len(cands))
			for i, c := range cands {
				names[i] = c.path
			}
			return nil, nil, &projmgr.MultiplePacksAmbiguousError{Vendor: cands[0].vendor, Name: cands[0].name, Candidates: names}
		}
	}

	var best *candidate
	var bestVer *semver.Version
	for i := range cands {
		c := &cands[i]
		if c.version == "" {
			continue
		}
		v, err := semver.NewVersion(c.version)
		if err != nil {
			continue
		}
		if !vr.Matches(v) {
			continue
		}
		if best == nil || v.GreaterThan(bestVer) {
			best, bestVer = c, v
		}
	}
	return best, bestVer, nil
}

// LoadAll loads every discovered pdsc, honoring policy (spec.md §4.1):
// `default` loads only what `required` names; `all`/`latest` load every
// installed pdsc (latest collapses to the highest version per vendor::
// name); `required` without an explicit `required` list is an error.
func (r *Registry) LoadAll(policy projmgr.LoadPacksPolicy, required []projmgr.PackRequirement) ([]*projmgr.Pack, error) {
	switch policy {
	case projmgr.PolicyRequired:
		if len(required) == 0 {
			return nil, errors.New("load-packs-policy 'required' needs an explicit packs: list")
		}
		return r.loadRequired(required)
	case projmgr.PolicyDefault:
		return r.loadRequired(required)
	case projmgr.PolicyAll, projmgr.PolicyLatest:
		return r.loadAllOrLatest(policy == projmgr.PolicyLatest)
	default:
		return nil, fmt.Errorf("unknown load-packs-policy %q", policy)
	}
}

func (r *Registry) loadRequired(required []projmgr.PackRequirement) ([]*projmgr.Pack, error) {
	var out []*projmgr.Pack
	for _, req := range required {
		id, err := projmgr.ParsePackID(req.Pack)
		if err != nil {
			return nil, err
		}
		names := []string{id.Name}
		if strings.ContainsAny(id.Name, "*?") {
			names = r.ExpandWildcard(id.Vendor, id.Name)
		}
		for _, n := range names {
			pack, err := r.GetEffectivePdscFile(id.Vendor, n, id.Version)
			if err != nil {
				return nil, err
			}
			out = append(out, pack)
		}
	}
	return out, nil
}

func (r *Registry) loadAllOrLatest(latestOnly bool) ([]*projmgr.Pack, error) {
	var out []*projmgr.Pack
	keys := maps.Keys(r.byVendorName)
	slices.Sort(keys)
	for _, key := range keys {
		vendor, name, _ := strings.Cut(key, "::")
		if latestOnly {
			pack, err := r.GetEffectivePdscFile(vendor, name, "")
			if err != nil {
				return nil, err
			}
			out = append(out, pack)
			continue
		}
		for _, c := range r.byVendorName[key] {
			if c.version == "" {
				continue
			}
			pack, err := r.GetEffectivePdscFile(vendor, name, c.version)
			if err != nil {
				return nil, err
			}
			out = append(out, pack)
		}
	}
	return out, nil
}

// LoadLocal loads a project-local pack referenced by `path:` rather than
// discovered under CMSIS_PACK_ROOT (spec.md §3 invariant 3: such packs
// are never emitted into cbuild-pack.yml).
func (r *Registry) LoadLocal(path string) (*projmgr.Pack, error) {
	info, err := statPdsc(path)
	if err != nil {
		return nil, &projmgr.LocalPackPathMissingError{Path: path}
	}
	pack, err := r.parser.Parse(info)
	if err != nil {
		return nil, &projmgr.PdscParseError{Path: info, Err: err}
	}
	pack.Path = filepath.Dir(info)
	pack.ProjectLocal = true
	return pack, nil
}
