package projmgr

import (
	"strings"

	"github.com/Masterminds/semver"
)

// VersionRange is the pack/component version range syntax from spec.md
// §4.1: "min:max", open-ended "min:" or ">=min", or an exact version.
type VersionRange struct {
	Min, Max *semver.Version
	Exact    bool
	raw      string
}

// ParseVersionRange parses the "min:max" / "min:" / ">=min" / exact
// syntax; a bare version is exact. An empty string means "any version".
func ParseVersionRange(s string) (VersionRange, error) {
	if s == "" {
		return VersionRange{raw: s}, nil
	}

	if strings.HasPrefix(s, ">=") {
		v, err := semver.NewVersion(strings.TrimPrefix(s, ">="))
		if err != nil {
			return VersionRange{}, err
		}
		return VersionRange{Min: v, raw: s}, nil
	}

	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		minStr, maxStr := s[:idx], s[idx+1:]
		vr := VersionRange{raw: s}
		if minStr != "" {
			v, err := semver.NewVersion(minStr)
			if err != nil {
				return VersionRange{}, err
			}
			vr.Min = v
		}
		if maxStr != "" {
			v, err := semver.NewVersion(maxStr)
			if err != nil {
				return VersionRange{}, err
			}
			vr.Max = v
		}
		return vr, nil
	}

	v, err := semver.NewVersion(s)
	if err != nil {
		return VersionRange{}, err
	}
	return VersionRange{Min: v, Exact: true, raw: s}, nil
}

func (vr VersionRange) String() string { return vr.raw }

// Matches reports whether v satisfies the range. Metadata (the "+meta"
// suffix) is stripped for the comparison per spec.md §4.1, and restored
// by the caller for later metadata-mismatch warnings.
func (vr VersionRange) Matches(v *semver.Version) bool {
	stripped := stripMeta(v)
	if vr.Exact {
		return stripped.Equal(stripMeta(vr.Min))
	}
	if vr.Min != nil && stripped.LessThan(stripMeta(vr.Min)) {
		return false
	}
	if vr.Max != nil && stripMeta(vr.Max).LessThan(stripped) {
		return false
	}
	return true
}

func stripMeta(v *semver.Version) *semver.Version {
	if v == nil {
		return v
	}
	if v.Metadata() == "" {
		return v
	}
	stripped, err := semver.NewVersion(strings.SplitN(v.String(), "+", 2)[0])
	if err != nil {
		return v
	}
	return stripped
}

// HighestMatching returns the highest version in versions that satisfies
// vr, or nil if none match.
func HighestMatching(versions []*semver.Version, vr VersionRange) *semver.Version {
	var best *semver.Version
	for _, v := range versions {
		if !vr.Matches(v) {
			continue
		}
		if best == nil || stripMeta(v).GreaterThan(stripMeta(best)) {
			best = v
		}
	}
	return best
}

// PLMSeverity classifies the difference between a base and an update
// semver per spec.md §4.8's five-case table.
type PLMSeverity int

const (
	PLMNone PLMSeverity = iota
	PLMSuggested
	PLMRecommended
	PLMRequired
)

func (s PLMSeverity) String() string {
	switch s {
	case PLMRequired:
		return "update required"
	case PLMRecommended:
		return "update recommended"
	case PLMSuggested:
		return "update suggested"
	default:
		return ""
	}
}

// ComparePLM implements the major/minor/patch-or-prerelease comparison
// table from spec.md §4.8.
func ComparePLM(base, update *semver.Version) PLMSeverity {
	if base == nil || update == nil {
		return PLMNone
	}
	switch {
	case base.Major() != update.Major():
		return PLMRequired
	case base.Minor() != update.Minor():
		return PLMRecommended
	case base.Patch() != update.Patch() || base.Prerelease() != update.Prerelease():
		return PLMSuggested
	default:
		return PLMNone
	}
}
