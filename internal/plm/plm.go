// Package plm implements C8: the config-file Project Life-cycle
// Management check — matching a deployed RTE file against its base/
// update side-car versions and classifying the severity of any drift
// (spec.md §4.8). Uses the same file-identity compare technique as the
// stat-plus-content check in internal/emit/write.go, adapted here from
// "should I rewrite this file" to "how stale is this file versus the
// pack's offered update".
package plm

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver"
	"golang.org/x/exp/slices"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// sidecarRe matches "<name>.base@<semver>" or "<name>.update@<semver>"
// side-car file names.
var sidecarRe = regexp.MustCompile(`^(.+)\.(base|update)@(\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?)$`)

// Status string constants, written verbatim into cbuild.yml (spec.md
// §4.8: "Status strings are written verbatim").
const (
	StatusOK             = "up to date"
	StatusMissingFile    = "missing file"
	StatusMissingBase    = "missing base"
	StatusUpdateRequired = "update required"
	StatusUpdateRecommended = "update recommended"
	StatusUpdateSuggested   = "update suggested"
)

// DirLister reads the file names present in a directory; injected so
// the check is testable without real filesystem access.
type DirLister func(dir string) ([]string, error)

// Check evaluates one RteFileInstance's config-file PLM status
// (spec.md §4.8 steps 1-5). deployedPath is the path of F; updateVer is
// the version currently offered by the owning pack; isDbgconf controls
// whether a missing deployed file is a warning or an error.
func Check(list DirLister, deployedPath, updateVer string, isDbgconf bool, diags *projmgr.Diagnostics, ctxName string) projmgr.ConfigFileInstance {
	dir, base := filepath.Split(deployedPath)
	entries, err := list(dir)
	if err != nil {
		diags.Errorf(projmgr.KindIO, ctxName, "reading RTE directory %s: %v", dir, err)
		return projmgr.ConfigFileInstance{Deployed: deployedPath, Status: StatusMissingFile, Severity: projmgr.SeverityError}
	}

	deployedExists := contains(entries, base)
	baseVersions := sidecarVersions(entries, base, "base")
	updateVersions := sidecarVersions(entries, base, "update")

	inst := projmgr.ConfigFileInstance{Deployed: deployedPath}

	if !deployedExists {
		inst.Status = StatusMissingFile
		if isDbgconf {
			inst.Severity = projmgr.SeverityWarning
			diags.Warnf(projmgr.KindPLM, ctxName, "%s: %s", deployedPath, StatusMissingFile)
		} else {
			inst.Severity = projmgr.SeverityError
			diags.Errorf(projmgr.KindPLM, ctxName, "%s: %s", deployedPath, StatusMissingFile)
		}
		return inst
	}

	if len(baseVersions) == 0 {
		inst.Status = StatusMissingBase
		inst.Severity = projmgr.SeverityWarning
		diags.Warnf(projmgr.KindPLM, ctxName, "%s: %s", deployedPath, StatusMissingBase)
		return inst
	}

	if len(baseVersions) > 1 || len(updateVersions) > 1 {
		diags.Warnf(projmgr.KindPLM, ctxName, "%s: multiple base/update side-car files coexist, PLM may fail", deployedPath)
	}

	base0 := highest(baseVersions)
	inst.BaseVer = base0.String()

	update := base0
	if updateVer != "" {
		if v, err := semver.NewVersion(updateVer); err == nil {
			update = v
		}
	} else if u := highest(updateVersions); u != nil {
		update = u
	}
	if update != nil {
		inst.UpdateVer = update.String()
	}

	sev := projmgr.ComparePLM(base0, update)
	switch sev {
	case projmgr.PLMRequired:
		inst.Status, inst.Severity = StatusUpdateRequired, projmgr.SeverityError
		diags.Errorf(projmgr.KindPLM, ctxName, "%s: %s", deployedPath, StatusUpdateRequired)
	case projmgr.PLMRecommended:
		inst.Status, inst.Severity = StatusUpdateRecommended, projmgr.SeverityWarning
		diags.Warnf(projmgr.KindPLM, ctxName, "%s: %s", deployedPath, StatusUpdateRecommended)
	case projmgr.PLMSuggested:
		inst.Status, inst.Severity = StatusUpdateSuggested, projmgr.SeverityWarning
		diags.Warnf(projmgr.KindPLM, ctxName, "%s: %s", deployedPath, StatusUpdateSuggested)
	default:
		inst.Status = StatusOK
	}

	return inst
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func sidecarVersions(names []string, base, kind string) []*semver.Version {
	var out []*semver.Version
	for _, n := range names {
		m := sidecarRe.FindStringSubmatch(n)
		if m == nil || m[1] != base || m[2] != kind {
			continue
		}
		if v, err := semver.NewVersion(m[3]); err == nil {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b *semver.Version) int {
		switch {
		case a.LessThan(b):
			return -1
		case b.LessThan(a):
			return 1
		default:
			return 0
		}
	})
	return out
}

func highest(versions []*semver.Version) *semver.Version {
	if len(versions) == 0 {
		return nil
	}
	return versions[len(versions)-1]
}

// SidecarName formats a base/update side-car file name for a given
// deployed file name and version (used by callers constructing or
// cleaning up side-car files).
func SidecarName(deployedName, kind string, v *semver.Version) string {
	return fmt.Sprintf("%s.%s@%s", deployedName, kind, v.String())
}
