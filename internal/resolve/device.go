// Package resolve implements C5: device/board matching and toolchain
// selection (spec.md §4.5).
package resolve

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// ParseDeviceSpec parses "vendor::name:pname" per spec.md §4.5.
func ParseDeviceSpec(spec string) (vendor, name, pname string) {
	rest := spec
	if v, n, ok := strings.Cut(spec, "::"); ok {
		vendor, rest = v, n
	}
	if n, p, ok := strings.Cut(rest, ":"); ok {
		name, pname = n, p
	} else {
		name = rest
	}
	return
}

// Devices is the subset of rte.Model the device resolver needs.
type Devices interface {
	Devices(name, vendor, variant string) []projmgr.Device
}

// ResolveDevice matches a device spec to a pack device, choosing the
// highest pack-version among equally-named devices (spec.md §4.5). If
// the matched device has sub-variants, variant must be supplied by the
// caller (via the ":variant" form folded into name by the caller, or a
// separate variant parameter); otherwise an error lists candidates.
func ResolveDevice(devs Devices, vendor, name, variant string) (projmgr.Device, error) {
	candidates := devs.Devices(name, vendor, "")
	if len(candidates) == 0 {
		return projmgr.Device{}, &projmgr.AmbiguousDeviceError{Spec: deviceSpecString(vendor, name, variant)}
	}

	// Group by variant to detect "variant required" case.
	variants := map[string][]projmgr.Device{}
	for _, d := range candidates {
		variants[d.Variant] = append(variants[d.Variant], d)
	}

	if variant == "" {
		if _, hasBareVariant := variants[""]; !hasBareVariant && len(variants) > 1 {
			var names []string
			for v := range variants {
				names = append(names, v)
			}
			slices.Sort(names)
			return projmgr.Device{}, &projmgr.AmbiguousDeviceError{
				Spec: deviceSpecString(vendor, name, variant), Candidates: names,
			}
		}
	}

	matching := variants[variant]
	if len(matching) == 0 {
		return projmgr.Device{}, &projmgr.AmbiguousDeviceError{Spec: deviceSpecString(vendor, name, variant)}
	}

	best := matching[0]
	for _, d := range matching[1:] {
		bv, errB := d.Pack.SemVer()
		cv, errC := best.Pack.SemVer()
		if errB == nil && errC == nil && bv.GreaterThan(cv) {
			best = d
		}
	}
	return best, nil
}

func deviceSpecString(vendor, name, pname string) string {
	s := name
	if vendor != "" {
		s = vendor + "::" + s
	}
	if pname != "" {
		s += ":" + pname
	}
	return s
}

// Boards is the subset of rte.Model the board resolver needs.
type Boards interface {
	Boards() []projmgr.Board
}

// ParseBoardSpec parses "vendor::name:revision" per spec.md §4.5.
func ParseBoardSpec(spec string) (vendor, name, revision string) {
	rest := spec
	if v, n, ok := strings.Cut(spec, "::"); ok {
		vendor, rest = v, n
	}
	if n, r, ok := strings.Cut(rest, ":"); ok {
		name, revision = n, r
	} else {
		name = rest
	}
	return
}

// ResolveBoard matches a board spec (spec.md §4.5): if revision is
// omitted and exactly one match exists, it is accepted; more than one
// match is an error listing candidates with their pack ids.
func ResolveBoard(boards Boards, vendor, name, revision string) (projmgr.Board, error) {
	var matches []projmgr.Board
	for _, b := range boards.Boards() {
		if name != "" && b.Name != name {
			continue
		}
		if vendor != "" && b.Vendor != vendor {
			continue
		}
		if revision != "" && b.Revision != revision {
			continue
		}
		matches = append(matches, b)
	}

	if len(matches) == 0 {
		return projmgr.Board{}, &projmgr.AmbiguousBoardError{Spec: boardSpecString(vendor, name, revision)}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}

	var candidates []string
	for _, b := range matches {
		candidates = append(candidates, fmt.Sprintf("%s::%s (%s)", b.Vendor, b.FullName(), b.Pack))
	}
	return projmgr.Board{}, &projmgr.AmbiguousBoardError{Spec: boardSpecString(vendor, name, revision), Candidates: candidates}
}

func boardSpecString(vendor, name, revision string) string {
	s := name
	if vendor != "" {
		s = vendor + "::" + s
	}
	if revision != "" {
		s += ":" + revision
	}
	return s
}

// ImpliedDevice returns the board's mounted device when the user did
// not override the device, and validates an override against the
// mounted/compatible lists otherwise (spec.md §4.5: "A board implies its
// mounted device if the user did not override; an overridden device
// must appear among the mounted or compatible devices else warning").
// The second return value is a warning message, non-empty when the
// override is not among mounted/compatible.
func ImpliedDevice(board projmgr.Board, overrideDevice *projmgr.DeviceRef) (projmgr.DeviceRef, string) {
	if overrideDevice == nil {
		if len(board.Mounted) == 0 {
			return projmgr.DeviceRef{}, "board declares no mounted device"
		}
		return board.Mounted[0], ""
	}

	for _, d := range append(append([]projmgr.DeviceRef{}, board.Mounted...), board.Compatible...) {
		if d.Vendor == overrideDevice.Vendor && d.Name == overrideDevice.Name {
			return *overrideDevice, ""
		}
	}
	return *overrideDevice, fmt.Sprintf("device %s::%s is not among board %s's mounted or compatible devices",
		overrideDevice.Vendor, overrideDevice.Name, board.FullName())
}
