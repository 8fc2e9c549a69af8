package core

import (
	"cmp"
	"strconv"
	"strings"
	"time"

	"github.com/unascribed/FlexVer/go/flexver"
	"golang.org/x/exp/slices"
)

// FallbackGameVersions is offered when the registry's game version tags cannot be loaded
var FallbackGameVersions = []string{
	"1.20.4",
	"1.20.1",
	"1.19.4",
	"1.19.2",
	"1.18.2",
	"1.17.1",
	"1.16.5",
}

// GameVersionTag is one entry of the registry's game version tag list
type GameVersionTag struct {
	Version string
	Type    string
	Date    time.Time
	Major   bool
}

type CategoryTag struct {
	Name        string
	ProjectType string
	Header      string
	Icon        string
}

// IsDottedNumeric reports whether every "."-separated component of v is a non-negative integer
func IsDottedNumeric(v string) bool {
	_, ok := parseDotted(v)
	return ok
}

func parseDotted(v string) ([]int, bool) {
	if v == "" {
		return nil, false
	}
	parts := strings.Split(v, ".")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || p[0] == '+' {
			return nil, false
		}
		nums[i] = n
	}
	return nums, true
}

// CompareGameVersions orders game versions newest first: it returns a negative number when a is newer than b.
// Dotted-numeric identifiers are compared component by component, a missing component counting as 0.
// Anything else (snapshots, pre-releases, free text) is ordered with FlexVer.
func CompareGameVersions(a, b string) int {
	an, aok := parseDotted(a)
	bn, bok := parseDotted(b)
	if !aok || !bok {
		return int(flexver.Compare(b, a))
	}

	length := max(len(an), len(bn))
	for i := 0; i < length; i++ {
		var ai, bi int
		if i < len(an) {
			ai = an[i]
		}
		if i < len(bn) {
			bi = bn[i]
		}
		if ai != bi {
			return cmp.Compare(bi, ai)
		}
	}
	return 0
}

// SortGameVersionsDescending sorts newest first and removes exact duplicates
func SortGameVersionsDescending(versions []string) []string {
	slices.SortStableFunc(versions, CompareGameVersions)
	return slices.Compact(versions)
}

// ReleaseGameVersions keeps release tags only, sorted newest first
func ReleaseGameVersions(tags []GameVersionTag) []string {
	versions := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.Type != "release" {
			continue
		}
		versions = append(versions, t.Version)
	}
	return SortGameVersionsDescending(versions)
}
