package domain

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

var versionPattern = regexp.MustCompile(`(?i)^v?` +
	`(?:(\d+)!)?` +
	`(\d+(?:\.\d+)*)` +
	`(?:[-_.]?(a|b|c|rc|alpha|beta|pre|preview)[-_.]?(\d+)?)?` +
	`(?:-(\d+)|[-_.]?(post|rev|r)[-_.]?(\d+)?)?` +
	`(?:[-_.]?(dev)[-_.]?(\d+)?)?` +
	`(?:\+([a-z0-9]+(?:[-_.][a-z0-9]+)*))?$`)

// PreReleaseKind orders pre-release phases.
type PreReleaseKind int

const (
	// Alpha is an "a" pre-release.
	Alpha PreReleaseKind = iota
	// Beta is a "b" pre-release.
	Beta
	// ReleaseCandidate is an "rc" pre-release.
	ReleaseCandidate
)

var preReleaseLabels = [...]string{"a", "b", "rc"}

const absent = -1

// Version is a parsed package version with a total order.
// The zero value is not a valid version; use ParseVersion.
type Version struct {
	raw     string
	epoch   int
	release []int
	preKind PreReleaseKind
	preNum  int
	post    int
	dev     int
	local   string
	hasPre  bool
}

// ParseVersion parses a dotted numeric version with optional pre, post, dev and local parts.
func ParseVersion(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	m := versionPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return Version{}, zerr.With(ErrInvalidVersion, "version", s)
	}

	var overflow bool
	num := func(digits string) int {
		n, ok := atoi(digits)
		overflow = overflow || !ok
		return n
	}

	v := Version{raw: trimmed, post: absent, dev: absent}
	if m[1] != "" {
		v.epoch = num(m[1])
	}
	for _, part := range strings.Split(m[2], ".") {
		v.release = append(v.release, num(part))
	}
	if m[3] != "" {
		v.hasPre = true
		v.preKind = preReleaseKind(m[3])
		v.preNum = num(m[4])
	}
	switch {
	case m[5] != "":
		v.post = num(m[5])
	case m[6] != "":
		v.post = num(m[7])
	}
	if m[8] != "" {
		v.dev = num(m[9])
	}
	if overflow {
		return Version{}, zerr.With(zerr.With(ErrInvalidVersion, "version", s), "reason", "numeric segment out of range")
	}
	v.local = strings.ToLower(m[10])
	return v, nil
}

// MustParseVersion is like ParseVersion but panics on invalid input.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func preReleaseKind(label string) PreReleaseKind {
	switch strings.ToLower(label) {
	case "a", "alpha":
		return Alpha
	case "b", "beta":
		return Beta
	default:
		return ReleaseCandidate
	}
}

// atoi converts a regexp-validated digit string. Empty means zero.
// It reports false when the number does not fit in an int.
func atoi(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// String returns the version as it was written.
func (v Version) String() string {
	return v.raw
}

// Canonical returns the normalized form of the version.
func (v Version) Canonical() string {
	var b strings.Builder
	if v.epoch != 0 {
		b.WriteString(strconv.Itoa(v.epoch))
		b.WriteString("!")
	}
	for i, n := range v.release {
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(strconv.Itoa(n))
	}
	if v.hasPre {
		b.WriteString(preReleaseLabels[v.preKind])
		b.WriteString(strconv.Itoa(v.preNum))
	}
	if v.post != absent {
		b.WriteString(".post")
		b.WriteString(strconv.Itoa(v.post))
	}
	if v.dev != absent {
		b.WriteString(".dev")
		b.WriteString(strconv.Itoa(v.dev))
	}
	if v.local != "" {
		b.WriteString("+")
		b.WriteString(v.local)
	}
	return b.String()
}

// Release returns a copy of the numeric release segments.
func (v Version) Release() []int {
	return slices.Clone(v.release)
}

// IsPreRelease reports whether the version is a pre-release or a development release.
func (v Version) IsPreRelease() bool {
	return v.hasPre || v.dev != absent
}

// IsPostRelease reports whether the version carries a post-release segment.
func (v Version) IsPostRelease() bool {
	return v.post != absent
}

// IsZero reports whether v is the zero value.
func (v Version) IsZero() bool {
	return len(v.release) == 0
}

// Public returns the version without its local segment.
func (v Version) Public() Version {
	if v.local == "" {
		return v
	}
	p := v
	p.local = ""
	p.raw, _, _ = strings.Cut(v.raw, "+")
	return p
}

// BaseRelease returns the epoch and release segments only.
func (v Version) BaseRelease() Version {
	return Version{
		raw:     v.raw,
		epoch:   v.epoch,
		release: v.release,
		post:    absent,
		dev:     absent,
	}
}

// Equal reports whether two versions compare equal.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// LessThan reports whether v sorts before o.
func (v Version) LessThan(o Version) bool {
	return v.Compare(o) < 0
}

// GreaterThan reports whether v sorts after o.
func (v Version) GreaterThan(o Version) bool {
	return v.Compare(o) > 0
}

// Compare returns -1, 0 or +1 ordering dev < pre < final < post within one release.
// Trailing zero release segments are not significant.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.epoch, o.epoch); c != 0 {
		return c
	}
	if c := compareRelease(v.release, o.release); c != 0 {
		return c
	}
	if c := compareKeys(v.preKey(), o.preKey()); c != 0 {
		return c
	}
	if c := cmp.Compare(v.post, o.post); c != 0 {
		return c
	}
	if c := cmp.Compare(v.devKey(), o.devKey()); c != 0 {
		return c
	}
	return cmp.Compare(v.local, o.local)
}

func compareRelease(a, b []int) int {
	n := max(len(a), len(b))
	for i := range n {
		if c := cmp.Compare(segment(a, i), segment(b, i)); c != 0 {
			return c
		}
	}
	return 0
}

func segment(release []int, i int) int {
	if i < len(release) {
		return release[i]
	}
	return 0
}

const (
	keyMin = -1 << 31
	keyMax = 1<<31 - 1
)

// preKey sorts a dev-only release before any pre-release and a final release after them.
func (v Version) preKey() [2]int {
	switch {
	case !v.hasPre && v.post == absent && v.dev != absent:
		return [2]int{keyMin, 0}
	case !v.hasPre:
		return [2]int{keyMax, 0}
	default:
		return [2]int{int(v.preKind), v.preNum}
	}
}

func (v Version) devKey() int {
	if v.dev == absent {
		return keyMax
	}
	return v.dev
}

func compareKeys(a, b [2]int) int {
	if c := cmp.Compare(a[0], b[0]); c != 0 {
		return c
	}
	return cmp.Compare(a[1], b[1])
}

// VersionSet is an unordered set of versions published for a package.
type VersionSet struct {
	items []Version
}

// NewVersionSet builds a set, dropping versions equal to one already present.
func NewVersionSet(versions ...Version) VersionSet {
	var s VersionSet
	for _, v := range versions {
		s.Add(v)
	}
	return s
}

// Add inserts v unless an equal version is already present.
func (s *VersionSet) Add(v Version) {
	if s.Contains(v) {
		return
	}
	s.items = append(s.items, v)
}

// Contains reports whether an equal version is in the set.
func (s VersionSet) Contains(v Version) bool {
	return slices.ContainsFunc(s.items, v.Equal)
}

// Len returns the number of versions in the set.
func (s VersionSet) Len() int {
	return len(s.items)
}

// Versions returns the members in no particular order.
func (s VersionSet) Versions() []Version {
	return slices.Clone(s.items)
}

// SortDescending returns a copy of versions ordered from newest to oldest.
func SortDescending(versions []Version) []Version {
	sorted := slices.Clone(versions)
	slices.SortFunc(sorted, func(a, b Version) int {
		return b.Compare(a)
	})
	return sorted
}

// Latest returns the greatest version in versions.
func Latest(versions []Version) (Version, bool) {
	if len(versions) == 0 {
		return Version{}, false
	}
	return slices.MaxFunc(versions, Version.Compare), true
}

// Strings renders versions with their original spelling.
func Strings(versions []Version) []string {
	out := make([]string, len(versions))
	for i, v := range versions {
		out[i] = v.String()
	}
	return out
}
