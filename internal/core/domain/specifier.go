package domain

import (
	"regexp"
	"strings"

	"go.trai.ch/zerr"
)

// Operator is a version comparison operator.
type Operator string

// Supported comparison operators.
const (
	OpCompatible Operator = "~="
	OpEqual      Operator = "=="
	OpNotEqual   Operator = "!="
	OpLessEq     Operator = "<="
	OpGreaterEq  Operator = ">="
	OpLess       Operator = "<"
	OpGreater    Operator = ">"
	OpArbitrary  Operator = "==="
)

var clausePattern = regexp.MustCompile(`^\s*(~=|===|==|!=|<=|>=|<|>)\s*([^\s,;]+)\s*$`)

// Specifier is a single version clause such as ">=2.0" or "~=2.0.1".
type Specifier struct {
	op        Operator
	version   Version
	arbitrary string
	wildcard  bool
}

// ParseSpecifier parses one version clause.
func ParseSpecifier(s string) (Specifier, error) {
	m := clausePattern.FindStringSubmatch(s)
	if m == nil {
		return Specifier{}, zerr.With(ErrInvalidSpecifier, "specifier", s)
	}

	spec := Specifier{op: Operator(m[1])}
	text := m[2]

	if spec.op == OpArbitrary {
		spec.arbitrary = text
		return spec, nil
	}

	if prefix, ok := strings.CutSuffix(text, ".*"); ok {
		if spec.op != OpEqual && spec.op != OpNotEqual {
			return Specifier{}, zerr.With(ErrInvalidSpecifier, "specifier", s)
		}
		spec.wildcard = true
		text = prefix
	}

	v, err := ParseVersion(text)
	if err != nil {
		return Specifier{}, zerr.With(zerr.Wrap(err, ErrInvalidSpecifier.Error()), "specifier", s)
	}
	if spec.wildcard && (v.IsPreRelease() || v.IsPostRelease() || v.local != "") {
		return Specifier{}, zerr.With(ErrInvalidSpecifier, "specifier", s)
	}
	if spec.op == OpCompatible && (len(v.release) < 2 || v.local != "") {
		return Specifier{}, zerr.With(ErrInvalidSpecifier, "specifier", s)
	}
	if v.local != "" && spec.op != OpEqual && spec.op != OpNotEqual {
		return Specifier{}, zerr.With(ErrInvalidSpecifier, "specifier", s)
	}
	spec.version = v
	return spec, nil
}

// Operator returns the clause operator.
func (s Specifier) Operator() Operator {
	return s.op
}

// Version returns the clause version. It is the zero value for arbitrary equality.
func (s Specifier) Version() Version {
	return s.version
}

// String renders the clause.
func (s Specifier) String() string {
	if s.op == OpArbitrary {
		return string(s.op) + s.arbitrary
	}
	out := string(s.op) + s.version.String()
	if s.wildcard {
		out += ".*"
	}
	return out
}

// AllowsPreReleases reports whether the clause names a pre-release explicitly.
func (s Specifier) AllowsPreReleases() bool {
	switch s.op {
	case OpEqual, OpGreaterEq, OpLessEq, OpCompatible:
		return s.version.IsPreRelease()
	case OpArbitrary:
		v, err := ParseVersion(s.arbitrary)
		return err == nil && v.IsPreRelease()
	default:
		return false
	}
}

// Matches reports whether v satisfies the clause, ignoring the pre-release policy.
//
//nolint:cyclop // one branch per operator
func (s Specifier) Matches(v Version) bool {
	switch s.op {
	case OpArbitrary:
		return strings.EqualFold(v.String(), s.arbitrary)
	case OpEqual:
		return s.equal(v)
	case OpNotEqual:
		return !s.equal(v)
	case OpCompatible:
		prefix := s.version.release[:len(s.version.release)-1]
		return v.Public().Compare(s.version) >= 0 && v.epoch == s.version.epoch && hasReleasePrefix(v, prefix)
	case OpGreaterEq:
		return v.Public().Compare(s.version) >= 0
	case OpLessEq:
		return v.Public().Compare(s.version) <= 0
	case OpLess:
		if v.Public().Compare(s.version) >= 0 {
			return false
		}
		if !s.version.IsPreRelease() && v.IsPreRelease() && v.BaseRelease().Equal(s.version.BaseRelease()) {
			return false
		}
		return true
	case OpGreater:
		if v.Public().Compare(s.version) <= 0 {
			return false
		}
		if !s.version.IsPostRelease() && v.IsPostRelease() && v.BaseRelease().Equal(s.version.BaseRelease()) {
			return false
		}
		if v.local != "" && v.BaseRelease().Equal(s.version.BaseRelease()) {
			return false
		}
		return true
	default:
		return false
	}
}

func (s Specifier) equal(v Version) bool {
	if s.wildcard {
		return v.epoch == s.version.epoch && hasReleasePrefix(v, s.version.release)
	}
	if s.version.local == "" {
		return v.Public().Equal(s.version)
	}
	return v.Equal(s.version)
}

// hasReleasePrefix compares the leading release segments of v with prefix, padding v with zeros.
func hasReleasePrefix(v Version, prefix []int) bool {
	for i, n := range prefix {
		if segment(v.release, i) != n {
			return false
		}
	}
	return true
}

// SpecifierSet is a conjunction of version clauses. The zero value matches every version.
type SpecifierSet struct {
	clauses []Specifier
}

// ParseSpecifierSet parses comma-separated clauses. An empty string yields an empty set.
func ParseSpecifierSet(s string) (SpecifierSet, error) {
	var set SpecifierSet
	if strings.TrimSpace(s) == "" {
		return set, nil
	}
	for _, part := range strings.Split(s, ",") {
		clause, err := ParseSpecifier(part)
		if err != nil {
			return SpecifierSet{}, err
		}
		set.clauses = append(set.clauses, clause)
	}
	return set, nil
}

// MustParseSpecifierSet is like ParseSpecifierSet but panics on invalid input.
func MustParseSpecifierSet(s string) SpecifierSet {
	set, err := ParseSpecifierSet(s)
	if err != nil {
		panic(err)
	}
	return set
}

// Clauses returns the individual clauses.
func (s SpecifierSet) Clauses() []Specifier {
	return append([]Specifier(nil), s.clauses...)
}

// IsEmpty reports whether the set has no clauses.
func (s SpecifierSet) IsEmpty() bool {
	return len(s.clauses) == 0
}

// String renders the clauses joined by commas.
func (s SpecifierSet) String() string {
	parts := make([]string, len(s.clauses))
	for i, c := range s.clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// AllowsPreReleases reports whether any clause names a pre-release.
func (s SpecifierSet) AllowsPreReleases() bool {
	for _, c := range s.clauses {
		if c.AllowsPreReleases() {
			return true
		}
	}
	return false
}

// Matches reports whether v satisfies every clause, ignoring the pre-release policy.
func (s SpecifierSet) Matches(v Version) bool {
	for _, c := range s.clauses {
		if !c.Matches(v) {
			return false
		}
	}
	return true
}

// Filter returns the candidates satisfying every clause, preserving their order.
// Pre-releases are dropped unless a clause names one or nothing else matches.
func (s SpecifierSet) Filter(candidates []Version) []Version {
	allowPre := s.AllowsPreReleases()

	var matched, pre []Version
	for _, v := range candidates {
		if !s.Matches(v) {
			continue
		}
		if v.IsPreRelease() && !allowPre {
			pre = append(pre, v)
			continue
		}
		matched = append(matched, v)
	}

	if len(matched) == 0 {
		return pre
	}
	return matched
}

// Latest returns the greatest candidate that satisfies the set.
func (s SpecifierSet) Latest(candidates []Version) (Version, bool) {
	return Latest(s.Filter(candidates))
}

// UpgradeTarget returns the greatest matching candidate strictly newer than installed.
// With nothing installed, any matching candidate qualifies.
func (s SpecifierSet) UpgradeTarget(candidates []Version, installed *Version) (Version, bool) {
	matching := s.Filter(candidates)
	if installed != nil {
		var newer []Version
		for _, v := range matching {
			if v.GreaterThan(*installed) {
				newer = append(newer, v)
			}
		}
		matching = newer
	}
	return Latest(matching)
}
