package domain

import (
	"regexp"
	"strings"

	"go.trai.ch/zerr"
)

var (
	requirementPattern = regexp.MustCompile(
		`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)\s*(?:\[([^\]]*)\])?\s*(.*)$`,
	)
	namePattern      = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?$`)
	separatorPattern = regexp.MustCompile(`[-_.]+`)
)

// Requirement is a parsed top-level dependency declaration: a package name,
// optional extras and a version specifier.
type Requirement struct {
	Name      string
	Extras    []string
	Specifier SpecifierSet
	raw       string
}

// ParseRequirement parses a requirement string such as "pkg[extra]~=2.0.1".
// URL requirements and environment markers are rejected.
func ParseRequirement(s string) (Requirement, error) {
	raw := strings.TrimSpace(s)
	invalid := func() error {
		return zerr.With(ErrInvalidRequirement, "requirement", s)
	}

	if raw == "" || strings.ContainsAny(raw, `@;/\`) {
		return Requirement{}, invalid()
	}

	m := requirementPattern.FindStringSubmatch(raw)
	if m == nil {
		return Requirement{}, invalid()
	}

	req := Requirement{Name: m[1], raw: raw}

	if strings.Contains(raw, "[") {
		if strings.Count(raw, "[") != 1 || strings.Count(raw, "]") != 1 {
			return Requirement{}, invalid()
		}
		for _, extra := range strings.Split(m[2], ",") {
			extra = strings.TrimSpace(extra)
			if extra == "" {
				continue
			}
			if !namePattern.MatchString(extra) {
				return Requirement{}, invalid()
			}
			req.Extras = append(req.Extras, extra)
		}
	}

	rest := strings.TrimSpace(m[3])
	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		rest = strings.TrimSpace(rest[1 : len(rest)-1])
	}
	spec, err := ParseSpecifierSet(rest)
	if err != nil {
		return Requirement{}, zerr.With(zerr.Wrap(err, ErrInvalidRequirement.Error()), "requirement", s)
	}
	req.Specifier = spec
	return req, nil
}

// MustParseRequirement is like ParseRequirement but panics on invalid input.
func MustParseRequirement(s string) Requirement {
	r, err := ParseRequirement(s)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the requirement as it was declared, trimmed.
func (r Requirement) String() string {
	if r.raw != "" {
		return r.raw
	}
	return r.Name + r.ExtrasSuffix() + r.Specifier.String()
}

// NormalizedName returns the package name in its canonical comparison form.
func (r Requirement) NormalizedName() string {
	return NormalizeName(r.Name)
}

// ArchiveName returns the package name as it appears in archive file names.
func (r Requirement) ArchiveName() string {
	return ArchiveName(r.Name)
}

// ExtrasSuffix renders the extras as "[a,b]", or "" when there are none.
func (r Requirement) ExtrasSuffix() string {
	if len(r.Extras) == 0 {
		return ""
	}
	return "[" + strings.Join(r.Extras, ",") + "]"
}

// Pinned returns the version when the specifier is a single exact equality clause.
func (r Requirement) Pinned() (Version, bool) {
	clauses := r.Specifier.clauses
	if len(clauses) != 1 {
		return Version{}, false
	}
	c := clauses[0]
	if c.op != OpEqual || c.wildcard {
		return Version{}, false
	}
	return c.version, true
}

// Pin renders the requirement pinned to v, keeping its extras.
func (r Requirement) Pin(v Version) string {
	return r.Name + r.ExtrasSuffix() + "==" + v.String()
}

// NormalizeName lowercases a package name and collapses runs of "-", "_" and "." into "-".
func NormalizeName(name string) string {
	return separatorPattern.ReplaceAllString(strings.ToLower(name), "-")
}

// ArchiveName lowercases a package name and collapses separator runs into "_".
func ArchiveName(name string) string {
	return separatorPattern.ReplaceAllString(strings.ToLower(name), "_")
}

// ModuleName returns the importable module of a package name: separator runs become "_"
// and the case is kept.
func ModuleName(name string) string {
	return separatorPattern.ReplaceAllString(name, "_")
}

// SameName reports whether two package names refer to the same package.
func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}
