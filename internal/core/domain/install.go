package domain

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.trai.ch/zerr"
)

// InstallResponseSchemaVersion is the schema version written by this build.
const InstallResponseSchemaVersion = 1

// InconsistencyKind classifies a broken dependency reported by the consistency check.
type InconsistencyKind string

const (
	// InconsistencyMissing means a required package is not installed.
	InconsistencyMissing InconsistencyKind = "missing"
	// InconsistencyConflict means an installed package has the wrong version.
	InconsistencyConflict InconsistencyKind = "conflict"
)

// Inconsistency is a single broken dependency in an environment.
type Inconsistency struct {
	Package     string            `json:"package"`
	Version     string            `json:"version"`
	Requirement string            `json:"requirement"`
	Kind        InconsistencyKind `json:"kind"`
	Installed   string            `json:"installed,omitempty"`
}

// String renders the inconsistency the way the package manager reports it.
func (i Inconsistency) String() string {
	if i.Kind == InconsistencyMissing {
		return fmt.Sprintf("%s %s requires %s, which is not installed.", i.Package, i.Version, i.Requirement)
	}
	return fmt.Sprintf("%s %s has requirement %s, but you have %s.", i.Package, i.Version, i.Requirement, i.Installed)
}

// InstallRequest describes one install attempt into an environment.
type InstallRequest struct {
	// Requirement is the top-level package to install.
	Requirement Requirement
	// Target pins the version to install. Nil lets the package manager choose.
	Target *Version
	// Extra lists additional requirement strings installed alongside.
	Extra []string
	// ArchiveDir installs from local archives when set.
	ArchiveDir string
	// IndexURL installs from the package index when ArchiveDir is empty.
	IndexURL string
	// ConstraintsPath names an explicit constraints file.
	ConstraintsPath string
	// Cache holds constraints files discovered during this invocation.
	Cache *ConstraintsCache
}

// Spec renders the requirement string handed to the package manager.
func (r InstallRequest) Spec() string {
	if r.Target != nil {
		return r.Requirement.Pin(*r.Target)
	}
	return r.Requirement.String()
}

// InstallResponse is the structured outcome of an install attempt.
type InstallResponse struct {
	SchemaVersion   int             `json:"schema_version"`
	Success         bool            `json:"success"`
	Error           string          `json:"error,omitempty"`
	Installed       []Package       `json:"installed"`
	Inconsistencies []Inconsistency `json:"inconsistencies"`
}

// NewInstallResponse returns an empty response carrying the current schema version.
func NewInstallResponse() InstallResponse {
	return InstallResponse{
		SchemaVersion:   InstallResponseSchemaVersion,
		Installed:       []Package{},
		Inconsistencies: []Inconsistency{},
	}
}

// Fail marks the response unsuccessful with err's message.
func (r *InstallResponse) Fail(err error) {
	r.Success = false
	if err != nil {
		r.Error = err.Error()
	}
}

// Encode writes the response as indented JSON.
func (r InstallResponse) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// DecodeInstallResponse reads a response, rejecting unknown schema versions.
func DecodeInstallResponse(r io.Reader) (InstallResponse, error) {
	var resp InstallResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return InstallResponse{}, zerr.Wrap(err, ErrMalformedInstallResponse.Error())
	}
	if resp.SchemaVersion != InstallResponseSchemaVersion {
		return InstallResponse{}, zerr.With(ErrMalformedInstallResponse, "schema_version", resp.SchemaVersion)
	}
	return resp, nil
}

// ConstraintsCache remembers constraints files discovered per package during one invocation.
// A nil cache is valid and never stores anything.
type ConstraintsCache struct {
	mu    sync.Mutex
	paths map[string]string
}

// NewConstraintsCache returns an empty cache.
func NewConstraintsCache() *ConstraintsCache {
	return &ConstraintsCache{paths: make(map[string]string)}
}

// Lookup returns the constraints file recorded for the package name.
func (c *ConstraintsCache) Lookup(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.paths[NormalizeName(name)]
	return p, ok
}

// Store records the constraints file for the package name.
func (c *ConstraintsCache) Store(name, path string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths[NormalizeName(name)] = path
}
