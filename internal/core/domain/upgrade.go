package domain

import (
	"time"
)

// Status is the final outcome of one orchestrator invocation.
type Status string

const (
	// StatusUpgraded means a new version was installed.
	StatusUpgraded Status = "UPGRADED"
	// StatusUnchanged means the environment was left as it was.
	StatusUnchanged Status = "UNCHANGED"
	// StatusError means the invocation failed. Unless the post-install hook failed, the active
	// environment is untouched.
	StatusError Status = "ERROR"
)

// State is a step of the upgrade state machine.
type State string

// Upgrade states. Current, Switched, Retained, RolledBack and Failed are terminal.
const (
	StateAbsent         State = "absent"
	StateCreated        State = "created"
	StateCurrent        State = "current"
	StateUpgradePending State = "upgrade_pending"
	StateShadowBuilding State = "shadow_building"
	StateValidating     State = "validating"
	StateSwitched       State = "switched"
	StateRetained       State = "retained"
	StateRolledBack     State = "rolled_back"
	StateFailed         State = "failed"
)

// UpgradeRequest is the input of one orchestrator invocation.
type UpgradeRequest struct {
	// Requirement is the declared top-level dependency.
	Requirement Requirement
	// EnvsHome is the directory holding all managed environments.
	EnvsHome string
	// AutoUpgrade allows an existing environment to be upgraded.
	AutoUpgrade bool
	// BlueGreen keeps a verified shadow environment instead of switching it in.
	BlueGreen bool
	// Extra lists requirement strings installed alongside the pinned target.
	Extra []string
	// PostInstall runs the package hook after a successful install.
	PostInstall bool
	// ConstraintsPath names an explicit constraints file.
	ConstraintsPath string
}

// Path returns the active environment path for the request.
func (r UpgradeRequest) Path() string {
	return Locate(r.EnvsHome, r.Requirement.String())
}

// UpgradeResult is the single outcome record of one invocation.
type UpgradeResult struct {
	Status      Status    `json:"status"`
	Executable  string    `json:"executable"`
	Error       string    `json:"error,omitempty"`
	RunID       string    `json:"run_id"`
	Requirement string    `json:"requirement"`
	Path        string    `json:"path"`
	FromVersion string    `json:"from_version,omitempty"`
	ToVersion   string    `json:"to_version,omitempty"`
	ShadowPath  string    `json:"shadow_path,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	State       State     `json:"state"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Failed reports whether the result carries an error.
func (r UpgradeResult) Failed() bool {
	return r.Status == StatusError
}

// Recordable reports whether the result changes history. Unchanged runs are not recorded.
func (r UpgradeResult) Recordable() bool {
	return r.Status != StatusUnchanged
}
