package domain

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	// StateDirName is the name of the metadata directory kept under the environments home.
	StateDirName = ".venvup"

	// HistoryDirName is the name of the upgrade history directory.
	HistoryDirName = "history"

	// ConfigFileName is the name of the optional configuration file.
	ConfigFileName = "venvup.yaml"

	// ShadowSuffix is appended to an environment path to name its shadow copy.
	ShadowSuffix = "_green"

	// BackupSuffix is appended to an environment path while it is moved aside during a swap.
	BackupSuffix = "_backup"

	// StagingSuffix is appended to an environment path while it is being built.
	StagingSuffix = "_new"

	// ConstraintsFileName is the conventional name of a package's constraints file.
	ConstraintsFileName = "constraints.txt"

	// DefaultLogFile is the log file used when a log location directory is given.
	DefaultLogFile = "venvup.log"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// Locate maps an environments home and a requirement string to the environment path.
// The path is the plain concatenation of both, so distinct requirement strings never collide.
func Locate(home, requirement string) string {
	return filepath.Clean(home) + string(os.PathSeparator) + requirement
}

// ShadowPath returns the path of the shadow copy of the environment at path.
func ShadowPath(path string) string {
	return path + ShadowSuffix
}

// BackupPath returns the path an active environment is moved to during a swap.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// StagingPath returns the path an environment is built at before it is moved into place.
func StagingPath(path string) string {
	return path + StagingSuffix
}

// ExecutablePath returns the runtime entry point inside the environment at path.
func ExecutablePath(path string) string {
	if isWindows() {
		return filepath.Join(path, "Scripts", "python.exe")
	}
	return filepath.Join(path, "bin", "python")
}

// HistoryPath returns the directory holding upgrade history under the environments home.
func HistoryPath(home string) string {
	return filepath.Join(home, StateDirName, HistoryDirName)
}

func isWindows() bool {
	return runtime.GOOS == "windows"
}
