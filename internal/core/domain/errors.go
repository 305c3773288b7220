package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidRequirement is returned when a requirement string does not decompose into a name and specifier.
	ErrInvalidRequirement = zerr.New("invalid requirement")

	// ErrInvalidSpecifier is returned when a version specifier clause cannot be parsed.
	ErrInvalidSpecifier = zerr.New("invalid version specifier")

	// ErrInvalidVersion is returned when a version string is not a valid version.
	ErrInvalidVersion = zerr.New("invalid version")

	// ErrManifestNotFound is returned when the dependency manifest file does not exist.
	ErrManifestNotFound = zerr.New("dependency manifest not found")

	// ErrManifestInvalid is returned when the manifest has no line declaring a requirement.
	ErrManifestInvalid = zerr.New("dependency manifest does not contain a valid requirement definition")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrMissingEnvsHome is returned when no environments home directory is configured.
	ErrMissingEnvsHome = zerr.New("environments home is required")

	// ErrMissingVersionSource is returned when neither an index URL nor an archive directory is configured.
	ErrMissingVersionSource = zerr.New("an index url or a local archive directory is required")

	// ErrNoRequirements is returned when a command is given neither a manifest nor a requirement.
	ErrNoRequirements = zerr.New("no manifest or requirement given")

	// ErrSingleRequirement is returned when a command that acts on one environment is given several.
	ErrSingleRequirement = zerr.New("command takes exactly one requirement")

	// ErrDuplicateRequirement is returned when one batch names the same requirement twice.
	ErrDuplicateRequirement = zerr.New("requirement listed more than once")

	// ErrIndexUnreachable is returned when the package index cannot be queried.
	ErrIndexUnreachable = zerr.New("package index unreachable")

	// ErrMalformedIndex is returned when the package index lists entries that are not archive names.
	ErrMalformedIndex = zerr.New("malformed package index")

	// ErrNoCompatibleVersion is returned when no published version satisfies the requirement.
	ErrNoCompatibleVersion = zerr.New("no published version satisfies the requirement")

	// ErrPackageNotInstalled is returned when the required package is absent from an environment.
	ErrPackageNotInstalled = zerr.New("package is not installed")

	// ErrDirectoryExists is returned when an environment is built over an existing directory.
	ErrDirectoryExists = zerr.New("environment directory already exists")

	// ErrCreationFailed is returned when the environment-creation primitive fails.
	ErrCreationFailed = zerr.New("failed to create environment")

	// ErrBaselineInstallFailed is returned when installing the baseline toolset fails.
	ErrBaselineInstallFailed = zerr.New("failed to install baseline toolset")

	// ErrArchiveNotFound is returned when no local archive matches the requirement.
	ErrArchiveNotFound = zerr.New("archive not found")

	// ErrInvalidArchive is returned when a local archive is not a readable wheel for the package.
	ErrInvalidArchive = zerr.New("invalid archive")

	// ErrInstallFailed is returned when the package manager exits unsuccessfully.
	ErrInstallFailed = zerr.New("install failed")

	// ErrConsistencyCheckFailed is returned when the consistency check cannot be run at all.
	ErrConsistencyCheckFailed = zerr.New("failed to run consistency check")

	// ErrEnvironmentInconsistent is returned when the consistency check reports broken dependencies.
	ErrEnvironmentInconsistent = zerr.New("environment has inconsistent dependencies")

	// ErrListPackagesFailed is returned when the installed packages cannot be listed.
	ErrListPackagesFailed = zerr.New("failed to list installed packages")

	// ErrMalformedInstallResponse is returned when a structured install response cannot be decoded.
	ErrMalformedInstallResponse = zerr.New("malformed install response")

	// ErrValidationFailed is returned when the shadow environment does not contain the target version.
	ErrValidationFailed = zerr.New("shadow environment validation failed")

	// ErrCopyFailed is returned when an environment cannot be copied into its shadow path.
	ErrCopyFailed = zerr.New("failed to copy environment")

	// ErrSwapFailed is returned when the shadow environment cannot be switched into place.
	ErrSwapFailed = zerr.New("failed to switch environments")

	// ErrRecoveryFailed is returned when a previously interrupted swap cannot be repaired.
	ErrRecoveryFailed = zerr.New("failed to recover interrupted swap")

	// ErrNoShadowEnvironment is returned when promoting without a retained shadow environment.
	ErrNoShadowEnvironment = zerr.New("no shadow environment to promote")

	// ErrEnvironmentNotFound is returned when an operation needs an existing environment.
	ErrEnvironmentNotFound = zerr.New("environment not found")

	// ErrCommandFailed is returned when an external command exits unsuccessfully.
	ErrCommandFailed = zerr.New("command failed")

	// ErrPostInstallFailed is returned when the post-install hook of a package fails.
	ErrPostInstallFailed = zerr.New("post-install hook failed")

	// ErrStoreCreateFailed is returned when the history store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create history store directory")

	// ErrStoreReadFailed is returned when upgrade history cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read upgrade history")

	// ErrStoreUnmarshalFailed is returned when upgrade history cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal upgrade history")

	// ErrStoreMarshalFailed is returned when upgrade history cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal upgrade history")

	// ErrStoreWriteFailed is returned when upgrade history cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write upgrade history")

	// ErrUpgradeFailed is returned by batch commands when at least one result has status ERROR.
	ErrUpgradeFailed = zerr.New("upgrade finished with errors")
)
