package config

// Venvupfile represents the structure of the venvup.yaml configuration file.
// Pointer fields distinguish "not set" from the zero value.
type Venvupfile struct {
	Version     string   `yaml:"version"`
	EnvsHome    string   `yaml:"envs_home"`
	IndexURL    string   `yaml:"index_url"`
	ArchiveDir  string   `yaml:"archive_dir"`
	Python      string   `yaml:"python"`
	Baseline    []string `yaml:"baseline"`
	BlueGreen   *bool    `yaml:"blue_green"`
	AutoUpgrade *bool    `yaml:"auto_upgrade"`
	PostInstall *bool    `yaml:"post_install"`
	Parallelism *int     `yaml:"parallelism"`
	LogFormat   string   `yaml:"log_format"`
	LogLocation string   `yaml:"log_location"`
}
