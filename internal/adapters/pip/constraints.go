package pip

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/venvup/internal/core/domain"
)

// topLevelPattern finds the top_level.txt files of every installed distribution,
// in both the POSIX and the Windows site-packages layouts.
const topLevelPattern = "{lib,lib64}/python*/site-packages/*.dist-info/top_level.txt"

const windowsTopLevelPattern = "Lib/site-packages/*.dist-info/top_level.txt"

// FindConstraints returns the constraints file to install req with.
// An explicit path wins, then a path cached earlier in this invocation, then the
// constraints.txt shipped inside each top-level package of the installed distribution.
// Returns "" when there is none.
func FindConstraints(env domain.Environment, req domain.Requirement, explicit string, cache *domain.ConstraintsCache) string {
	if explicit != "" {
		return explicit
	}
	if p, ok := cache.Lookup(req.Name); ok {
		return p
	}

	p := discoverConstraints(env.Path, req)
	if p != "" {
		cache.Store(req.Name, p)
	}
	return p
}

func discoverConstraints(root string, req domain.Requirement) string {
	fsys := os.DirFS(root)
	distInfo := strings.ToLower(req.ArchiveName()) + "-*.dist-info"

	for _, pattern := range []string{topLevelPattern, windowsTopLevelPattern} {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			continue
		}
		for _, match := range matches {
			infoDir := path.Dir(match)
			if ok, _ := doublestar.Match(distInfo, strings.ToLower(path.Base(infoDir))); !ok {
				continue
			}
			data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(match)))
			if err != nil {
				continue
			}
			sitePackages := filepath.Join(root, filepath.FromSlash(path.Dir(infoDir)))
			for line := range strings.Lines(string(data)) {
				top := strings.TrimSpace(line)
				if top == "" {
					continue
				}
				candidate := filepath.Join(sitePackages, top, domain.ConstraintsFileName)
				if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
					return candidate
				}
			}
		}
	}
	return ""
}
