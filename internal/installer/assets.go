package installer

import (
	"path"
	"strings"

	"github.com/asteroid-belt/idapm/internal/models"
)

// Asset kinds the executor can install.
const (
	KindZip    = "zip"
	KindTarGz  = "tar.gz"
	KindScript = "py"
)

// AssetKind classifies a release asset by file name. It returns "" for
// anything the executor cannot install.
func AssetKind(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return KindZip
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return KindTarGz
	case strings.HasSuffix(lower, ".py"):
		return KindScript
	}
	return ""
}

// SelectAsset picks the release asset to install. Assets matching a preferred
// glob pattern win, then the first .zip, then .py, then .tar.gz. Unsupported
// assets are never selected.
func SelectAsset(assets []models.ReleaseAsset, preferred []string) (models.ReleaseAsset, bool) {
	for _, pattern := range preferred {
		pattern = strings.ToLower(pattern)
		for _, a := range assets {
			if AssetKind(a.Name) == "" {
				continue
			}
			if ok, _ := path.Match(pattern, strings.ToLower(a.Name)); ok {
				return a, true
			}
		}
	}

	for _, kind := range []string{KindZip, KindScript, KindTarGz} {
		for _, a := range assets {
			if AssetKind(a.Name) == kind {
				return a, true
			}
		}
	}
	return models.ReleaseAsset{}, false
}
