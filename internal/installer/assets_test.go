package installer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asteroid-belt/idapm/internal/models"
)

func assets(names ...string) []models.ReleaseAsset {
	out := make([]models.ReleaseAsset, len(names))
	for i, n := range names {
		out[i] = models.ReleaseAsset{ID: int64(i + 1), Name: n}
	}
	return out
}

func TestAssetKind(t *testing.T) {
	assert.Equal(t, KindZip, AssetKind("Widget.ZIP"))
	assert.Equal(t, KindTarGz, AssetKind("w.tar.gz"))
	assert.Equal(t, KindTarGz, AssetKind("w.tgz"))
	assert.Equal(t, KindScript, AssetKind("w.py"))
	assert.Empty(t, AssetKind("w.7z"))
	assert.Empty(t, AssetKind("checksums.txt"))
}

func TestSelectAsset(t *testing.T) {
	tests := []struct {
		name      string
		assets    []models.ReleaseAsset
		preferred []string
		want      string
		wantOK    bool
	}{
		{"zip before py", assets("w.py", "w.zip"), nil, "w.zip", true},
		{"py before tarball", assets("w.tar.gz", "w.py"), nil, "w.py", true},
		{"tarball last resort", assets("notes.txt", "w.tgz"), nil, "w.tgz", true},
		{"preferred pattern wins", assets("w-ida8.zip", "w-ida9.zip"), []string{"*-ida9.zip"}, "w-ida9.zip", true},
		{"preferred ignores unsupported", assets("w-ida9.7z", "w.zip"), []string{"*-ida9*"}, "w.zip", true},
		{"nothing installable", assets("w.7z", "w.exe"), nil, "", false},
		{"no assets", nil, nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectAsset(tt.assets, tt.preferred)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}
