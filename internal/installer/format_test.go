package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/idapm/internal/models"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]string
		wantFormat models.Format
		wantEntry  string
		wantErr    bool
	}{
		{
			name: "plugins.json flat",
			files: map[string]string{
				"plugins.json": `{"name": "w", "version": "1.0", "ida_version_min": "8.4"}`,
				"plugin.py":    "",
			},
			wantFormat: models.FormatModern,
			wantEntry:  "plugin.py",
		},
		{
			name: "ida-plugin.json nested",
			files: map[string]string{
				"ida-plugin.json": `{"IDAMetadataDescriptorVersion": 1, "plugin": {"name": "w", "version": "2.0", "entryPoint": "main.py"}}`,
				"main.py":         "",
			},
			wantFormat: models.FormatModern,
			wantEntry:  "main.py",
		},
		{
			name: "descriptor missing entry point",
			files: map[string]string{
				"plugins.json": `{"name": "w", "version": "1.0", "entry_point": "gone.py"}`,
			},
			wantErr: true,
		},
		{
			name:    "descriptor missing version",
			files:   map[string]string{"plugins.json": `{"name": "w"}`, "plugin.py": ""},
			wantErr: true,
		},
		{
			name:    "descriptor not json",
			files:   map[string]string{"plugins.json": `{`, "plugin.py": ""},
			wantErr: true,
		},
		{
			name: "legacy marker",
			files: map[string]string{
				"a.py": "import os\n",
				"b.py": "def PLUGIN_ENTRY():\n    pass\n",
			},
			wantFormat: models.FormatLegacy,
			wantEntry:  "b.py",
		},
		{
			name:       "lone script",
			files:      map[string]string{"only.py": "print(1)\n"},
			wantFormat: models.FormatLegacy,
			wantEntry:  "only.py",
		},
		{
			name:    "several scripts without marker",
			files:   map[string]string{"a.py": "", "b.py": ""},
			wantErr: true,
		},
		{
			name:    "nothing",
			files:   map[string]string{"README.md": "hi"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files)

			info, err := DetectFormat(dir)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStructure)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, info.Format)
			assert.Equal(t, tt.wantEntry, info.EntryPoint)
		})
	}
}

func TestDetectFormat_DescriptorVersions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"plugins.json": `{"name": "w", "version": "1.0", "ida_version_min": "8.4", "ida_version_max": "9.1"}`,
		"plugin.py":    "",
	})

	info, err := DetectFormat(dir)
	require.NoError(t, err)
	assert.Equal(t, "8.4", info.IDAVersionMin)
	assert.Equal(t, "9.1", info.IDAVersionMax)
	assert.Equal(t, "plugins.json", info.Descriptor)
	assert.Equal(t, "1.0", info.Version)
}

func TestDetectFormat_SingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"x.py": "", "x.txt": ""})

	info, err := DetectFormat(filepath.Join(dir, "x.py"))
	require.NoError(t, err)
	assert.Equal(t, models.FormatLegacy, info.Format)

	_, err = DetectFormat(filepath.Join(dir, "x.txt"))
	assert.ErrorIs(t, err, ErrInvalidStructure)

	_, err = DetectFormat(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrInvalidStructure)
}

func TestParseVersionSpec(t *testing.T) {
	tests := []struct {
		spec, min, max string
	}{
		{">=9.0", "9.0", ""},
		{"<=9.2", "", "9.2"},
		{">=8.4,<9.3", "8.4", "9.3"},
		{">=8.4 <=9.1", "8.4", "9.1"},
		{"9.1", "9.1", "9.1"},
		{"==9.0", "9.0", "9.0"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			min, max := ParseVersionSpec(tt.spec)
			assert.Equal(t, tt.min, min)
			assert.Equal(t, tt.max, max)
		})
	}
}
