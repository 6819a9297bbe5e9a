package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/idapm/internal/models"
)

func newPlugin(id string) *models.Plugin {
	owner, repo, _ := splitID(id)
	return &models.Plugin{
		ID:            id,
		Name:          repo,
		Author:        owner,
		RepositoryURL: "https://github.com/" + id,
		Format:        models.FormatLegacy,
		Status:        models.StatusNotInstalled,
		Method:        models.MethodUnknown,
	}
}

func splitID(id string) (string, string, bool) {
	for i := 0; i < len(id); i++ {
		if id[i] == '/' {
			return id[:i], id[i+1:], true
		}
	}
	return id, "", false
}

func TestDB_SaveAndFind(t *testing.T) {
	db := testDB(t)

	p := newPlugin("acme/widget")
	p.Description = "A decompiler helper"
	p.Tags = []string{"decompiler", "analysis"}
	p.Metadata = models.Metadata{"stars": 42, "default_branch": "main"}
	min := "8.4"
	p.IDAVersionMin = &min

	require.NoError(t, db.Save(p))

	got, err := db.FindByID("acme/widget")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "widget", got.Name)
	assert.Equal(t, []string{"decompiler", "analysis"}, got.Tags)
	assert.Equal(t, "main", got.Metadata.String("default_branch"))
	assert.Equal(t, "42", got.Metadata.String("stars"))
	require.NotNil(t, got.IDAVersionMin)
	assert.Equal(t, "8.4", *got.IDAVersionMin)
	assert.Nil(t, got.IDAVersionMax)
	assert.False(t, got.AddedAt.IsZero())
}

func TestDB_FindByID_Missing(t *testing.T) {
	db := testDB(t)

	got, err := db.FindByID("nobody/nothing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDB_Save_UpdatesExisting(t *testing.T) {
	db := testDB(t)

	p := newPlugin("acme/widget")
	added := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p.AddedAt = added
	require.NoError(t, db.Save(p))

	p.MarkInstalled("abc12345", "/plugins/widget", models.MethodClone)
	require.NoError(t, db.Save(p))

	got, err := db.FindByID("acme/widget")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInstalled, got.Status)
	assert.Equal(t, "abc12345", *got.InstalledVersion)
	assert.Equal(t, "/plugins/widget", *got.InstallPath)
	assert.Equal(t, models.MethodClone, got.Method)
	assert.True(t, added.Equal(got.AddedAt.UTC()))

	// Clearing pointers must persist as NULL.
	got.MarkNotInstalled()
	require.NoError(t, db.Save(got))

	again, err := db.FindByID("acme/widget")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotInstalled, again.Status)
	assert.Nil(t, again.InstalledVersion)
	assert.Nil(t, again.InstallPath)

	var count int64
	require.NoError(t, db.Model(&models.Plugin{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDB_Save_VersionBounds(t *testing.T) {
	db := testDB(t)

	assert.True(t, db.Migrator().HasColumn(&models.Plugin{}, "ida_version_min"))
	assert.True(t, db.Migrator().HasColumn(&models.Plugin{}, "ida_version_max"))

	p := newPlugin("acme/widget")
	require.NoError(t, db.Save(p))

	// The second save takes the upsert path and rewrites both bounds.
	min, max := "8.4", "9.1"
	p.IDAVersionMin = &min
	p.IDAVersionMax = &max
	require.NoError(t, db.Save(p))

	got, err := db.FindByID("acme/widget")
	require.NoError(t, err)
	require.NotNil(t, got.IDAVersionMin)
	require.NotNil(t, got.IDAVersionMax)
	assert.Equal(t, "8.4", *got.IDAVersionMin)
	assert.Equal(t, "9.1", *got.IDAVersionMax)
}

func TestDB_CreatePlugin_Duplicate(t *testing.T) {
	db := testDB(t)

	first := newPlugin("acme/widget")
	first.Description = "original"
	require.NoError(t, db.CreatePlugin(first))

	second := newPlugin("acme/widget")
	second.Description = "overwrite attempt"
	err := db.CreatePlugin(second)
	require.ErrorIs(t, err, ErrDuplicate)

	got, err := db.FindByID("acme/widget")
	require.NoError(t, err)
	assert.Equal(t, "original", got.Description)
}

func TestDB_FindAll_Filters(t *testing.T) {
	db := testDB(t)

	widget := newPlugin("acme/widget")
	widget.Description = "Decompiler helpers"
	widget.Tags = []string{"decompiler"}
	widget.MarkInstalled("1.0", "/p/widget", models.MethodRelease)

	gadget := newPlugin("acme/gadget")
	gadget.Description = "Debugger glue"
	gadget.Tags = []string{"debugger", "ui"}

	other := newPlugin("zed/anything")
	other.Tags = []string{"ui"}

	for _, p := range []*models.Plugin{widget, gadget, other} {
		require.NoError(t, db.Save(p))
	}

	tests := []struct {
		name   string
		filter models.PluginFilter
		want   []string
	}{
		{"all ordered by name", models.PluginFilter{}, []string{"zed/anything", "acme/gadget", "acme/widget"}},
		{"status", models.PluginFilter{Status: models.StatusInstalled}, []string{"acme/widget"}},
		{"tag", models.PluginFilter{Tag: "ui"}, []string{"zed/anything", "acme/gadget"}},
		{"tag is exact", models.PluginFilter{Tag: "debug"}, nil},
		{"query description", models.PluginFilter{Query: "DEBUGGER"}, []string{"acme/gadget"}},
		{"query author", models.PluginFilter{Query: "acme"}, []string{"acme/gadget", "acme/widget"}},
		{"query percent is literal", models.PluginFilter{Query: "%"}, nil},
		{"combined", models.PluginFilter{Tag: "ui", Query: "glue"}, []string{"acme/gadget"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.FindAll(tt.filter)
			require.NoError(t, err)
			var ids []string
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestDB_Delete_CascadesHistory(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.Save(newPlugin("acme/widget")))
	require.NoError(t, db.Save(newPlugin("acme/gadget")))
	require.NoError(t, db.AppendHistory(&models.InstallationHistory{PluginID: "acme/widget", Action: models.ActionInstall, Success: true}))
	require.NoError(t, db.AppendHistory(&models.InstallationHistory{PluginID: "acme/gadget", Action: models.ActionInstall, Success: true}))

	found, err := db.Delete("acme/widget")
	require.NoError(t, err)
	assert.True(t, found)

	p, err := db.FindByID("acme/widget")
	require.NoError(t, err)
	assert.Nil(t, p)

	history, err := db.FindHistory("acme/widget")
	require.NoError(t, err)
	assert.Empty(t, history)

	others, err := db.FindHistory("acme/gadget")
	require.NoError(t, err)
	assert.Len(t, others, 1)

	found, err = db.Delete("acme/widget")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDB_SearchPlugins(t *testing.T) {
	db := testDB(t)

	widget := newPlugin("acme/widget")
	widget.Description = "Structure recovery for the decompiler"
	gadget := newPlugin("acme/gadget")
	gadget.Description = "Remote debugger bridge"

	require.NoError(t, db.Save(widget))
	require.NoError(t, db.Save(gadget))

	got, err := db.SearchPlugins("decomp", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "acme/widget", got[0].ID)

	// Updates flow through the FTS triggers.
	gadget.Description = "Decompiler output diffing"
	require.NoError(t, db.Save(gadget))

	got, err = db.SearchPlugins("decompiler", 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = db.Delete("acme/widget")
	require.NoError(t, err)

	got, err = db.SearchPlugins("decompiler", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "acme/gadget", got[0].ID)

	got, err = db.SearchPlugins("  ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"widget", `"widget"*`},
		{"ida-pro plugin", `"ida"* "pro"* "plugin"*`},
		{`"quoted" (x)`, `"quoted"* "x"*`},
		{"acme/widget", `"acme"* "widget"*`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, prepareFTSQuery(tt.in))
		})
	}
}
