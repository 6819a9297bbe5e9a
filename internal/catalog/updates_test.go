package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/idapm/internal/models"
)

func strPtr(s string) *string { return &s }

func TestUpdateInfoFor(t *testing.T) {
	tests := []struct {
		name      string
		method    models.Method
		installed string
		snap      models.RepositorySnapshot
		hasUpdate bool
		latest    string
		delta     string
	}{
		{
			name:      "clone same hash",
			method:    models.MethodClone,
			installed: "abc12345",
			snap:      models.RepositorySnapshot{LatestCommit: "abc12345ffff"},
			latest:    "abc12345",
		},
		{
			name:      "clone different hash",
			method:    models.MethodClone,
			installed: "abc12345",
			snap:      models.RepositorySnapshot{LatestCommit: "00000000ffff"},
			hasUpdate: true,
			latest:    "00000000",
			delta:     DeltaCommit,
		},
		{
			name:      "clone unknown remote",
			method:    models.MethodClone,
			installed: "abc12345",
		},
		{
			name:      "release patch",
			method:    models.MethodRelease,
			installed: "1.2.0",
			snap:      models.RepositorySnapshot{LatestRelease: &models.Release{Tag: "v1.2.1"}},
			hasUpdate: true,
			latest:    "1.2.1",
			delta:     "patch",
		},
		{
			name:      "release numeric not lexicographic",
			method:    models.MethodRelease,
			installed: "9.9",
			snap:      models.RepositorySnapshot{LatestRelease: &models.Release{Tag: "release-9.10"}},
			hasUpdate: true,
			latest:    "9.10",
			delta:     "minor",
		},
		{
			name:      "release older remote",
			method:    models.MethodRelease,
			installed: "2.0",
			snap:      models.RepositorySnapshot{LatestRelease: &models.Release{Tag: "v1.9"}},
			latest:    "1.9",
		},
		{
			name:      "release no releases",
			method:    models.MethodRelease,
			installed: "2.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.Plugin{ID: "acme/widget", Method: tt.method, InstalledVersion: strPtr(tt.installed)}
			info := updateInfoFor(p, &tt.snap)
			assert.Equal(t, tt.hasUpdate, info.HasUpdate)
			assert.Equal(t, tt.latest, info.Latest)
			assert.Equal(t, tt.delta, info.Delta)
			assert.Equal(t, tt.installed, info.Current)
		})
	}
}

func TestService_CheckPluginUpdate_NotInstalled(t *testing.T) {
	h := newHarness(t)
	p := h.addWidget(t)

	_, err := h.svc.CheckPluginUpdate(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrNotInstalled)
}

func TestService_CheckAllUpdates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	widget := h.addWidget(t)
	_, err := h.svc.InstallPlugin(ctx, widget.ID, models.MethodClone, "main")
	require.NoError(t, err)

	h.gateway.AddRepo("acme", "gadget", "main", "abc12345deadbeef")
	gadget, err := h.svc.AddPluginToCatalog(ctx, "acme/gadget")
	require.NoError(t, err)
	_, err = h.svc.InstallPlugin(ctx, gadget.ID, models.MethodClone, "main")
	require.NoError(t, err)

	h.gateway.AddRepo("acme", "idle", "main", "")
	_, err = h.svc.AddPluginToCatalog(ctx, "acme/idle")
	require.NoError(t, err)

	h.gateway.SetCommit("acme", "gadget", "main", "99999999aaaa")

	last, err := h.svc.LastUpdateCheck()
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	infos, err := h.svc.CheckAllUpdates(ctx, 2)
	require.NoError(t, err)
	require.Len(t, infos, 2, "only installed plugins are checked")

	byID := map[string]UpdateInfo{}
	for _, info := range infos {
		byID[info.PluginID] = info
	}
	assert.False(t, byID["acme/widget"].HasUpdate)
	assert.True(t, byID["acme/gadget"].HasUpdate)
	assert.Equal(t, "99999999", byID["acme/gadget"].Latest)

	last, err = h.svc.LastUpdateCheck()
	require.NoError(t, err)
	assert.True(t, last.Equal(fixedNow))
}

func TestService_CheckAllUpdates_PerPluginErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	widget := h.addWidget(t)
	_, err := h.svc.InstallPlugin(ctx, widget.ID, models.MethodClone, "main")
	require.NoError(t, err)

	h.gateway.RepoErr = errors.New("rate limited")

	infos, err := h.svc.CheckAllUpdates(ctx, 0)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.ErrorIs(t, infos[0].Err, ErrRemoteUnavailable)
	assert.False(t, infos[0].HasUpdate)
}
