package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/idapm/internal/catalog"
	"github.com/asteroid-belt/idapm/internal/config"
	"github.com/asteroid-belt/idapm/internal/detect"
	"github.com/asteroid-belt/idapm/internal/installer"
	"github.com/asteroid-belt/idapm/internal/locator"
	"github.com/asteroid-belt/idapm/internal/models"
	"github.com/asteroid-belt/idapm/internal/testutil"
)

type testEnv struct {
	app        *app
	gateway    *testutil.FakeGateway
	git        *testutil.FakeGit
	pluginsDir string
	dir        string
}

// newTestEnv wires an app on fakes and makes every command use it.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	userDir := filepath.Join(root, "idausr")
	pluginsDir := filepath.Join(userDir, locator.PluginsSubdir)
	require.NoError(t, os.MkdirAll(pluginsDir, 0755))

	cfg := config.DefaultConfig()
	cfg.BaseDir = root

	env := &testEnv{
		gateway:    testutil.NewFakeGateway(),
		git:        testutil.NewFakeGit("abc12345deadbeef"),
		pluginsDir: pluginsDir,
		dir:        root,
	}

	loc := &locator.Locator{
		Getenv: func(key string) string {
			if key == locator.EnvUserDir {
				return userDir
			}
			return ""
		},
		GOOS: "linux",
		Home: root,
	}
	exec := installer.NewExecutor(env.git, &testutil.FakeDownloader{Assets: map[string][]byte{}}, installer.Options{
		BackupDir: filepath.Join(root, "backups"),
		TempDir:   t.TempDir(),
	})
	store := testutil.NewTestDB(t)
	logger := zerolog.Nop()

	env.app = &app{
		cfg:     cfg,
		store:   store,
		gateway: env.gateway,
		locator: loc,
		detector: &detect.Detector{
			GOOS:     "linux",
			Home:     root,
			Getenv:   func(string) string { return "" },
			LookPath: func(string) (string, error) { return "", errors.New("not found") },
			Glob:     func(string) ([]string, error) { return nil, nil },
		},
		logger: &logger,
		svc: catalog.NewService(store, env.gateway, exec, loc, catalog.Options{
			PreferUserDir:  true,
			BackupOnUpdate: true,
			Logger:         &logger,
		}),
	}

	prevFactory, prevInteractive, prevConfirm := appFactory, isInteractive, confirm
	appFactory = func(context.Context) (*app, error) { return env.app, nil }
	isInteractive = func() bool { return false }
	t.Cleanup(func() {
		appFactory, isInteractive, confirm = prevFactory, prevInteractive, prevConfirm
	})
	return env
}

func (e *testEnv) addRepo(name, commit string) *models.Repository {
	repo := e.gateway.AddRepo("acme", name, "main", commit)
	repo.Description = fmt.Sprintf("The %s decompiler helper", name)
	repo.Stars = 7
	return repo
}

// run executes the CLI with args and returns stdout, stderr and the error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCmd_Structure(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "idapm", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"add", "install", "update", "uninstall", "remove", "list", "search", "info", "history", "scan", "outdated", "detect", "discover", "export", "import"} {
		assert.Contains(t, names, want)
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("wrapped: %w", &catalog.OpError{Op: "install", Kind: catalog.ErrCloneFailed})))
	assert.Equal(t, 130, ExitCode(context.Canceled))
	assert.Equal(t, 2, ExitCode(errors.New("boom")))
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		flag, configured string
		want             models.Method
		wantErr          bool
	}{
		{"", "clone", models.MethodClone, false},
		{"release", "clone", models.MethodRelease, false},
		{" Release ", "clone", models.MethodRelease, false},
		{"auto", "clone", models.MethodUnknown, false},
		{"", "auto", models.MethodUnknown, false},
		{"copy", "clone", models.MethodUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.flag+"/"+tt.configured, func(t *testing.T) {
			got, err := parseMethod(tt.flag, tt.configured)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionRange(t *testing.T) {
	s := func(v string) *string { return &v }
	tests := []struct {
		min, max *string
		want     string
	}{
		{nil, nil, "any"},
		{s("9.0"), nil, ">= 9.0"},
		{nil, s("9.1"), "<= 9.1"},
		{s("9.1"), s("9.1"), "9.1"},
		{s("8.4"), s("9.1"), "8.4 - 9.1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, versionRange(&models.Plugin{IDAVersionMin: tt.min, IDAVersionMax: tt.max}))
	}
}

func TestFormatTimeSince(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{time.Hour, "1 hour ago"},
		{3 * time.Hour, "3 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{3 * 24 * time.Hour, "3 days ago"},
		{30 * 24 * time.Hour, "2025-05-02"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatTimeSince(now.Add(-tt.ago), now))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
