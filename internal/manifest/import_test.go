package manifest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/idapm/internal/catalog"
	"github.com/asteroid-belt/idapm/internal/models"
)

type fakeAdder struct {
	existing map[string]bool
	fail     map[string]error
	urls     []string
}

func (f *fakeAdder) AddPluginToCatalog(_ context.Context, url string) (*models.Plugin, error) {
	f.urls = append(f.urls, url)
	if err := f.fail[url]; err != nil {
		return nil, err
	}
	if f.existing[url] {
		return nil, &catalog.OpError{Op: "add", Kind: catalog.ErrDuplicatePlugin}
	}
	return &models.Plugin{ID: url}, nil
}

func TestImport(t *testing.T) {
	mf := New()
	mf.Plugins["acme/widget"] = Entry{URL: "https://github.com/acme/widget"}
	mf.Plugins["acme/gadget"] = Entry{URL: "https://github.com/acme/gadget"}
	mf.Plugins["acme/bare"] = Entry{}
	mf.Plugins["acme/broken"] = Entry{URL: "https://github.com/acme/broken"}

	boom := errors.New("boom")
	adder := &fakeAdder{
		existing: map[string]bool{"https://github.com/acme/gadget": true},
		fail:     map[string]error{"https://github.com/acme/broken": boom},
	}

	res, err := Import(context.Background(), adder, mf)
	require.NoError(t, err)

	assert.Equal(t, []string{"acme/bare", "acme/widget"}, res.Added)
	assert.Equal(t, []string{"acme/gadget"}, res.Duplicates)
	assert.Equal(t, map[string]error{"acme/broken": boom}, res.Failed)
	assert.Equal(t, "acme/bare", adder.urls[0], "an entry without url falls back to its id")
}

func TestImport_Canceled(t *testing.T) {
	mf := New()
	mf.Plugins["acme/widget"] = Entry{URL: "acme/widget"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	adder := &fakeAdder{}
	_, err := Import(ctx, adder, mf)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, adder.urls)
}
