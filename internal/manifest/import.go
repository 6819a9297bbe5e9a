package manifest

import (
	"context"
	"errors"

	"github.com/asteroid-belt/idapm/internal/catalog"
	"github.com/asteroid-belt/idapm/internal/models"
)

// Adder adds a repository to the catalog.
type Adder interface {
	AddPluginToCatalog(ctx context.Context, url string) (*models.Plugin, error)
}

// ImportResult summarizes an import. Duplicates are plugins already in the
// catalog; they are not an error.
type ImportResult struct {
	Added      []string
	Duplicates []string
	Failed     map[string]error
}

// Import adds every manifest entry missing from the catalog, in identifier
// order. It stops early only when ctx is done.
func Import(ctx context.Context, adder Adder, mf *ManifestFile) (*ImportResult, error) {
	res := &ImportResult{Failed: make(map[string]error)}

	for _, id := range mf.SortedIDs() {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		url := mf.Plugins[id].URL
		if url == "" {
			url = id
		}

		_, err := adder.AddPluginToCatalog(ctx, url)
		switch {
		case err == nil:
			res.Added = append(res.Added, id)
		case errors.Is(err, catalog.ErrDuplicatePlugin):
			res.Duplicates = append(res.Duplicates, id)
		default:
			res.Failed[id] = err
		}
	}
	return res, nil
}
