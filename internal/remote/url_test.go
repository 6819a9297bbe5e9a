package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepositoryURL(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantOwner string
		wantRepo  string
	}{
		{"https", "https://github.com/acme/widget", "acme", "widget"},
		{"https trailing slash", "https://github.com/acme/widget/", "acme", "widget"},
		{"https .git", "https://github.com/acme/widget.git", "acme", "widget"},
		{"http", "http://github.com/acme/widget", "acme", "widget"},
		{"ssh", "git@github.com:acme/widget.git", "acme", "widget"},
		{"short", "acme/widget", "acme", "widget"},
		{"dotted repo", "https://github.com/idapython/ida.py", "idapython", "ida.py"},
		{"whitespace", "  https://github.com/Acme/Widget  ", "Acme", "Widget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseRepositoryURL(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, ref.Owner)
			assert.Equal(t, tt.wantRepo, ref.Repo)
			assert.Equal(t, "https://github.com/"+tt.wantOwner+"/"+tt.wantRepo, ref.URL)
			assert.Equal(t, ref.URL+".git", ref.CloneURL)
		})
	}
}

func TestParseRepositoryURL_ID(t *testing.T) {
	ref, err := ParseRepositoryURL("https://github.com/Acme/Widget")
	require.NoError(t, err)
	assert.Equal(t, "acme/widget", ref.ID())
}

func TestParseRepositoryURL_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"acme",
		"acme/widget/extra",
		"https://gitlab.com/acme/widget",
		"https://github.com/acme",
		"https://github.com/acme/widget/tree/main",
		"git@github.com:acme",
		"https://github.com/-acme/widget",
		"https://github.com/acme/..",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := ParseRepositoryURL(in)
			assert.ErrorIs(t, err, ErrInvalidURL)
		})
	}
}
