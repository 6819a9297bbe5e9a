package hash

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sha256("hello world")
const helloDigest = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func TestCopySHA256(t *testing.T) {
	var buf bytes.Buffer
	digest, n, err := CopySHA256(&buf, strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.Equal(t, helloDigest, digest)
	assert.Equal(t, int64(11), n)
	assert.Equal(t, "hello world", buf.String())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestCopySHA256_ReadError(t *testing.T) {
	digest, _, err := CopySHA256(io.Discard, failingReader{})
	assert.Error(t, err)
	assert.Empty(t, digest)
}
