// Package hash provides hashing for downloaded release assets.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// CopySHA256 copies src to dst and returns the hex SHA256 of the bytes copied.
func CopySHA256(dst io.Writer, src io.Reader) (digest string, n int64, err error) {
	h := sha256.New()
	n, err = io.Copy(io.MultiWriter(dst, h), src)
	if err != nil {
		return "", n, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
