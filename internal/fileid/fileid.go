// Package fileid provides deterministic document IDs and content hashes for ingested files.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strconv"
)

const (
	prefix     = "file:"
	pathPrefix = "path:"
)

// DocID returns the document ID for an uploaded file record.
func DocID(fileID int64) string {
	return prefix + strconv.FormatInt(fileID, 10)
}

// PathDocID returns a stable document ID for a file ingested straight from disk.
// Same path always yields the same ID.
func PathDocID(absolutePath string) string {
	normalized := filepath.Clean(absolutePath)
	hash := sha256.Sum256([]byte(normalized))
	return pathPrefix + hex.EncodeToString(hash[:])
}

// ContentHash returns the hex sha256 of content.
func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
