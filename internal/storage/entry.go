package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"
)

// Entry records one installed file
type Entry struct {
	Seq         uint64    `json:"seq"`
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	Mode        uint32    `json:"mode"`
	Hash        string    `json:"hash"`    // SHA-256 of the installed content
	Created     bool      `json:"created"` // Target did not exist before the install
	InstalledAt time.Time `json:"installedAt"`
}

// NewEntry describes content installed at path
func NewEntry(path string, content []byte, mode os.FileMode, created bool) Entry {
	return Entry{
		Path:        path,
		Size:        int64(len(content)),
		Mode:        uint32(mode),
		Hash:        HashContent(content),
		Created:     created,
		InstalledAt: time.Now(),
	}
}

// HashContent returns the hex SHA-256 of content
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
