package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SHA256Hex returns the lowercase hex digest of content. Document uploads
// are hashed on write so duplicates can be spotted later.
func SHA256Hex(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// SafeFilename strips path separators and other characters that would be
// unsafe in a name stored under the documents directory.
func SafeFilename(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", "\x00", "")
	name = replacer.Replace(name)
	if name == "" {
		return "upload"
	}
	return name
}
