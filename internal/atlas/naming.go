package atlas

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashToken is replaced by the content hash in output name templates.
const HashToken = "[hash]"

// hashLength is the number of hex digits kept from the digest.
const hashLength = 20

// Hash returns a short, stable hex digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:hashLength]
}

// NameFor substitutes the hash of data into every HashToken of template.
func NameFor(template string, data []byte) string {
	if !strings.Contains(template, HashToken) {
		return template
	}
	return strings.ReplaceAll(template, HashToken, Hash(data))
}
