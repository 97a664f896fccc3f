package booking

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const codeBytes = 5

// GenerateCode returns a 10 character uppercase hexadecimal booking code.
func GenerateCode() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
