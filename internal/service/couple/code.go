package couple

import (
	"crypto/rand"
	"fmt"
)

// CodeAlphabet omits look-alike characters (0/O, 1/I).
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codeLength      = 6
	maxCodeAttempts = 10
)

// GenerateCode returns a random join code of codeLength characters.
func GenerateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	// 256 is a multiple of len(CodeAlphabet), so the modulo is unbiased.
	for i := range buf {
		buf[i] = CodeAlphabet[int(buf[i])%len(CodeAlphabet)]
	}
	return string(buf), nil
}
