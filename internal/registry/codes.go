package registry

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// codeAlphabet drops the glyphs people misread at a glance (0/O, 1/I/L... the
// lookalikes), so codes survive being dictated over voice chat.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 5

func generateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := 0; i < codeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[num.Int64()]
	}
	return string(code), nil
}

// NormalizeCode folds client-supplied room ids into canonical form: trimmed
// and upper-cased, so lookups are case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
