package resend

import (
	"crypto/sha256"
	"encoding/hex"
)

// IdempotencyKey возвращает ключ идемпотентности письма: первые 32 символа hex(sha256(seed)).
func IdempotencyKey(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:32]
}
