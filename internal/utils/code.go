package utils

import (
	"crypto/rand"
	"math/big"
)

// Alphabet for customer-facing codes. Drops easily confused characters
// (0/O, 1/I) so support staff can read codes back over the phone.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const confirmationCodeLength = 10

// RandomString returns n characters drawn from alphabet using crypto/rand.
func RandomString(alphabet string, n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}

// GenerateConfirmationCode returns a voucher confirmation code.
func GenerateConfirmationCode() (string, error) {
	return RandomString(codeAlphabet, confirmationCodeLength)
}
