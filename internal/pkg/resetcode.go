package pkg

import (
	cryptoRand "crypto/rand"
	"math/big"
)

const resetCodeLen = 6

// NewResetCode returns the six digit one-time code that goes into the
// password-reset email.
func NewResetCode() (string, error) {
	buf := make([]byte, resetCodeLen)
	for i := range buf {
		n, err := cryptoRand.Int(cryptoRand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + n.Int64())
	}
	return string(buf), nil
}
