package utils

import (
	"crypto/rand"
	"math/big"
)

const referralAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ReferralCodePrefix is shared by every generated code.
const ReferralCodePrefix = "YLD"

// GenerateReferralCode returns a code like YLDA7K2M9. Uniqueness is
// enforced by the caller against the users table.
func GenerateReferralCode() string {
	code := []byte(ReferralCodePrefix)
	max := big.NewInt(int64(len(referralAlphabet)))
	for i := 0; i < 5; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			n = big.NewInt(int64(i))
		}
		code = append(code, referralAlphabet[n.Int64()])
	}
	return string(code)
}
