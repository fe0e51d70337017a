package draw

import (
	"crypto/rand"
	"math/big"
)

// Picker returns a uniformly distributed index in [0, n). n is always > 0.
type Picker func(n int) int

// CryptoPicker draws indexes from crypto/rand.
func CryptoPicker(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic("draw: crypto/rand unavailable: " + err.Error())
	}
	return int(v.Int64())
}
