// Package rand provides random test data generators
package rand

import (
	"math/rand"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const letters = "abcdefghijklmnopqrstuvwxyz"

// Bytes returns a random slice of bytes of the given length
func Bytes(n int) []byte {
	bz := make([]byte, n)
	if _, err := rand.Read(bz); err != nil {
		panic(err)
	}
	return bz
}

// AccAddr returns a random account address
func AccAddr() sdk.AccAddress {
	return Bytes(20)
}

// Str returns a random lowercase string of the given length
func Str(n int) string {
	s := make([]byte, n)
	for i := range s {
		s[i] = letters[rand.Intn(len(letters))]
	}
	return string(s)
}

// Denom returns a random denomination with a length in [min, max)
func Denom(min, max int) string {
	return Str(min + rand.Intn(max-min))
}

// PosUint64 returns a random positive uint64
func PosUint64() uint64 {
	return uint64(rand.Int63()) + 1
}

// Uint64Between returns a random uint64 in [min, max)
func Uint64Between(min, max uint64) uint64 {
	return min + uint64(rand.Int63n(int64(max-min)))
}

// UintBetween returns a random math.Uint in [min, max)
func UintBetween(min, max math.Uint) math.Uint {
	return min.Add(math.NewUint(uint64(rand.Int63())).Mod(max.Sub(min)))
}

// Time returns a random time within a year of the unix epoch's 50th anniversary
func Time() time.Time {
	return time.Unix(50*365*24*60*60+rand.Int63n(365*24*60*60), 0)
}
