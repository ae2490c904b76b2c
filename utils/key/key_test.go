package key_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/galleon-dao/galleon-core/utils/key"
)

func TestKey(t *testing.T) {
	testCases := []struct {
		label    string
		key      key.Key
		expected string
	}{
		{"single particle", key.FromStr("registered"), "registered"},
		{"multiple particles", key.FromStr("chain").Append(key.FromStr("ethereum")).Append(key.FromStr("asset")), "chain_ethereum_asset"},
		{"upper case input", key.FromStr("Chain").Append(key.FromStr("Bitcoin")), "chain_bitcoin"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.label, func(t *testing.T) {
			assert.Equal(t, testCase.expected, string(testCase.key.Bytes()))
		})
	}
}

func TestKeyCustomDelimiter(t *testing.T) {
	k := key.FromStr("prefix").Append(key.FromStr("suffix"))
	assert.Equal(t, "prefix/suffix", string(k.Bytes("/")))
}

func TestFromUIntOrdering(t *testing.T) {
	previous := key.FromUInt[uint64](0).Bytes()
	for _, id := range []uint64{1, 2, 255, 256, 1 << 20, 1 << 40} {
		current := key.FromUInt(id).Bytes()
		assert.Equal(t, 8, len(current))
		assert.True(t, strings.Compare(string(previous), string(current)) < 0)
		previous = current
	}
}
