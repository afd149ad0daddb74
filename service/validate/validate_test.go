package validate

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWellFormedAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{"real wallet address", "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", true},
		{"token program address", "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", true},
		{"sysvar address", "SysvarRent111111111111111111111111111111111", true},
		{"usdc mint", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", true},
		{"empty string", "", false},
		{"too short", strings.Repeat("1", 20), false},
		{"too long", strings.Repeat("A", 50), false},
		{"contains zero", "0xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", false},
		{"contains capital O", "OxKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", false},
		{"contains capital I", "IxKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", false},
		{"contains lowercase l", "lxKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", false},
		{"whitespace inside", "7xKXtg2CW87d 7TXJSDpbD5jBkheTqA83TZRuJosgAsU", false},
		{"trailing whitespace", "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU ", false},
		// 44 base58 chars can encode more than 32 bytes; the decode check
		// must reject those even though the regex matches.
		{"44 z chars decodes too wide", strings.Repeat("z", 44), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWellFormedAddress(tt.address))
		})
	}
}

func TestMintAndPoolShareAddressFormat(t *testing.T) {
	// The structural check is deliberately identical for all three entity
	// kinds; the classifier disambiguates by context.
	for _, s := range []string{
		"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		"7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
	} {
		assert.True(t, IsWellFormedAddress(s))
		assert.True(t, IsWellFormedMint(s))
		assert.True(t, IsWellFormedPoolID(s))
	}

	for _, s := range []string{"", "nope", "0000"} {
		assert.False(t, IsWellFormedAddress(s))
		assert.False(t, IsWellFormedMint(s))
		assert.False(t, IsWellFormedPoolID(s))
	}
}

func TestIsPositiveAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   bool
	}{
		{"positive", 0.5, true},
		{"large", 1e12, true},
		{"smallest positive", math.SmallestNonzeroFloat64, true},
		{"zero", 0, false},
		{"negative", -1, false},
		{"NaN", math.NaN(), false},
		{"positive infinity", math.Inf(1), false},
		{"negative infinity", math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPositiveAmount(tt.amount))
		})
	}
}

func TestFilterValidMints(t *testing.T) {
	in := []string{
		"badmint!",
		"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		"",
		"7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
	}
	got := FilterValidMints(in)
	assert.Equal(t, []string{
		"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		"7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
	}, got)

	assert.Empty(t, FilterValidMints([]string{"badmint!"}))
	assert.Empty(t, FilterValidMints(nil))
}
