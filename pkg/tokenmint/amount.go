package tokenmint

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// maxScalingDecimals is the largest exponent for which 10^decimals fits in
// a uint64.
const maxScalingDecimals = 19

// ScaleSupply returns supply × 10^decimals in base units, failing when the
// result does not fit the ledger's uint64 amount.
func ScaleSupply(supply uint64, decimals uint8) (uint64, error) {
	if supply == 0 {
		return 0, nil
	}
	if decimals > maxScalingDecimals {
		return 0, fmt.Errorf("supply %d with %d decimals exceeds the maximum amount %d", supply, decimals, uint64(math.MaxUint64))
	}

	factor := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
	amount, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(supply), factor)
	if overflow || !amount.IsUint64() {
		return 0, fmt.Errorf("supply %d with %d decimals exceeds the maximum amount %d", supply, decimals, uint64(math.MaxUint64))
	}
	return amount.Uint64(), nil
}

// MaxSupply returns the largest supply that ScaleSupply accepts for
// decimals.
func MaxSupply(decimals uint8) uint64 {
	if decimals > maxScalingDecimals {
		return 0
	}
	factor := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
	return new(uint256.Int).Div(uint256.NewInt(math.MaxUint64), factor).Uint64()
}

// FormatUIAmount renders base units as a decimal string with exactly
// decimals fractional digits.
func FormatUIAmount(amount uint64, decimals uint8) string {
	value := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals))
	return value.StringFixed(int32(decimals))
}

// ParseSupply parses a whole-token supply such as "1000" or "1_000_000".
func ParseSupply(input string) (uint64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(input), "_", "")
	if cleaned == "" {
		return 0, fmt.Errorf("supply is required")
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid supply %q: %w", input, err)
	}
	if value.IsNegative() {
		return 0, fmt.Errorf("supply cannot be negative")
	}
	if !value.Equal(value.Truncate(0)) {
		return 0, fmt.Errorf("supply must be a whole number of tokens")
	}

	limit := decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)
	if value.GreaterThan(limit) {
		return 0, fmt.Errorf("supply %s exceeds %d", value.String(), uint64(math.MaxUint64))
	}
	return value.BigInt().Uint64(), nil
}
