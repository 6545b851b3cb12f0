// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exchange

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestGetOutputAmount(t *testing.T) {
	tests := []struct {
		name          string
		inputAmount   uint64
		inputReserve  uint64
		outputReserve uint64
		expected      uint64
	}{
		{
			name:          "reference quote",
			inputAmount:   100,
			inputReserve:  1000,
			outputReserve: 1000,
			expected:      90, // 99*100*1000 / (1000*100 + 99*100) = 9900000/109900
		},
		{
			name:          "balanced pool small trade",
			inputAmount:   1,
			inputReserve:  1000,
			outputReserve: 1000,
			expected:      0, // 99*1000/100099 truncates to zero
		},
		{
			name:          "asymmetric reserves",
			inputAmount:   100,
			inputReserve:  1000,
			outputReserve: 2000,
			expected:      180,
		},
		{
			name:          "input dwarfs reserve",
			inputAmount:   1000000,
			inputReserve:  1000,
			outputReserve: 1000,
			expected:      998, // can never pay out the full reserve
		},
		{
			name:          "one token reserve",
			inputAmount:   100,
			inputReserve:  1,
			outputReserve: 1,
			expected:      0, // 9900/10000
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := GetOutputAmount(
				uint256.NewInt(tt.inputAmount),
				uint256.NewInt(tt.inputReserve),
				uint256.NewInt(tt.outputReserve),
			)
			require.NoError(t, err)
			require.Equal(t, tt.expected, out.Uint64())
		})
	}
}

func TestGetOutputAmountInvalidReserves(t *testing.T) {
	_, err := GetOutputAmount(uint256.NewInt(100), uint256.NewInt(0), uint256.NewInt(1000))
	require.ErrorIs(t, err, ErrInvalidReserves)

	_, err = GetOutputAmount(uint256.NewInt(100), uint256.NewInt(1000), uint256.NewInt(0))
	require.ErrorIs(t, err, ErrInvalidReserves)

	_, err = GetOutputAmount(uint256.NewInt(100), uint256.NewInt(0), uint256.NewInt(0))
	require.ErrorIs(t, err, ErrInvalidReserves)
}

func TestGetOutputAmountZeroInput(t *testing.T) {
	out, err := GetOutputAmount(uint256.NewInt(0), uint256.NewInt(1000), uint256.NewInt(1000))
	require.NoError(t, err)
	require.True(t, out.IsZero())
}

func TestGetOutputAmountOverflow(t *testing.T) {
	maxUint256 := new(uint256.Int).SetAllOne()

	_, err := GetOutputAmount(maxUint256, uint256.NewInt(1000), uint256.NewInt(1000))
	require.ErrorIs(t, err, ErrOverflow)

	_, err = GetOutputAmount(uint256.NewInt(1000), maxUint256, uint256.NewInt(1000))
	require.ErrorIs(t, err, ErrOverflow)
}

func TestGetOutputAmountNeverDrainsReserve(t *testing.T) {
	// However large the input, the output stays strictly below the reserve.
	reserves := []uint64{1, 2, 10, 1000, 1000000}
	inputs := []uint64{1, 1000, 1000000, 1 << 40}

	for _, reserve := range reserves {
		for _, input := range inputs {
			out, err := GetOutputAmount(
				uint256.NewInt(input),
				uint256.NewInt(reserve),
				uint256.NewInt(reserve),
			)
			require.NoError(t, err)
			require.True(t, out.Lt(uint256.NewInt(reserve)),
				"input %d against reserve %d paid out %s", input, reserve, out)
		}
	}
}

func TestGetOutputAmountProductNeverDecreases(t *testing.T) {
	// After a fee-adjusted swap the reserve product must not fall below the
	// pre-swap product: truncation plus the fee always leave the pool ahead.
	cases := []struct {
		input, inputReserve, outputReserve uint64
	}{
		{1, 1000, 1000},
		{100, 1000, 1000},
		{333, 777, 12345},
		{1000000, 5000, 300},
		{7, 2, 1000000},
	}

	for _, c := range cases {
		out, err := GetOutputAmount(
			uint256.NewInt(c.input),
			uint256.NewInt(c.inputReserve),
			uint256.NewInt(c.outputReserve),
		)
		require.NoError(t, err)

		before := new(uint256.Int).Mul(uint256.NewInt(c.inputReserve), uint256.NewInt(c.outputReserve))
		newIn := new(uint256.Int).Add(uint256.NewInt(c.inputReserve), uint256.NewInt(c.input))
		newOut := new(uint256.Int).Sub(uint256.NewInt(c.outputReserve), out)
		after := new(uint256.Int).Mul(newIn, newOut)

		require.False(t, after.Lt(before),
			"product decreased: %s -> %s (input %d, reserves %d/%d)",
			before, after, c.input, c.inputReserve, c.outputReserve)
	}
}

func TestGetOutputAmountMonotonic(t *testing.T) {
	// A larger input never buys less output.
	prev := uint256.NewInt(0)
	for input := uint64(1); input <= 5000; input += 97 {
		out, err := GetOutputAmount(uint256.NewInt(input), uint256.NewInt(10000), uint256.NewInt(10000))
		require.NoError(t, err)
		require.False(t, out.Lt(prev), "output decreased at input %d", input)
		prev = out
	}
}

func BenchmarkGetOutputAmount(b *testing.B) {
	input := uint256.NewInt(12345)
	inputReserve := uint256.NewInt(1000000)
	outputReserve := uint256.NewInt(2000000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		GetOutputAmount(input, inputReserve, outputReserve)
	}
}
