// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exchange

import "github.com/holiman/uint256"

// Fee parameters for the constant-product curve: a 1% fee is taken from the
// input side, so only 99/100 of the input amount trades against the curve.
const (
	feeNumerator   = 99
	feeDenominator = 100
)

// GetOutputAmount prices a swap of [inputAmount] against a pool holding
// [inputReserve] of the input asset and [outputReserve] of the output asset:
//
//	out = (in*99 * outputReserve) / (inputReserve*100 + in*99)
//
// This is x*y=k solved for the output delta given the fee-reduced input
// delta. Division truncates, so the output always rounds down in the pool's
// favor. The function is pure: no state is read or written.
func GetOutputAmount(inputAmount, inputReserve, outputReserve *uint256.Int) (*uint256.Int, error) {
	if inputReserve.IsZero() || outputReserve.IsZero() {
		return nil, ErrInvalidReserves
	}

	inputWithFee, overflow := new(uint256.Int).MulOverflow(inputAmount, uint256.NewInt(feeNumerator))
	if overflow {
		return nil, ErrOverflow
	}

	numerator, overflow := new(uint256.Int).MulOverflow(inputWithFee, outputReserve)
	if overflow {
		return nil, ErrOverflow
	}

	scaledReserve, overflow := new(uint256.Int).MulOverflow(inputReserve, uint256.NewInt(feeDenominator))
	if overflow {
		return nil, ErrOverflow
	}
	denominator, overflow := new(uint256.Int).AddOverflow(scaledReserve, inputWithFee)
	if overflow {
		return nil, ErrOverflow
	}

	return numerator.Div(numerator, denominator), nil
}
