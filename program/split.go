package program

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/roguzh/solana-share-storage/sharestorage"
)

// shareAmount returns floor(distributable * bp / 10000) using a 128-bit
// intermediate, so the multiplication can never wrap. The quotient always
// fits in uint64 because bp <= 10000.
func shareAmount(distributable uint64, bp uint16) uint64 {
	hi, lo := bits.Mul64(distributable, uint64(bp))
	q, _ := bits.Div64(hi, lo, sharestorage.TotalBasisPoints)
	return q
}

// checkedAdd returns a+b or ErrArithmeticOverflow.
func checkedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, fmt.Errorf("%w: %d + %d", sharestorage.ErrArithmeticOverflow, a, b)
	}
	return a + b, nil
}
