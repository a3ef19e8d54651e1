// Package denomination decides which amounts the machine can take in cash.
//
// An amount is payable when it can be written as a sum of accepted
// denominations with non-negative multiplicities. Combinations enumerates
// every solution and runs in O(Π(amount/d)) over every denomination but the
// largest, so it suits small amounts only. IsPayable caps each multiplicity
// at largest/gcd(d, largest), which keeps it constant-time in the amount.
package denomination

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrEmptySet         = errors.New("denomination set is empty")
	ErrNonPositiveValue = errors.New("denomination must be positive")
	ErrDuplicateValue   = errors.New("duplicate denomination")
)

// Set is an immutable ascending list of accepted denominations.
type Set struct {
	values []int64
}

// Combination maps each denomination to how many units of it are used.
type Combination map[int64]int64

// New builds a Set from the given values in any order.
func New(values ...int64) (Set, error) {
	if len(values) == 0 {
		return Set{}, ErrEmptySet
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	for i, v := range sorted {
		if v <= 0 {
			return Set{}, fmt.Errorf("%w: %d", ErrNonPositiveValue, v)
		}
		if i > 0 && sorted[i-1] == v {
			return Set{}, fmt.Errorf("%w: %d", ErrDuplicateValue, v)
		}
	}

	return Set{values: sorted}, nil
}

// MustNew is New for package-level defaults and tests.
func MustNew(values ...int64) Set {
	s, err := New(values...)
	if err != nil {
		panic(err)
	}
	return s
}

// Values returns a copy of the denominations, smallest first.
func (s Set) Values() []int64 {
	return slices.Clone(s.values)
}

// Combinations lists every way to pay amount exactly. Zero is paid by the
// empty combination; negative amounts have none.
func (s Set) Combinations(amount int64) []Combination {
	var out []Combination
	s.search(amount, false, func(counts []int64) bool {
		c := make(Combination, len(s.values))
		for i, d := range s.values {
			c[d] = counts[i]
		}
		out = append(out, c)
		return true
	})
	return out
}

// IsPayable reports whether amount has at least one combination.
func (s Set) IsPayable(amount int64) bool {
	found := false
	s.search(amount, true, func([]int64) bool {
		found = true
		return false
	})
	return found
}

// search enumerates multiplicities of all but the largest denomination in
// lexicographic order and hands each exact match to yield. It stops early
// when yield returns false.
//
// With cyclic set, a denomination d is used fewer than largest/gcd(d, largest)
// times: that many units of d add up to a multiple of largest and can be
// swapped for it, so some solution exists within the cap whenever any does.
func (s Set) search(amount int64, cyclic bool, yield func(counts []int64) bool) {
	if amount < 0 || len(s.values) == 0 {
		return
	}

	n := len(s.values)
	largest := s.values[n-1]
	counts := make([]int64, n)

	var walk func(i int, remaining int64) bool
	walk = func(i int, remaining int64) bool {
		if i == n-1 {
			if remaining%largest != 0 {
				return true
			}
			counts[i] = remaining / largest
			return yield(slices.Clone(counts))
		}

		d := s.values[i]
		limit := remaining / d
		if cyclic {
			limit = min(limit, largest/gcd(d, largest)-1)
		}
		for k := int64(0); k <= limit; k++ {
			counts[i] = k
			if !walk(i+1, remaining-k*d) {
				return false
			}
		}
		counts[i] = 0
		return true
	}

	walk(0, amount)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
