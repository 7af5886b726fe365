// Package intutils provides utilities for working with ints
package intutils

// Prod calculates the product of all integers in a list
func Prod(ints ...int) int {
	prod := 1
	for _, v := range ints {
		prod *= v
	}
	return prod
}
