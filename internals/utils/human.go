package utils

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"golang.org/x/exp/constraints"
)

// HumanInteger returns the number in a human readable format
func HumanInteger[N constraints.Integer](input N) string {
	num := uint64(input)
	switch {
	case num >= 1000000000:
		return fmt.Sprintf("%v B", num/1000000000)
	case num >= 1000000:
		return fmt.Sprintf("%v M", num/1000000)
	case num >= 1000:
		return fmt.Sprintf("%v K", num/1000)
	}
	return fmt.Sprintf("%v", num)
}

// HumanBytes returns a byte count like "12 MiB"
func HumanBytes[N constraints.Integer](input N) string {
	if input < 0 {
		input = 0
	}
	return humanize.IBytes(uint64(input))
}
