package circuit

import "fmt"

// BitString is an ordered classical measurement outcome, one '0'/'1' rune per
// qubit. The leftmost bit corresponds to the first qubit in whatever qubit
// order the string was produced under; order is significant end to end.
type BitString string

// BitStringFromIndex converts a basis-state index into a BitString over
// numBits bits, most significant bit first.
func BitStringFromIndex(index, numBits int) BitString {
	buf := make([]byte, numBits)
	for i := 0; i < numBits; i++ {
		if index&(1<<(numBits-1-i)) != 0 {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return BitString(buf)
}

// Index converts the BitString back into a basis-state index, treating the
// leftmost bit as most significant.
func (b BitString) Index() int {
	index := 0
	for _, r := range b {
		index <<= 1
		if r == '1' {
			index |= 1
		}
	}
	return index
}

// Bit returns the i-th bit (0 or 1), counting from the left.
func (b BitString) Bit(i int) int {
	if b[i] == '1' {
		return 1
	}
	return 0
}

// Concat appends another BitString.
func (b BitString) Concat(other BitString) BitString {
	return b + other
}

// Validate checks that the string has the expected length and contains only
// '0' and '1' runes.
func (b BitString) Validate(numBits int) error {
	if len(b) != numBits {
		return fmt.Errorf("bitstring %q has %d bits, expected %d", b, len(b), numBits)
	}
	for i := 0; i < len(b); i++ {
		if b[i] != '0' && b[i] != '1' {
			return fmt.Errorf("bitstring %q has invalid bit at position %d", b, i)
		}
	}
	return nil
}
