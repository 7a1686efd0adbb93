// Package mask implements the byte-level mask arithmetic every bitfield read
// and write is assembled from.
package mask

// Fill returns a byte with bits [from, to) set and all other bits clear.
// Fill(0, 8) == 0xFF and Fill(x, x) == 0.
func Fill(from, to uint8) byte {
	if from >= to {
		return 0
	}
	if to > 8 {
		to = 8
	}
	return byte((uint16(1)<<to - 1) &^ (uint16(1)<<from - 1))
}

// Read returns n bits (n <= 8) of buf starting at absolute bit, shifted down
// so the first bit lands in bit 0 of the result.
func Read(buf []byte, bit int, n uint8) byte {
	idx := bit / 8
	off := uint8(bit % 8)

	if off == 0 {
		return buf[idx] & Fill(0, n)
	}

	if off+n <= 8 {
		return (buf[idx] & Fill(off, off+n)) >> off
	}

	// Straddles idx and idx+1: high bits of the first byte, low bits of the second.
	head := 8 - off
	lo := (buf[idx] & Fill(off, 8)) >> off
	hi := (buf[idx+1] & Fill(0, n-head)) << head
	return lo | hi
}

// Merge replaces the bits of dst selected by m with the same bits of src.
func Merge(dst, src, m byte) byte {
	return (dst &^ m) | (src & m)
}
