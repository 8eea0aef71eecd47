package asm

// toBytesBE returns a big-endian representation of value using the
// requested number of bytes, the 6809's native byte order for every
// multi-byte immediate, direct, extended, relative, and FDB operand.
func toBytesBE(bytes int, value int64) []byte {
	switch bytes {
	case 1:
		return []byte{byte(value)}
	case 2:
		return []byte{byte(value >> 8), byte(value)}
	default:
		panic("toBytesBE: unsupported width")
	}
}
