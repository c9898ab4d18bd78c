package diag

// PositionToIndex converts a 1-based line and column, as reported by the
// JavaScript parser, into a byte index of src. Positions beyond the end of a
// line or of the source are clamped.
func PositionToIndex(src string, line, col int) int {
	if line < 1 {
		return 0
	}
	idx := 0
	for l := 1; l < line; l++ {
		i := indexByteFrom(src, '\n', idx)
		if i == -1 {
			return len(src)
		}
		idx = i + 1
	}
	lineEnd := indexByteFrom(src, '\n', idx)
	if lineEnd == -1 {
		lineEnd = len(src)
	}
	if col < 1 {
		col = 1
	}
	if idx+col-1 > lineEnd {
		return lineEnd
	}
	return idx + col - 1
}

// IndexToPosition is the inverse of PositionToIndex. Both line and column are
// 1-based; columns count bytes.
func IndexToPosition(src string, idx int) (line, col int) {
	if idx > len(src) {
		idx = len(src)
	}
	line, col = 1, 1
	for i := 0; i < idx; i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func indexByteFrom(s string, b byte, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
