package diag

import (
	"testing"

	"src.livedoc.dev/pkg/tt"
)

func TestPositionToIndex(t *testing.T) {
	tt.Test(t, tt.Fn("PositionToIndex", PositionToIndex), tt.Table{
		tt.Args("a = 1", 1, 1).Rets(0),
		tt.Args("a = 1", 1, 5).Rets(4),
		tt.Args("a = 1\nb = ;", 2, 5).Rets(10),
		// Clamped to the end of the line.
		tt.Args("a\nbc", 1, 10).Rets(1),
		// Clamped to the end of the source.
		tt.Args("a\nbc", 5, 1).Rets(4),
		tt.Args("abc", 0, 0).Rets(0),
	})
}

func TestIndexToPosition(t *testing.T) {
	tt.Test(t, tt.Fn("IndexToPosition", IndexToPosition), tt.Table{
		tt.Args("a = 1", 0).Rets(1, 1),
		tt.Args("a = 1\nb = ;", 10).Rets(2, 5),
		tt.Args("ab", 100).Rets(1, 3),
	})
}

func TestRangingContains(t *testing.T) {
	r := Ranging{2, 5}
	tt.Test(t, tt.Fn("Contains", r.Contains), tt.Table{
		tt.Args(1).Rets(false),
		tt.Args(2).Rets(true),
		tt.Args(5).Rets(true),
		tt.Args(6).Rets(false),
	})
}
