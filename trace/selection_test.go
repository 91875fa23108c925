package trace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelection_Basics(t *testing.T) {
	sel := NewSelection()
	require.True(t, sel.IsEmpty())

	for _, id := range []int32{5, 1, 9, 5} {
		sel.Add(id)
	}
	require.Equal(t, 3, sel.Len())
	require.True(t, sel.Contains(5))
	require.False(t, sel.Contains(2))

	var got []int32
	for id := range sel.All() {
		got = append(got, id)
	}
	require.Equal(t, []int32{1, 5, 9}, got)
}

func TestSelection_AndOr(t *testing.T) {
	a := NewSelection()
	b := NewSelection()
	for _, id := range []int32{1, 2, 3, 4} {
		a.Add(id)
	}
	for _, id := range []int32{3, 4, 5} {
		b.Add(id)
	}

	both := a.Clone()
	both.And(b)
	require.Equal(t, 2, both.Len())
	require.True(t, both.Contains(3))
	require.False(t, both.Contains(1))

	either := a.Clone()
	either.Or(b)
	require.Equal(t, 5, either.Len())

	// Clone keeps the source intact.
	require.Equal(t, 4, a.Len())
}

func TestFieldIndex_Select(t *testing.T) {
	idx := NewFieldIndex()
	// Trace ids grouped by FFID.
	idx.Add(101, 0)
	idx.Add(101, 1)
	idx.Add(102, 2)
	idx.Add(103, 3)
	idx.Add(103, 4)

	require.ElementsMatch(t, []int64{101, 102, 103}, idx.Values())

	sel := idx.Select(101, 103)
	require.Equal(t, 4, sel.Len())
	require.True(t, sel.Contains(0))
	require.False(t, sel.Contains(2))

	none := idx.Select(999)
	require.True(t, none.IsEmpty())
}
