package geom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seiskit/seiskit/spatial"
)

const stationCSV = `id,x,y,elevation,static
# receiver line 10
1001, 0.0,   0.0, 352.5, -4.0
1002, 25.0,  0.0, 353.1, -4.5
1003, 50.0,  0.0, 351.8, -3.5
2001, 0.0,  200.0, 360.0, -8.0
`

func TestReadTable(t *testing.T) {
	tab, err := ReadTable(strings.NewReader(stationCSV))
	require.NoError(t, err)
	require.Equal(t, 4, tab.Len())

	st, ok := tab.ByID(1002)
	require.True(t, ok)
	require.Equal(t, Station{ID: 1002, X: 25, Y: 0, Elevation: 353.1, Static: -4.5}, st)

	_, ok = tab.ByID(9999)
	require.False(t, ok)

	require.Equal(t, Station{ID: 1001, X: 0, Y: 0, Elevation: 352.5, Static: -4}, tab.Station(0))
}

func TestReadTable_DuplicateID(t *testing.T) {
	_, err := ReadTable(strings.NewReader("7,0,0,100,0\n7,1,1,101,0\n"))
	require.ErrorIs(t, err, ErrTable)
	require.Contains(t, err.Error(), "duplicate station id 7")
}

func TestReadTable_BadRecords(t *testing.T) {
	for name, in := range map[string]string{
		"short record":  "1,2,3\n",
		"bad id":        "one,0,0,100,0\n2,0,0,100,0\n",
		"bad elevation": "1,0,0,100,0\n2,0,0,high,0\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(in))
			require.ErrorIs(t, err, ErrTable)
		})
	}
}

func TestReadTable_HeaderOptional(t *testing.T) {
	tab, err := ReadTable(strings.NewReader("5,1,2,3,4\n"))
	require.NoError(t, err)
	require.Equal(t, 1, tab.Len())
}

func TestTable_AsSource(t *testing.T) {
	tab, err := ReadTable(strings.NewReader(stationCSV))
	require.NoError(t, err)

	tree, err := spatial.NewTree(tab, spatial.DispersedOrder)
	require.NoError(t, err)

	// The nearest station to a shot at (30, 5) is 1002 at (25, 0).
	m := tree.Nearest([]float64{30, 5}, spatial.Universe(), nil)
	require.Equal(t, 1, m.Count)
	require.Equal(t, int32(1002), tab.Station(m.Elem).ID)
	require.InDelta(t, 50.0, m.Dist2, 1e-12)
}
