package trace

import (
	"iter"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Selection is a compressed set of trace ids, used for kill lists and
// header selections. The zero Selection is not usable; call NewSelection.
type Selection struct {
	rb *roaring.Bitmap
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{rb: roaring.New()}
}

// Add puts a trace id into the selection.
func (s *Selection) Add(id int32) {
	s.rb.Add(uint32(id))
}

// Contains reports whether the selection holds id.
func (s *Selection) Contains(id int32) bool {
	return s.rb.Contains(uint32(id))
}

// Len returns the number of selected traces.
func (s *Selection) Len() int {
	return int(s.rb.GetCardinality())
}

// IsEmpty reports whether nothing is selected.
func (s *Selection) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// And narrows the selection to ids also in other.
func (s *Selection) And(other *Selection) {
	s.rb.And(other.rb)
}

// Or widens the selection with the ids in other.
func (s *Selection) Or(other *Selection) {
	s.rb.Or(other.rb)
}

// Clone returns a deep copy.
func (s *Selection) Clone() *Selection {
	return &Selection{rb: s.rb.Clone()}
}

// All iterates the selected ids in increasing order.
func (s *Selection) All() iter.Seq[int32] {
	return func(yield func(int32) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(int32(it.Next())) {
				return
			}
		}
	}
}

// FieldIndex maps header field values to the traces carrying them: a
// small inverted index built in a first pass and queried while
// streaming. Values are widened to int64 so any integer header fits.
type FieldIndex struct {
	postings map[int64]*roaring.Bitmap
}

// NewFieldIndex returns an empty index.
func NewFieldIndex() *FieldIndex {
	return &FieldIndex{postings: make(map[int64]*roaring.Bitmap)}
}

// Add records that trace id carries value.
func (fi *FieldIndex) Add(value int64, id int32) {
	rb, ok := fi.postings[value]
	if !ok {
		rb = roaring.New()
		fi.postings[value] = rb
	}
	rb.Add(uint32(id))
}

// Values returns the distinct indexed values in ascending order.
func (fi *FieldIndex) Values() []int64 {
	vals := make([]int64, 0, len(fi.postings))
	for v := range fi.postings {
		vals = append(vals, v)
	}
	slices.Sort(vals)
	return vals
}

// Select returns the traces carrying any of the given values.
func (fi *FieldIndex) Select(values ...int64) *Selection {
	s := NewSelection()
	for _, v := range values {
		if rb, ok := fi.postings[v]; ok {
			s.rb.Or(rb)
		}
	}
	return s
}
