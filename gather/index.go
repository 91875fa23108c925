package gather

import (
	"errors"
	"fmt"
	"sort"
)

// ErrCapacity reports that an Index was asked to create more distinct
// keys than its declared capacity. It is fatal to the job: the capacity
// encodes what the caller believed the survey contains, so exceeding it
// means the binning or the declaration is wrong.
var ErrCapacity = errors.New("group capacity exceeded")

// ErrConfig reports invalid Index construction parameters.
var ErrConfig = errors.New("invalid configuration")

// Index is a sorted map from composite float64 keys to payloads.
//
// Keys are tuples of a fixed field count, stored flat and kept in
// strictly increasing lexicographic order with one payload per key.
// Lookup is a binary search; insertion shifts the tail. Traces arrive
// mostly in key order, so consecutive operations usually hit the entry a
// previous one touched and skip the search entirely.
//
// An Index only grows. Only one goroutine may mutate it; once writes
// stop, read-only lookups are safe from any number of goroutines.
type Index[P any] struct {
	dims     int
	maxKeys  int
	keys     []float64 // flat, dims fields per entry
	payloads []P
	last     int // entry touched by the previous Get; -1 before the first
}

// New returns an empty Index for keys of dims fields, refusing to grow
// beyond maxKeys distinct keys.
func New[P any](dims, maxKeys int) (*Index[P], error) {
	if dims < 1 {
		return nil, fmt.Errorf("gather: key needs at least one field, got %d: %w", dims, ErrConfig)
	}
	if maxKeys < 1 {
		return nil, fmt.Errorf("gather: capacity must be at least one key, got %d: %w", maxKeys, ErrConfig)
	}
	return &Index[P]{dims: dims, maxKeys: maxKeys, last: -1}, nil
}

// Len returns the number of distinct keys.
func (x *Index[P]) Len() int { return len(x.payloads) }

// Dims returns the key field count.
func (x *Index[P]) Dims() int { return x.dims }

// Cap returns the declared maximum number of distinct keys.
func (x *Index[P]) Cap() int { return x.maxKeys }

// Key returns the key of entry i in ascending order. The slice is a view
// into the index; it is valid until the next Get that inserts.
func (x *Index[P]) Key(i int) []float64 {
	return x.keys[i*x.dims : (i+1)*x.dims]
}

// Payload returns a pointer to the payload of entry i. The pointer is
// valid until the next Get that inserts.
func (x *Index[P]) Payload(i int) *P { return &x.payloads[i] }

// UpperBound returns the index of the first entry whose key is strictly
// greater than key, or Len() if there is none.
func (x *Index[P]) UpperBound(key []float64) int {
	return sort.Search(x.Len(), func(i int) bool {
		return Compare(x.Key(i), key, x.dims) > 0
	})
}

// Find returns the entry index for key and true, or the position the key
// would be inserted at and false.
func (x *Index[P]) Find(key []float64) (int, bool) {
	i := x.UpperBound(key)
	if i > 0 && Compare(x.Key(i-1), key, x.dims) == 0 {
		return i - 1, true
	}
	return i, false
}

// Get returns a pointer to the payload for key, creating the entry when
// the key is new. A new payload is produced by init, or is the zero value
// when init is nil. The pointer is valid until the next Get that inserts.
//
// Creating a key beyond the declared capacity fails with ErrCapacity and
// leaves the index unchanged.
func (x *Index[P]) Get(key []float64, init func() P) (*P, error) {
	if len(key) < x.dims {
		return nil, fmt.Errorf("gather: key has %d fields, index needs %d: %w", len(key), x.dims, ErrConfig)
	}

	if x.last >= 0 && Compare(x.Key(x.last), key, x.dims) == 0 {
		return &x.payloads[x.last], nil
	}

	i := x.UpperBound(key)
	if i > 0 && Compare(x.Key(i-1), key, x.dims) == 0 {
		x.last = i - 1
		return &x.payloads[i-1], nil
	}

	if x.Len() >= x.maxKeys {
		return nil, fmt.Errorf("gather: key %v would be distinct key %d of declared %d: %w",
			key[:x.dims], x.Len()+1, x.maxKeys, ErrCapacity)
	}

	var p P
	if init != nil {
		p = init()
	}
	x.insertAt(i, key, p)
	x.last = i
	return &x.payloads[i], nil
}

// insertAt shifts entries [i, Len()) right by one and writes the new
// entry at i.
func (x *Index[P]) insertAt(i int, key []float64, p P) {
	x.keys = append(x.keys, make([]float64, x.dims)...)
	copy(x.keys[(i+1)*x.dims:], x.keys[i*x.dims:len(x.keys)-x.dims])
	copy(x.keys[i*x.dims:(i+1)*x.dims], key[:x.dims])

	var zero P
	x.payloads = append(x.payloads, zero)
	copy(x.payloads[i+1:], x.payloads[i:len(x.payloads)-1])
	x.payloads[i] = p
}
