// Package learned implements a concurrent learned index: an in-memory,
// ordered key-to-value container whose internal nodes predict a child
// slot's position with a per-node linear model instead of doing a binary
// search.
package learned

import "golang.org/x/exp/constraints"

// Numeric bounds the key type to anything that supports ordering and
// double-valued linear interpolation, the Go rendering of the original
// LIPP template's `static_assert(std::is_arithmetic<T>::value, ...)`.
type Numeric interface {
	constraints.Integer | constraints.Float
}
