package userbase

// KeyValuePair is a general purpose pairing of a key and its value.
type KeyValuePair[TK any, TV any] struct {
	// Key is the key part in the pair.
	Key TK
	// Value is the value part in the pair.
	Value TV
}

// Tuple is a general purpose pairing of two types, for cases where Key/Value
// connotation does not fit.
type Tuple[T1 any, T2 any] struct {
	// First tuple element.
	First T1
	// Second tuple element.
	Second T2
}
