package reactor

import "github.com/cespare/xxhash/v2"

// Key identifies a dependency slot within a target: either a string
// property name or one of the reserved sentinel keys below. It is
// comparable so it can key a reactive wrapper's per-slot Dep table.
type Key struct {
	name     string
	sentinel uint64
}

// StringKey builds a Key for an ordinary string-named property.
func StringKey(name string) Key {
	return Key{name: name}
}

func sentinelKey(name string) Key {
	return Key{name: name, sentinel: xxhash.Sum64String(name)&0x7fffffffffffffff | 1}
}

func (k Key) String() string {
	return k.name
}

// IsSentinel reports whether k is one of the reserved tracking keys
// (IterateKey, MapKeyIterateKey, ArrayLengthKey) rather than a real
// user property name.
func (k Key) IsSentinel() bool {
	return k.sentinel != 0
}

// Reserved sentinel keys. They can never collide with a user-supplied
// property name because their sentinel field is non-zero while
// StringKey never sets it.
var (
	// IterateKey is tracked by ownKeys()-style reads (object key
	// enumeration, Map/Set forEach and default iteration) and
	// triggered by any write that adds or removes a key.
	IterateKey = sentinelKey("reactor.IterateKey")

	// MapKeyIterateKey is tracked by a reactive Map's Keys() iterator
	// specifically, so that a write that only changes an existing
	// key's value (not the key set) does not re-run subscribers that
	// only care about which keys exist.
	MapKeyIterateKey = sentinelKey("reactor.MapKeyIterateKey")

	// ArrayLengthKey is tracked by array length reads and triggered
	// once by any mutation that can change length, instead of once
	// per shifted index.
	ArrayLengthKey = sentinelKey("reactor.ArrayLengthKey")
)
