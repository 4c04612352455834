// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fnv1a implements the 64-bit FNV-1a hash with the normative
// constants adopted by the Dominium kernel for process-kind ids and
// audit log identity hashing. Any cross-implementation hash match
// depends on these exact constants and the exact byte sequence fed in.
package fnv1a

const (
	offset64 uint64 = 1469598103934665603
	prime64  uint64 = 1099511628211
)

// New returns the offset basis to begin a streaming hash.
func New() uint64 {
	return offset64
}

// WriteByte folds a single byte into a running hash value.
func WriteByte(h uint64, b byte) uint64 {
	h ^= uint64(b)
	h *= prime64
	return h
}

// WriteString folds a string into a running hash value.
func WriteString(h uint64, s string) uint64 {
	for i := 0; i < len(s); i++ {
		h = WriteByte(h, s[i])
	}
	return h
}

// WriteBytes folds a byte slice into a running hash value.
func WriteBytes(h uint64, b []byte) uint64 {
	for _, c := range b {
		h = WriteByte(h, c)
	}
	return h
}

// Sum64String hashes a string key, remapping a zero result to 1 so the
// hash never collides with the "absent" id sentinel.
func Sum64String(key string) uint64 {
	h := WriteString(offset64, key)
	if h == 0 {
		return 1
	}
	return h
}

// Sum64Bytes hashes an arbitrary byte payload, e.g. an audit log or a
// chunk's serialized body, with no zero-remap (identity hashes of an
// empty or degenerate payload are legitimate and must not be coerced).
func Sum64Bytes(b []byte) uint64 {
	return WriteBytes(offset64, b)
}
