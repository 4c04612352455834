// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package identity

import "errors"

// ForeignKey identifies an unrecognized chunk preserved through a
// save/load cycle.
type ForeignKey struct {
	TypeID  uint32
	Version uint32
	Flags   uint32
}

// ForeignChunk is one preserved unrecognized chunk.
type ForeignChunk struct {
	Key     ForeignKey
	Payload []byte
}

// ErrForeignFull is returned when the container has no remaining
// capacity.
var ErrForeignFull = errors.New("foreign chunk container is full")

// ForeignContainer preserves unrecognized chunks verbatim in arrival
// order so two save cycles of the same bundle stay byte-identical.
type ForeignContainer struct {
	chunks   []ForeignChunk
	capacity int
}

// NewForeignContainer constructs a ForeignContainer with fixed
// capacity.
func NewForeignContainer(capacity int) *ForeignContainer {
	return &ForeignContainer{
		chunks:   make([]ForeignChunk, 0, capacity),
		capacity: capacity,
	}
}

// Len returns the number of preserved chunks.
func (c *ForeignContainer) Len() int { return len(c.chunks) }

// Chunks returns the preserved chunks in arrival order.
func (c *ForeignContainer) Chunks() []ForeignChunk { return c.chunks }

// Preserve copies a chunk's payload into the container. An existing
// chunk with the same key is overwritten in place, keeping its
// original position.
func (c *ForeignContainer) Preserve(key ForeignKey, payload []byte) error {
	copied := make([]byte, len(payload))
	copy(copied, payload)
	for i := range c.chunks {
		if c.chunks[i].Key == key {
			c.chunks[i].Payload = copied
			return nil
		}
	}
	if len(c.chunks) >= c.capacity {
		return ErrForeignFull
	}
	c.chunks = append(c.chunks, ForeignChunk{Key: key, Payload: copied})
	return nil
}

// Get returns the preserved payload for a key, if any.
func (c *ForeignContainer) Get(key ForeignKey) ([]byte, bool) {
	for i := range c.chunks {
		if c.chunks[i].Key == key {
			return c.chunks[i].Payload, true
		}
	}
	return nil, false
}
