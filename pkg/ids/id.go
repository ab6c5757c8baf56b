// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// ID is an opaque document identifier.
type ID [32]byte

// Empty is the zero ID.
var Empty = ID{}

// New creates a random ID for a freshly inserted document.
func New() ID {
	var id ID
	rand.Read(id[:])
	return id
}

// GenerateTestID creates a random ID for testing
func GenerateTestID() ID {
	return New()
}

// String returns the hex representation of the ID
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the byte representation of the ID
func (id ID) Bytes() []byte {
	return id[:]
}

// IsZero reports whether the ID is the zero value.
func (id ID) IsZero() bool {
	return id == Empty
}

// MarshalText implements encoding.TextMarshaler so IDs serialize as hex
// strings inside JSON documents.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := FromString(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// FromString creates an ID from a hex string
func FromString(s string) (ID, error) {
	var id ID
	bytes, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(bytes) != 32 {
		return id, fmt.Errorf("invalid ID length: expected 32, got %d", len(bytes))
	}
	copy(id[:], bytes)
	return id, nil
}
