// Package uuid generates and validates the string identifiers used as
// primary keys and job handles.
package uuid

import (
	"crypto/rand"
	"encoding/binary"
	"time"

	googleuuid "github.com/google/uuid"
)

// New returns a time-ordered UUIDv7 string.
//
// Layout: 48 bits of Unix milliseconds, 4 bits version (7), 12 random bits,
// 2 bits variant (10), 62 random bits.
func New() string {
	id, err := googleuuid.NewV7()
	if err == nil {
		return id.String()
	}
	return manualV7()
}

// manualV7 builds a UUIDv7 by hand when the library's generator fails.
func manualV7() string {
	var b googleuuid.UUID
	binary.BigEndian.PutUint64(b[0:8], uint64(time.Now().UnixMilli())<<16)
	if _, err := rand.Read(b[6:]); err != nil {
		return googleuuid.New().String()
	}
	b[6] = (b[6] & 0x0f) | 0x70
	b[8] = (b[8] & 0x3f) | 0x80
	return b.String()
}

// Parse validates s and returns it in canonical lower-case form.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid reports whether s is a well-formed UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
