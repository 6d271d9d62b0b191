package helpers

import (
	"crypto/rand"
	"math/big"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	joinCodeMin  = 10000000
	joinCodeSpan = 90000000

	entityIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	entityIDLength   = 16
)

// GenerateJoinCode returns an 8-digit decimal code, uniform in
// [10000000, 99999999]. Uniqueness is not guaranteed here; callers must
// re-check against the event store before committing.
func GenerateJoinCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(joinCodeSpan))
	if err != nil {
		// crypto/rand only fails if the OS entropy source is broken.
		panic(err)
	}
	code := n.Int64() + joinCodeMin

	return big.NewInt(code).String()
}

// GenerateEntityID returns a prefixed opaque id, e.g.
// "participant_Ab3xK9...". The suffix space is large enough that the store
// layer treats collisions as effectively impossible.
func GenerateEntityID(prefix string) string {
	id, err := gonanoid.Generate(entityIDAlphabet, entityIDLength)
	if err != nil {
		panic(err)
	}
	return prefix + id
}
