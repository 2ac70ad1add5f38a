package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// NanoidSize is the length of document and translation ids. The id columns
// are TEXT, so any length fits, but seeded ids use this one.
var NanoidSize = 32

const nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NanoID returns a new alphanumeric id safe to embed in URLs and object keys.
func NanoID() string {
	return NanoIDSize(NanoidSize)
}

// NanoIDSize returns an id of the given length, or NanoidSize when size is
// not positive.
func NanoIDSize(size int) string {
	if size <= 0 {
		size = NanoidSize
	}

	return gonanoid.MustGenerate(nanoidAlphabet, size)
}
