package models

import gonanoid "github.com/matoous/go-nanoid/v2"

// idAlphabet keeps generated ids lowercase and URL safe.
const idAlphabet = "1234567890abcdefghijklmnopqrstuvwxyz"

// NewID returns a random 12-character id for posts, projects and media.
func NewID() string {
	return gonanoid.MustGenerate(idAlphabet, 12)
}

// NewFileID returns a random 16-character name for stored upload files.
func NewFileID() string {
	return gonanoid.MustGenerate(idAlphabet, 16)
}
