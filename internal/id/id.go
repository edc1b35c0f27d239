// Package id hands out the prefixed random IDs used for shelf loads and
// event stream clients.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	PrefixLoad   = "load"
	PrefixStream = "sse"
)

// Generate returns prefix, a dash and a 21-character NanoID, for example
// "load-V1StGXR8_Z5jdHi6B-myT". It fails only when the system entropy
// source does.
func Generate(prefix string) (string, error) {
	suffix, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate %s id: %w", prefix, err)
	}
	return prefix + "-" + suffix, nil
}

// NewLoadID identifies one shelf load.
func NewLoadID() (string, error) {
	return Generate(PrefixLoad)
}

// NewStreamID identifies one event stream connection.
func NewStreamID() (string, error) {
	return Generate(PrefixStream)
}
