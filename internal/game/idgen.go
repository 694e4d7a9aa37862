package game

import "math/rand"

const (
	roomIDLength   = 6
	roomIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// IDGenerator produces candidate room ids. Uniqueness is checked by the
// Registry, so generators may repeat.
type IDGenerator interface {
	Generate() string
}

type randomIDGen struct{}

// NewIDGen returns a generator of six-character base36 tokens.
func NewIDGen() IDGenerator {
	return randomIDGen{}
}

func (randomIDGen) Generate() string {
	b := make([]byte, roomIDLength)
	for i := range b {
		b[i] = roomIDAlphabet[rand.Intn(len(roomIDAlphabet))]
	}
	return string(b)
}
