package picker

import (
	"errors"
	"math/rand/v2"
)

// Chooser draws an index in [0, n).
type Chooser interface {
	Intn(n int) int
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(n int) int

func (f ChooserFunc) Intn(n int) int { return f(n) }

// Uniform draws from the global math/rand/v2 source. It is not meant to be unpredictable.
var Uniform Chooser = ChooserFunc(rand.IntN)

// Seeded returns a deterministic Chooser.
func Seeded(seed uint64) Chooser {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return ChooserFunc(r.IntN)
}

// messenger is implemented by errors that carry a user-facing message.
type messenger interface {
	UserMessage() string
}

// ErrorMessage extracts the message to show for a failed search.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var m messenger
	if errors.As(err, &m) {
		return m.UserMessage()
	}
	return err.Error()
}
