package dotted

import (
	. "time"
)

//variation:enum marker=sealed
type Step interface {
	sealed()
	other()
}

type Wait struct {
	D Duration
}

func (Wait) sealed() {}
func (Wait) other()  {}

type Stop struct{}

func (Stop) sealed() {}
