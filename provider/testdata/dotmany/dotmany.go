package dotmany

import (
	. "strings"
	. "time"
)

var _ = Fields

//variation:enum
type Step interface {
	isStep()
}

type Wait struct {
	D Duration
}

func (Wait) isStep() {}

type Split struct {
	B  *Builder
	At Time
}

func (*Split) isStep() {}
