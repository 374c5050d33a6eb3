// Package shapes holds enums used by provider tests.
package shapes

//variation:enum
type Shape interface {
	isShape()
}

// Empty has no fields.
type Empty struct{}

func (Empty) isShape() {}

type Circle struct {
	R float64
}

func (*Circle) isShape() {}

func (c *Circle) Area() float64 { return 3.14159 * c.R * c.R }

type Rect struct {
	W, H float64
	_    int
}

func (Rect) isShape() {}

type Label string

func (Label) isShape() {}

// notAShape has no marker method.
type notAShape struct{}
