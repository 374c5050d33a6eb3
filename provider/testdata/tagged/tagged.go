//go:build variationdemo

package tagged

//variation:enum
type Color interface {
	isColor()
}

type Red struct{}

func (Red) isColor() {}

type RGB [3]uint8

func (RGB) isColor() {}
