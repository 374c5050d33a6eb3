package renamed

import "github.com/broady/variation/provider/testdata/shapekit"

//variation:enum
type Tool interface {
	isTool()
}

type Draw struct {
	Pen kit.Pen
}

func (Draw) isTool() {}
