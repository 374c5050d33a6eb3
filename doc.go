// Package variation generates accessor methods for sum-type enums.
//
// An enum is a sealed interface marked with a directive. Its variants are
// the types of the same package that implement the interface's unexported
// marker method:
//
//	//go:generate variation gen
//
//	//variation:enum
//	type Shape interface {
//		isShape()
//		ShapeVariation
//	}
//
//	type Empty struct{}
//	type Circle struct{ R float64 }
//	type Rect struct{ W, H float64 }
//
//	func (Empty) isShape()   {}
//	func (*Circle) isShape() {}
//	func (Rect) isShape()    {}
//
// For every variant V, each variant gets IsV, and when V carries data, AsV,
// IntoV and, for variants stored by pointer, AsVMut. They are collected in
// the ShapeVariation interface, written with the accessors to
// shape_variation.go. Embedding it in the enum makes them callable on any
// Shape:
//
//	var s Shape = &Circle{R: 2}
//	if r, ok := s.AsCircle(); ok {
//		fmt.Println(r) // 2
//	}
//	s.IntoRect() // panics: variation: Shape.IntoRect called on Circle variant
//
// Directive options follow the directive name:
//
//	trimprefix=P   remove P from variant names before naming methods
//	marker=name    marker method, when the interface has several candidates
//	output=f.go    output file name
//	nocheck        omit compile-time interface assertions
//	nomut          omit the AsVMut methods
//
// Generation is available as the variation command and through [Write],
// [Verify] and [Generate], or the fluent [FromPackages].
package variation
