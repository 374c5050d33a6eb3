package ir

import (
	"github.com/hashicorp/go-multierror"
)

// ValidationError describes a structural problem in a Package.
type ValidationError struct {
	Code    string
	Message string
	Source  Source
}

func (e *ValidationError) Error() string {
	if e.Source.IsZero() {
		return e.Message
	}
	return e.Source.String() + ": " + e.Message
}

// Validate checks the package for problems that would make the generated
// code fail to compile: naming collisions between variants, with hand-written
// members, between enums sharing a variant, and between output files, and
// outputs that would overwrite hand-written files.
// All problems are returned together.
func (p *Package) Validate() error {
	var result *multierror.Error
	fail := func(code string, src Source, msg string) {
		result = multierror.Append(result, &ValidationError{Code: code, Message: msg, Source: src})
	}

	outputs := make(map[string]*Enum)
	// variant type name -> method name -> enum name
	owners := make(map[string]map[string]string)

	for _, e := range p.Enums {
		if len(e.Variants) == 0 {
			fail("no_variants", e.Source, "enum "+e.Name+" has no variants: no type in package "+p.Name+" implements "+e.Marker+"()")
		}

		if prev, ok := outputs[e.OutputFile()]; ok {
			fail("duplicate_output", e.Source, "enums "+prev.Name+" and "+e.Name+" both generate "+e.OutputFile())
		} else {
			outputs[e.OutputFile()] = e
		}

		if p.IsSource(e.OutputFile()) {
			fail("output_conflict", e.Source, "enum "+e.Name+" cannot generate "+e.OutputFile()+": it is a hand-written file of package "+p.Name)
		}

		if p.IsDeclared(e.InterfaceName()) {
			fail("interface_conflict", e.Source, "cannot generate "+e.InterfaceName()+" for enum "+e.Name+": name already declared in package "+p.Name)
		}

		seen := make(map[string]*Variant)
		for _, v := range e.Variants {
			if e.Suffix(v) == "" {
				fail("empty_name", v.Source, "variant "+v.Name+" of enum "+e.Name+" has an empty name after trimming prefix "+e.Options.TrimPrefix)
				continue
			}
			for _, m := range e.Methods(v) {
				if other, ok := seen[m]; ok && other != v {
					fail("duplicate_method", v.Source, "variants "+other.Name+" and "+v.Name+" of enum "+e.Name+" both generate method "+m)
					continue
				}
				seen[m] = v
			}
		}

		methods := e.MethodSet()
		for _, v := range e.Variants {
			byMethod := owners[v.Name]
			if byMethod == nil {
				byMethod = make(map[string]string)
				owners[v.Name] = byMethod
			}
			for _, m := range methods {
				if v.HasMember(m) {
					fail("member_conflict", v.Source, "variant "+v.Name+" of enum "+e.Name+" already declares "+m)
				}
				if other, ok := byMethod[m]; ok && other != e.Name {
					fail("shared_variant_conflict", v.Source, "variant "+v.Name+" belongs to enums "+other+" and "+e.Name+", which both generate "+m)
					continue
				}
				byMethod[m] = e.Name
			}
		}
	}

	return result.ErrorOrNil()
}
