package directive

import (
	"errors"
	"fmt"
	"go/token"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/broady/variation/ir"
)

// optionList is the grammar of the text following a directive name:
//
//	trimprefix=Shape output="shape_gen.go" nocheck
type optionList struct {
	Options []*option `parser:"@@*"`
}

type option struct {
	Pos   lexer.Position
	Key   string  `parser:"@Word"`
	Value *string `parser:"( '=' @(Word | String) )?"`
}

var (
	optionLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
		{Name: "Word", Pattern: `[A-Za-z0-9_][A-Za-z0-9_.\-]*`},
		{Name: "Punct", Pattern: `=`},
		{Name: "Whitespace", Pattern: `[ \t]+`},
	})

	optionParser = participle.MustBuild[optionList](
		participle.Lexer(optionLexer),
		participle.Unquote("String"),
		participle.Elide("Whitespace"),
	)

	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()

	// optionKinds maps each option key to the kind of its ir.Options field.
	optionKinds = func() map[string]reflect.Kind {
		kinds := make(map[string]reflect.Kind)
		t := reflect.TypeOf(ir.Options{})
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if key := f.Tag.Get("schema"); key != "" {
				kinds[key] = f.Type.Kind()
			}
		}
		return kinds
	}()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(false)

	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("schema")
	})
	_ = validate.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
		return token.IsIdentifier(fl.Field().String())
	})
	_ = validate.RegisterValidation("gofile", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return strings.HasSuffix(name, ".go") &&
			!strings.HasSuffix(name, "_test.go") &&
			!strings.ContainsAny(name, `/\`) &&
			len(name) > len(".go")
	})
}

// ParseOptions parses directive options into ir.Options.
//
// Options are separated by spaces. A bare key sets a boolean option; key=value
// sets a string option, which cannot be given bare. Values containing spaces
// may be double-quoted. Unknown and repeated keys are errors.
func ParseOptions(text string) (ir.Options, error) {
	var opts ir.Options

	list, err := optionParser.ParseString("", strings.TrimSpace(text))
	if err != nil {
		return opts, fmt.Errorf("invalid options: %w", err)
	}

	values := url.Values{}
	for _, o := range list.Options {
		key := strings.ToLower(o.Key)
		if values.Has(key) {
			return opts, fmt.Errorf("option %q given more than once", key)
		}
		if o.Value == nil {
			if optionKinds[key] == reflect.String {
				return opts, fmt.Errorf("option %s needs a value: %s=...", key, key)
			}
			values.Set(key, "true")
		} else {
			values.Set(key, *o.Value)
		}
	}

	if err := schemaDecoder.Decode(&opts, values); err != nil {
		return opts, formatDecodeError(err)
	}

	if err := validate.Struct(opts); err != nil {
		var valErrs validator.ValidationErrors
		if errors.As(err, &valErrs) {
			msgs := make([]string, 0, len(valErrs))
			for _, ve := range valErrs {
				msgs = append(msgs, fmt.Sprintf("option %s=%q %s", ve.Field(), ve.Value(), formatValidationError(ve)))
			}
			return opts, errors.New(strings.Join(msgs, "; "))
		}
		return opts, err
	}

	return opts, nil
}

// formatDecodeError turns gorilla/schema errors into option-level messages.
func formatDecodeError(err error) error {
	var multi schema.MultiError
	if !errors.As(err, &multi) {
		return fmt.Errorf("invalid options: %w", err)
	}

	keys := make([]string, 0, len(multi))
	for k := range multi {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		var unknown schema.UnknownKeyError
		var conv schema.ConversionError
		switch {
		case errors.As(multi[k], &unknown):
			msgs = append(msgs, fmt.Sprintf("unknown option %q", k))
		case errors.As(multi[k], &conv):
			msgs = append(msgs, fmt.Sprintf("option %s: invalid value", k))
		default:
			msgs = append(msgs, fmt.Sprintf("option %s: %v", k, multi[k]))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "goident":
		return "is not a valid Go identifier"
	case "gofile":
		return "must be a non-test .go file name without directories"
	default:
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
