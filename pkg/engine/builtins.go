package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/freezeout/pkg/field"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms script source before passing it to zygomys.
// It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal),
//     so keyword symbols need not be registered as globals.
//
//  2. Kebab-case to underscore: def-field -> def_field. zygomys reads a
//     hyphen inside an identifier as subtraction.
//
//  3. ; line comments -> // comments, the form zygomys accepts.
//
// All three respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := assignment.
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Hyphen between identifier characters is part of the name,
		// not a minus operator.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpField wraps a field.Field so it can flow between builtins.
type sexpField struct {
	f field.Field
}

func (s *sexpField) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(field %d-D)", s.f.Dim())
}
func (s *sexpField) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps an r3.Vec.
type sexpVec3 struct {
	vec r3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix marks keyword names rewritten by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword string, returning the
// keyword name without the prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds a parsed mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		if name, ok := isKW(args[i]); ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toField(s zygo.Sexp) (field.Field, error) {
	if f, ok := s.(*sexpField); ok {
		return f.f, nil
	}
	return nil, fmt.Errorf("expected field, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return r3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// kwFloat reads an optional keyword number, falling back to def.
func kwFloat(pa kwArgs, name string, def float64) (float64, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// kwVec3 reads an optional keyword vec3, falling back to def.
func kwVec3(pa kwArgs, name string, def r3.Vec) (r3.Vec, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("%s: %w", name, err)
	}
	return vec, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the field-definition builtins into a zygomys
// environment. Field constructors return sexpField values; def-field
// records the named result in set.
//
// Source must be preprocessed with preprocessSource so :keyword tokens
// arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, set *field.Set) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i := range c {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: component %d: %w", i, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: r3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :center (vec3 0 0 0) :radius 1)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		center, err := kwVec3(pa, "center", r3.Vec{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		radius, err := kwFloat(pa, "radius", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		if radius <= 0 {
			return zygo.SexpNull, fmt.Errorf("sphere: radius %g, want > 0", radius)
		}
		return &sexpField{f: field.Sphere(center, radius)}, nil
	})

	// -----------------------------------------------------------------------
	// (gaussian :center (vec3 0 0 0) :amplitude 1 :width 1)
	// -----------------------------------------------------------------------
	env.AddFunction("gaussian", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		center, err := kwVec3(pa, "center", r3.Vec{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("gaussian: %w", err)
		}
		amplitude, err := kwFloat(pa, "amplitude", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("gaussian: %w", err)
		}
		width, err := kwFloat(pa, "width", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("gaussian: %w", err)
		}
		if width <= 0 {
			return zygo.SexpNull, fmt.Errorf("gaussian: width %g, want > 0", width)
		}
		return &sexpField{f: field.Gaussian(center, amplitude, width)}, nil
	})

	// -----------------------------------------------------------------------
	// (box :size (vec3 1 1 1))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		size, err := kwVec3(pa, "size", r3.Vec{X: 1, Y: 1, Z: 1})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		f, err := field.Box(size.X, size.Y, size.Z)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return &sexpField{f: f}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 2 :radius 1)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		height, err := kwFloat(pa, "height", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		radius, err := kwFloat(pa, "radius", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		f, err := field.Cylinder(height, radius)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		return &sexpField{f: f}, nil
	})

	// -----------------------------------------------------------------------
	// (uniform :dim 3 :value 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("uniform", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n := 3
		if v, ok := pa.kw["dim"]; ok {
			var err error
			n, err = toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("uniform: dim: %w", err)
			}
		}
		if n < 2 || n > 4 {
			return zygo.SexpNull, fmt.Errorf("uniform: dim %d, want 2, 3 or 4", n)
		}
		value, err := kwFloat(pa, "value", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("uniform: %w", err)
		}
		return &sexpField{f: field.Uniform(n, value)}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...)
	// -----------------------------------------------------------------------
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return combineBuiltin("union", field.Union, args)
	})

	// -----------------------------------------------------------------------
	// (intersect a b ...)
	// -----------------------------------------------------------------------
	env.AddFunction("intersect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return combineBuiltin("intersect", field.Intersect, args)
	})

	// -----------------------------------------------------------------------
	// (offset f 0.25)
	// -----------------------------------------------------------------------
	env.AddFunction("offset", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("offset requires a field and a delta, got %d arguments", len(args))
		}
		f, err := toField(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("offset: %w", err)
		}
		delta, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("offset: delta: %w", err)
		}
		return &sexpField{f: field.Offset(f, delta)}, nil
	})

	// -----------------------------------------------------------------------
	// (scale f 2)
	// -----------------------------------------------------------------------
	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("scale requires a field and a factor, got %d arguments", len(args))
		}
		f, err := toField(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		factor, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: factor: %w", err)
		}
		return &sexpField{f: field.Scale(f, factor)}, nil
	})

	// -----------------------------------------------------------------------
	// (cooling f :rate 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("cooling", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("cooling requires a spatial field argument")
		}
		f, err := toField(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cooling: %w", err)
		}
		rate, err := kwFloat(pa, "rate", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cooling: %w", err)
		}
		if f.Dim() >= 4 {
			return zygo.SexpNull, fmt.Errorf("cooling: spatial field is %d-D, result would exceed 4-D", f.Dim())
		}
		return &sexpField{f: field.Cooling(f, rate)}, nil
	})

	// -----------------------------------------------------------------------
	// (def-field "energy" (sphere :radius 2))
	//
	// Registered as def_field; the preprocessor rewrites the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("def_field", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("def-field requires a name and a field expression")
		}
		fieldName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("def-field: name: %w", err)
		}
		f, err := toField(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("def-field: %q: %w", fieldName, err)
		}
		if err := set.Define(fieldName, f); err != nil {
			return zygo.SexpNull, fmt.Errorf("def-field: %w", err)
		}
		return args[1], nil
	})
}

// combineBuiltin folds two or more field arguments with op.
func combineBuiltin(name string, op func(a, b field.Field) (field.Field, error), args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) < 2 {
		return zygo.SexpNull, fmt.Errorf("%s requires at least 2 fields, got %d", name, len(args))
	}
	acc, err := toField(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: argument 1: %w", name, err)
	}
	for i := 1; i < len(args); i++ {
		f, err := toField(args[i])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: argument %d: %w", name, i+1, err)
		}
		acc, err = op(acc, f)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
	}
	return &sexpField{f: acc}, nil
}
