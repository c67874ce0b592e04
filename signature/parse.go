package signature

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

const (
	// MaxLen is the maximum length of a signature string.
	MaxLen = 255
	// MaxDepth is the maximum nesting depth of arrays, and
	// separately of structs, within a signature.
	MaxDepth = 32
)

// Error is the error returned for malformed signatures.
type Error struct {
	// Signature is the signature that failed to parse.
	Signature string
	// Reason is an explanation of what is wrong with the signature.
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid type signature %q: %s", e.Signature, e.Reason)
}

// maxCached bounds the number of signatures held in the parse
// cache. Signatures arrive off the wire inside variants, so the set
// of distinct signatures seen is attacker controlled.
const maxCached = 4096

var (
	// parsed caches the results of Parse. The cached type slices are
	// shared, and must be cloned before being handed to callers.
	parsed    sync.Map // map[string]parseResult
	numParsed atomic.Int64
)

type parseResult struct {
	types []*Type
	err   error
}

// Parse parses a signature into its complete types, in order. The
// empty signature is valid and parses to no types.
func Parse(sig string) ([]*Type, error) {
	if v, ok := parsed.Load(sig); ok {
		res := v.(parseResult)
		return slices.Clone(res.types), res.err
	}

	ret, err := parseAll(sig)
	if numParsed.Load() < maxCached {
		if _, loaded := parsed.LoadOrStore(sig, parseResult{ret, err}); !loaded {
			numParsed.Add(1)
		}
	}
	return slices.Clone(ret), err
}

// ParseOne parses a signature that must contain exactly one complete
// type.
func ParseOne(sig string) (*Type, error) {
	ts, err := Parse(sig)
	if err != nil {
		return nil, err
	}
	if len(ts) != 1 {
		return nil, &Error{sig, fmt.Sprintf("want exactly one complete type, found %d", len(ts))}
	}
	return ts[0], nil
}

// MustParse is like Parse, but panics if sig is invalid.
func MustParse(sig string) []*Type {
	ret, err := Parse(sig)
	if err != nil {
		panic(err)
	}
	return ret
}

// MustParseOne is like ParseOne, but panics if sig is invalid.
func MustParseOne(sig string) *Type {
	ret, err := ParseOne(sig)
	if err != nil {
		panic(err)
	}
	return ret
}

func parseAll(sig string) ([]*Type, error) {
	if len(sig) > MaxLen {
		return nil, &Error{sig, fmt.Sprintf("signature is %d bytes, maximum is %d", len(sig), MaxLen)}
	}
	p := parser{sig: sig}
	var ret []*Type
	for p.pos < len(sig) {
		t, err := p.parseOne(false)
		if err != nil {
			return nil, err
		}
		ret = append(ret, t)
	}
	return ret, nil
}

type parser struct {
	sig         string
	pos         int
	arrayDepth  int
	structDepth int
}

func (p *parser) errorf(msg string, args ...any) error {
	return &Error{p.sig, fmt.Sprintf("at offset %d: ", p.pos) + fmt.Sprintf(msg, args...)}
}

// parseOne consumes the first complete type at the parser's
// position.
func (p *parser) parseOne(inArray bool) (*Type, error) {
	if p.pos >= len(p.sig) {
		return nil, p.errorf("unexpected end of signature")
	}
	c := p.sig[p.pos]
	if t, ok := basicTypes[c]; ok {
		p.pos++
		return t, nil
	}

	switch c {
	case 'a':
		p.pos++
		p.arrayDepth++
		defer func() { p.arrayDepth-- }()
		if p.arrayDepth > MaxDepth {
			return nil, p.errorf("arrays nested more than %d deep", MaxDepth)
		}
		elem, err := p.parseOne(true)
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	case '(':
		p.pos++
		p.structDepth++
		defer func() { p.structDepth-- }()
		if p.structDepth > MaxDepth {
			return nil, p.errorf("structs nested more than %d deep", MaxDepth)
		}
		var fields []*Type
		for p.pos < len(p.sig) && p.sig[p.pos] != ')' {
			field, err := p.parseOne(false)
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
		}
		if p.pos >= len(p.sig) {
			return nil, p.errorf("missing closing ) in struct definition")
		}
		if len(fields) == 0 {
			return nil, p.errorf("empty struct")
		}
		p.pos++
		return StructOf(fields...), nil
	case '{':
		if !inArray {
			return nil, p.errorf("dict entry type found outside array")
		}
		p.pos++
		p.structDepth++
		defer func() { p.structDepth-- }()
		if p.structDepth > MaxDepth {
			return nil, p.errorf("structs nested more than %d deep", MaxDepth)
		}
		key, err := p.parseOne(false)
		if err != nil {
			return nil, err
		}
		if !key.IsBasic() {
			return nil, p.errorf("invalid dict entry key type %s, must be a basic type", key)
		}
		val, err := p.parseOne(false)
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.sig) || p.sig[p.pos] != '}' {
			return nil, p.errorf("missing closing } in dict entry definition")
		}
		p.pos++
		return &Type{Code: CodeDictEntry, Members: []*Type{key, val}}, nil
	case ')', '}':
		return nil, p.errorf("unexpected %q", c)
	default:
		return nil, p.errorf("unknown type specifier %q", c)
	}
}
