package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/kr/pretty"
	"gopkg.in/yaml.v3"

	"github.com/SchorppDA/dbus"
	"github.com/SchorppDA/dbus/signature"
)

// indenter writes lines to w, each prefixed by the current
// indentation.
type indenter struct {
	w       io.Writer
	prefix  string
	midLine bool
}

func (i *indenter) v(v any) {
	fmt.Fprintf(i, "%v\n", v)
}

func (i *indenter) s(msg string) {
	io.WriteString(i, msg+"\n")
}

func (i *indenter) f(msg string, args ...any) {
	fmt.Fprintf(i, msg+"\n", args...)
}

func (i *indenter) Write(bs []byte) (int, error) {
	ret := 0
	for len(bs) > 0 {
		if !i.midLine {
			i.midLine = true
			_, err := io.WriteString(i.w, i.prefix)
			if err != nil {
				return ret, err
			}
		}

		wr := bs
		idx := bytes.IndexByte(bs, '\n')
		if idx >= 0 {
			i.midLine = false
			wr, bs = bs[:idx+1], bs[idx+1:]
		} else {
			bs = nil
		}

		n, err := i.w.Write(wr)
		ret += n
		if err != nil {
			return ret, err
		}
	}
	return ret, nil
}

func (i *indenter) indent(n int) {
	i.prefix = strings.Repeat("  ", n)
}

var typeNames = map[byte]string{
	signature.CodeByte:       "byte",
	signature.CodeBoolean:    "boolean",
	signature.CodeInt16:      "int16",
	signature.CodeUInt16:     "uint16",
	signature.CodeInt32:      "int32",
	signature.CodeUInt32:     "uint32",
	signature.CodeInt64:      "int64",
	signature.CodeUInt64:     "uint64",
	signature.CodeDouble:     "double",
	signature.CodeUnixFD:     "unix fd",
	signature.CodeString:     "string",
	signature.CodeObjectPath: "object path",
	signature.CodeSignature:  "signature",
	signature.CodeArray:      "array",
	signature.CodeStruct:     "struct",
	signature.CodeDictEntry:  "dict entry",
	signature.CodeVariant:    "variant",
}

// printType writes the type tree of t to out.
func printType(out *indenter, depth int, t *signature.Type) {
	out.indent(depth)
	name := typeNames[t.Code]
	if t.IsDict() {
		name = "dict"
	}
	out.f("%s: %s, align %d", t, name, t.Alignment())
	if t.Child != nil {
		printType(out, depth+1, t.Child)
	}
	for _, m := range t.Members {
		printType(out, depth+1, m)
	}
}

// describe writes v to out, one line per value with its exact type.
func describe(out *indenter, depth int, v dbus.Value) {
	out.indent(depth)
	switch x := v.(type) {
	case dbus.Array:
		if x.IsDict() {
			out.f("%s: %d entries", x.Type(), x.Len())
		} else {
			out.f("%s: %d elements", x.Type(), x.Len())
		}
		for _, e := range x.Elems() {
			describe(out, depth+1, e)
		}
	case dbus.Struct:
		out.v(x.Type())
		for _, f := range x.Fields() {
			describe(out, depth+1, f)
		}
	case dbus.DictEntry:
		out.v(x.Type())
		describe(out, depth+1, x.Key())
		describe(out, depth+1, x.Value())
	case dbus.Variant:
		out.v(x.Type())
		if x.Contents() != nil {
			describe(out, depth+1, x.Contents())
		}
	default:
		out.f("%s: %# v", v.Type(), pretty.Formatter(v.Plain()))
	}
}

// fromYAML parses src as a YAML document, and returns it as a native
// value suitable for [dbus.MakeValue]. Mappings with only string keys
// become map[string]any, other mappings become map[any]any.
func fromYAML(src string) (any, error) {
	var n yaml.Node
	if err := yaml.Unmarshal([]byte(src), &n); err != nil {
		return nil, fmt.Errorf("parsing value %q: %w", src, err)
	}
	ret, err := nodeValue(&n, map[*yaml.Node]bool{})
	if err != nil {
		return nil, fmt.Errorf("converting value %q: %w", src, err)
	}
	return ret, nil
}

// nodeValue converts n to a native value. expanding holds the alias
// targets currently being converted.
func nodeValue(n *yaml.Node, expanding map[*yaml.Node]bool) (any, error) {
	switch n.Kind {
	case 0:
		// Empty document.
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0], expanding)
	case yaml.AliasNode:
		if expanding[n.Alias] {
			return nil, fmt.Errorf("line %d: anchor %q contains itself", n.Line, n.Value)
		}
		expanding[n.Alias] = true
		defer delete(expanding, n.Alias)
		return nodeValue(n.Alias, expanding)
	case yaml.ScalarNode:
		var ret any
		if err := n.Decode(&ret); err != nil {
			return nil, err
		}
		return ret, nil
	case yaml.SequenceNode:
		ret := make([]any, len(n.Content))
		for i, c := range n.Content {
			v, err := nodeValue(c, expanding)
			if err != nil {
				return nil, err
			}
			ret[i] = v
		}
		return ret, nil
	case yaml.MappingNode:
		ret := make(map[any]any, len(n.Content)/2)
		allStrings := true
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, err := nodeValue(n.Content[i], expanding)
			if err != nil {
				return nil, err
			}
			if k != nil && !reflect.TypeOf(k).Comparable() {
				return nil, fmt.Errorf("line %d: unusable map key %v", n.Content[i].Line, k)
			}
			v, err := nodeValue(n.Content[i+1], expanding)
			if err != nil {
				return nil, err
			}
			if _, ok := k.(string); !ok {
				allStrings = false
			}
			ret[k] = v
		}
		if !allStrings {
			return ret, nil
		}
		strs := make(map[string]any, len(ret))
		for k, v := range ret {
			strs[k.(string)] = v
		}
		return strs, nil
	default:
		return nil, fmt.Errorf("line %d: unknown YAML node kind %v", n.Line, n.Kind)
	}
}

// parseHex decodes hex data, ignoring whitespace and colons.
func parseHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, ":", " ")), "")
	ret, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parsing hex input: %w", err)
	}
	return ret, nil
}

// formatHex formats bs as hex, in groups of 8 bytes.
func formatHex(bs []byte) string {
	var groups []string
	for len(bs) > 8 {
		groups = append(groups, hex.EncodeToString(bs[:8]))
		bs = bs[8:]
	}
	groups = append(groups, hex.EncodeToString(bs))
	return strings.Join(groups, " ")
}
