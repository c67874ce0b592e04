package dbus

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/SchorppDA/dbus/fragments"
	"github.com/SchorppDA/dbus/signature"
)

// valueCmp lets cmp look inside container values, and compares types
// by signature.
var valueCmp = cmp.Options{
	cmp.AllowUnexported(Array{}, Struct{}, DictEntry{}, Variant{}),
	cmp.Comparer(sameType),
}

// Stringy is a non-string type that implements fmt.Stringer.
type Stringy struct{ N int }

func (s Stringy) String() string { return "stringy" }

func mustType(sig string) *signature.Type {
	return signature.MustParseOne(sig)
}

func mustMake(t *testing.T, sig string, v any) Value {
	t.Helper()
	ret, err := MakeValue(mustType(sig), v)
	if err != nil {
		t.Fatalf("MakeValue(%q, %v) failed: %v", sig, v, err)
	}
	return ret
}

func mustMarshal(t *testing.T, ord fragments.ByteOrder, sig string, v any) []byte {
	t.Helper()
	m := NewMarshaller(0, ord)
	if err := m.Append(mustType(sig), v); err != nil {
		t.Fatalf("Append(%q, %v) failed: %v", sig, v, err)
	}
	return m.Bytes()
}

// arr, strct, entry and vrnt build container values directly, for
// comparing against decoded output.
func arr(sig string, elems ...Value) Array {
	return Array{mustType(sig), elems}
}

func strct(sig string, fields ...Value) Struct {
	return Struct{mustType(sig), fields}
}

func entry(arraySig string, k, v Value) DictEntry {
	return DictEntry{mustType(arraySig).Child, k, v}
}

func vrnt(v Value) Variant {
	return Variant{v}
}
