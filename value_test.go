package dbus

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIntegerRange(t *testing.T) {
	tests := []struct {
		sig     string
		ok, bad []any
	}{
		{"y",
			[]any{0, math.MaxUint8},
			[]any{-1, math.MaxUint8 + 1}},
		{"n",
			[]any{math.MinInt16, math.MaxInt16},
			[]any{math.MinInt16 - 1, math.MaxInt16 + 1}},
		{"q",
			[]any{0, math.MaxUint16},
			[]any{-1, math.MaxUint16 + 1}},
		{"i",
			[]any{math.MinInt32, math.MaxInt32},
			[]any{int64(math.MinInt32) - 1, int64(math.MaxInt32) + 1}},
		{"u",
			[]any{0, uint32(math.MaxUint32)},
			[]any{-1, uint64(math.MaxUint32) + 1}},
		{"h",
			[]any{0, uint32(math.MaxUint32)},
			[]any{-1, uint64(math.MaxUint32) + 1}},
		{"x",
			[]any{int64(math.MinInt64), int64(math.MaxInt64)},
			[]any{uint64(math.MaxInt64) + 1}},
		{"t",
			[]any{0, uint64(math.MaxUint64)},
			[]any{-1, int64(math.MinInt64)}},
	}

	for _, tc := range tests {
		typ := mustType(tc.sig)
		for _, v := range tc.ok {
			if _, err := MakeValue(typ, v); err != nil {
				t.Errorf("MakeValue(%q, %v) failed: %v", tc.sig, v, err)
			}
		}
		for _, v := range tc.bad {
			got, err := MakeValue(typ, v)
			var re *RangeError
			if !errors.As(err, &re) {
				t.Errorf("MakeValue(%q, %v) = %v, %v, want RangeError", tc.sig, v, got, err)
				continue
			}
			if re.Type != tc.sig {
				t.Errorf("RangeError.Type = %q, want %q", re.Type, tc.sig)
			}
		}
	}
}

func TestIntegerConstructors(t *testing.T) {
	if v, err := NewByte(255); err != nil || v != 255 {
		t.Errorf("NewByte(255) = %v, %v", v, err)
	}
	if _, err := NewByte(256); err == nil {
		t.Error("NewByte(256) succeeded")
	}
	if v, err := NewInt16(-32768); err != nil || v != -32768 {
		t.Errorf("NewInt16(-32768) = %v, %v", v, err)
	}
	if _, err := NewInt16(32768); err == nil {
		t.Error("NewInt16(32768) succeeded")
	}
	if _, err := NewUInt16(-1); err == nil {
		t.Error("NewUInt16(-1) succeeded")
	}
	if _, err := NewInt32(int64(math.MaxInt32) + 1); err == nil {
		t.Error("NewInt32(MaxInt32+1) succeeded")
	}
	if v, err := NewUInt32(uint64(math.MaxUint32)); err != nil || v != math.MaxUint32 {
		t.Errorf("NewUInt32(MaxUint32) = %v, %v", v, err)
	}
	if _, err := NewUnixFD(-1); err == nil {
		t.Error("NewUnixFD(-1) succeeded")
	}
	if _, err := NewInt64(uint64(math.MaxUint64)); err == nil {
		t.Error("NewInt64(MaxUint64) succeeded")
	}
	if v, err := NewUInt64(uint64(math.MaxUint64)); err != nil || v != math.MaxUint64 {
		t.Errorf("NewUInt64(MaxUint64) = %v, %v", v, err)
	}
	if _, err := NewUInt64(-1); err == nil {
		t.Error("NewUInt64(-1) succeeded")
	}
}

func TestNewBoolean(t *testing.T) {
	tests := []struct {
		in   any
		want Boolean
	}{
		{nil, false},
		{false, false},
		{true, true},
		{Boolean(true), true},
		{0, false},
		{uint8(2), true},
		{0.0, false},
		{-1, true},
		{"", false},
		{"x", true},
		{[]int{}, false},
		{[]int{0}, true},
		{map[string]int{}, false},
		{struct{}{}, true},
	}
	for _, tc := range tests {
		if got := NewBoolean(tc.in); got != tc.want {
			t.Errorf("NewBoolean(%#v) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for raw, want := range map[uint32]Boolean{0: false, 1: true} {
		got, err := booleanFromRaw(raw)
		if err != nil || got != want {
			t.Errorf("booleanFromRaw(%d) = %v, %v, want %v", raw, got, err, want)
		}
	}
	var pe *InvalidPacketError
	if _, err := booleanFromRaw(2); !errors.As(err, &pe) {
		t.Errorf("booleanFromRaw(2) got err %v, want InvalidPacketError", err)
	}
}

func TestStringValues(t *testing.T) {
	tests := []struct {
		name string
		make func(string) (Value, error)
		ok   []string
		bad  []string
	}{
		{
			"String",
			func(s string) (Value, error) { return wrap[String](NewString(s)) },
			[]string{"", "foo", "héllo wörld", "日本語"},
			[]string{"a\x00b", "\x00", "\xff", "a\xc3"},
		},
		{
			"ObjectPath",
			func(s string) (Value, error) { return wrap[ObjectPath](NewObjectPath(s)) },
			[]string{"/", "/foo", "/foo/bar_baz/Q1"},
			[]string{"", "foo", "/foo/", "//", "/foo//bar", "/foo-bar", "/foo.bar", "/\x00"},
		},
		{
			"Signature",
			func(s string) (Value, error) { return wrap[Signature](NewSignature(s)) },
			[]string{"", "i", "a{sv}", "(ii)as"},
			[]string{"a", "{sv}", "()", "i\x00"},
		},
	}

	for _, tc := range tests {
		for _, s := range tc.ok {
			v, err := tc.make(s)
			if err != nil {
				t.Errorf("New%s(%q) failed: %v", tc.name, s, err)
				continue
			}
			if got := v.Plain(); got != s {
				t.Errorf("New%s(%q).Plain() = %q", tc.name, s, got)
			}
		}
		for _, s := range tc.bad {
			var pe *InvalidPacketError
			if _, err := tc.make(s); !errors.As(err, &pe) {
				t.Errorf("New%s(%q) got err %v, want InvalidPacketError", tc.name, s, err)
			}
		}
	}
}

func TestContainers(t *testing.T) {
	a, err := NewArray(mustType("an"), 1, 2, 3)
	if err != nil {
		t.Fatalf("NewArray failed: %v", err)
	}
	if a.Len() != 3 || a.Index(1) != Int16(2) {
		t.Errorf("NewArray(an, 1, 2, 3) = %v", a)
	}
	elems := a.Elems()
	elems[0] = Int16(42)
	if a.Index(0) != Int16(1) {
		t.Error("modifying Elems() result changed the Array")
	}
	if a.IsDict() || a.Entries() != nil || a.Map() != nil {
		t.Error("non-dict Array reports dict contents")
	}

	s, err := NewStruct(mustType("(sb)"), "x", true)
	if err != nil {
		t.Fatalf("NewStruct failed: %v", err)
	}
	fields := s.Fields()
	fields[0] = String("y")
	if diff := cmp.Diff(s.Plain(), []any{"x", true}); diff != "" {
		t.Errorf("Struct.Plain() wrong after modifying Fields() (-got+want):\n%s", diff)
	}

	var te *TypeError
	if _, err := NewStruct(mustType("(sb)"), "x"); !errors.As(err, &te) {
		t.Errorf("NewStruct with too few fields got err %v, want TypeError", err)
	}
	if _, err := NewStruct(mustType("ai"), 1); !errors.As(err, &te) {
		t.Errorf("NewStruct with array type got err %v, want TypeError", err)
	}
	if _, err := NewArray(mustType("(i)"), 1); !errors.As(err, &te) {
		t.Errorf("NewArray with struct type got err %v, want TypeError", err)
	}
	var re *RangeError
	if _, err := NewArray(mustType("ay"), 1, 256); !errors.As(err, &re) {
		t.Errorf("NewArray with out of range element got err %v, want RangeError", err)
	}

	d, err := NewArray(mustType("a{sv}"), []any{"k", 1})
	if err != nil {
		t.Fatalf("NewArray(a{sv}) failed: %v", err)
	}
	if !d.IsDict() {
		t.Error("a{sv} Array is not a dict")
	}
	if diff := cmp.Diff(d.Plain(), map[any]any{"k": int32(1)}); diff != "" {
		t.Errorf("dict Plain() wrong (-got+want):\n%s", diff)
	}
}

func TestMakeValueFromValue(t *testing.T) {
	tests := []struct {
		sig  string
		in   Value
		want Value
	}{
		{"i", Int32(5), Int32(5)},
		{"x", Int32(5), Int64(5)},
		{"y", Int64(5), Byte(5)},
		{"d", Int32(5), Double(5)},
		{"o", String("/a"), ObjectPath("/a")},
		{"s", ObjectPath("/a"), String("/a")},
		{"ax", arr("ai", Int32(1)), arr("ax", Int64(1))},
		{"(x)", strct("(i)", Int32(1)), strct("(x)", Int64(1))},
		{"a{sx}", arr("a{si}", entry("a{si}", String("a"), Int32(1))),
			arr("a{sx}", entry("a{sx}", String("a"), Int64(1)))},
		{"av", arr("ai", Int32(1)), arr("av", vrnt(Int32(1)))},
	}

	for _, tc := range tests {
		got, err := MakeValue(mustType(tc.sig), tc.in)
		if err != nil {
			t.Errorf("MakeValue(%q, %v) failed: %v", tc.sig, tc.in, err)
			continue
		}
		if diff := cmp.Diff(got, tc.want, valueCmp); diff != "" {
			t.Errorf("MakeValue(%q, %v) wrong result (-got+want):\n%s", tc.sig, tc.in, diff)
		}
	}

	var re *RangeError
	if _, err := MakeValue(mustType("y"), Int32(300)); !errors.As(err, &re) {
		t.Errorf("MakeValue(y, Int32(300)) got err %v, want RangeError", err)
	}
	var te *TypeError
	if _, err := MakeValue(nil, 1); !errors.As(err, &te) {
		t.Errorf("MakeValue(nil, 1) got err %v, want TypeError", err)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a    Value
		b    any
		want bool
	}{
		{Int32(5), int64(5), true},
		{Int32(5), Byte(5), true},
		{Int32(5), 5.0, true},
		{UInt64(math.MaxUint64), -1, false},
		{Int64(-1), uint64(math.MaxUint64), false},
		{Int16(-1), int8(-1), true},
		{String("a"), "a", true},
		{String("a"), ObjectPath("a"), true},
		{String("a"), "b", false},
		{Boolean(true), true, true},
		{Boolean(true), 1, false},
		{Double(1.5), 1.5, true},
		{arr("ai", Int32(1), Int32(2)), []int{1, 2}, true},
		{arr("ai", Int32(1), Int32(2)), []int{1, 2, 3}, false},
		{arr("ai", Int32(1), Int32(2)), arr("an", Int16(1), Int16(2)), true},
		{strct("(sy)", String("a"), Byte(1)), []any{"a", 1}, true},
		{vrnt(Int32(1)), 1, true},
		{vrnt(Int32(1)), vrnt(Byte(1)), true},
		{arr("a{sv}", entry("a{sv}", String("a"), vrnt(Int32(1)))), map[string]int{"a": 1}, true},
		{arr("a{sv}", entry("a{sv}", String("a"), vrnt(Int32(1)))), map[string]int{"a": 2}, false},
		{arr("a{sv}", entry("a{sv}", String("a"), vrnt(Int32(1)))), map[string]int{"b": 1}, false},
		{arr("a{yv}", entry("a{yv}", Byte(1), vrnt(Int32(1)))), map[int]int{1: 1}, true},
		{nil, nil, true},
		{nil, 1, false},
	}

	for _, tc := range tests {
		if got := Equal(tc.a, tc.b); got != tc.want {
			t.Errorf("Equal(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestModeString(t *testing.T) {
	if got := Plain.String(); got != "plain" {
		t.Errorf("Plain.String() = %q", got)
	}
	if got := Exact.String(); got != "exact" {
		t.Errorf("Exact.String() = %q", got)
	}
}
