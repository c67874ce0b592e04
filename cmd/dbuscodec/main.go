package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/creachadair/mds/value"
	"github.com/kr/pretty"
	"go.uber.org/zap"

	"github.com/SchorppDA/dbus"
	"github.com/SchorppDA/dbus/fragments"
	"github.com/SchorppDA/dbus/signature"
)

var globalArgs struct {
	Order   string `flag:"order,default=le,Byte order: le, be, l, B, or flag to read it from the input"`
	Verbose bool   `flag:"verbose,Log codec debug output to stderr"`
}

var encodeArgs struct {
	Offset   int  `flag:"offset,Stream offset of the first output byte"`
	WithFlag bool `flag:"with-flag,Start the output with the byte order flag byte"`
}

var decodeArgs struct {
	Exact  bool `flag:"exact,Show exact DBus types instead of plain Go values"`
	Length int  `flag:"length,Expected length in bytes of the encoded values"`
}

func main() {
	root := &command.C{
		Name:     "dbuscodec",
		Usage:    "command args...",
		Help:     "Encode and decode values in the DBus wire format.",
		SetFlags: command.Flags(flax.MustBind, &globalArgs),
		Commands: []*command.C{
			{
				Name:  "parse",
				Usage: "parse signature",
				Help:  "Print the type tree of a DBus signature.",
				Run:   command.Adapt(runParse),
			},
			{
				Name:  "encode",
				Usage: "encode signature value...",
				Help: `Encode values to the DBus wire format.

Each value is a YAML document, and is converted to the corresponding
complete type of the signature. Maps become dictionaries, sequences
become arrays or structs. The encoding is printed in hex.`,
				SetFlags: command.Flags(flax.MustBind, &encodeArgs),
				Run:      command.Adapt(runEncode),
			},
			{
				Name:  "decode",
				Usage: "decode signature hex",
				Help: `Decode hex DBus wire data.

Whitespace and colons in the hex input are ignored. With --order=flag,
the input must start with a byte order flag byte ('l' or 'B'), which
selects the byte order of the values that follow.`,
				SetFlags: command.Flags(flax.MustBind, &decodeArgs),
				Run:      command.Adapt(runDecode),
			},
			{
				Name:  "guess",
				Usage: "guess value",
				Help:  "Print the variant type inferred for a YAML value.",
				Run:   command.Adapt(runGuess),
			},
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}

	env := root.NewEnv(nil)
	command.RunOrFail(env, os.Args[1:])
}

// codecConfig applies the global flags, and returns the selected
// byte order.
func codecConfig() (fragments.ByteOrder, error) {
	if globalArgs.Verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("creating logger: %w", err)
		}
		dbus.SetLogger(log)
	}
	return parseOrder(globalArgs.Order)
}

func runParse(env *command.Env, sig string) error {
	ts, err := signature.Parse(sig)
	if err != nil {
		return err
	}
	out := indenter{w: os.Stdout}
	for i, t := range ts {
		if i > 0 {
			out.indent(0)
			out.s("")
		}
		printType(&out, 0, t)
	}
	return nil
}

func runEncode(env *command.Env, sig string, args ...string) error {
	order, err := codecConfig()
	if err != nil {
		return err
	}
	vs := make([]any, len(args))
	for i, arg := range args {
		vs[i], err = fromYAML(arg)
		if err != nil {
			return err
		}
	}

	if order == nil {
		return errors.New("encode needs an explicit byte order")
	}

	m := dbus.NewMarshaller(encodeArgs.Offset, order)
	if encodeArgs.WithFlag {
		m.AppendByteOrderFlag()
	}
	if err := m.AppendAll(sig, vs...); err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	fmt.Println(formatHex(m.Bytes()))
	return nil
}

func runDecode(env *command.Env, sig, hexData string) error {
	order, err := codecConfig()
	if err != nil {
		return err
	}
	bs, err := parseHex(hexData)
	if err != nil {
		return err
	}

	mode := dbus.Plain
	if decodeArgs.Exact {
		mode = dbus.Exact
	}
	length := value.Absent[int]()
	if decodeArgs.Length > 0 {
		length = value.Just(decodeArgs.Length)
	}

	u, err := newUnmarshaller(bs, order)
	if err != nil {
		return err
	}
	vs, err := u.Unmarshal(sig, mode, length)
	if err != nil {
		if dbus.IsIncomplete(err) {
			return fmt.Errorf("truncated input: %w", err)
		}
		var se *signature.Error
		if errors.As(err, &se) {
			return fmt.Errorf("bad signature: %w", err)
		}
		return err
	}

	out := indenter{w: os.Stdout}
	for _, v := range vs {
		if dv, ok := v.(dbus.Value); ok {
			describe(&out, 0, dv)
		} else {
			out.f("%# v", pretty.Formatter(v))
		}
	}
	if n := u.Remaining(); n > 0 {
		out.indent(0)
		out.f("(%d trailing bytes not decoded)", n)
	}
	return nil
}

func runGuess(env *command.Env, arg string) error {
	if _, err := codecConfig(); err != nil {
		return err
	}
	v, err := fromYAML(arg)
	if err != nil {
		return err
	}
	vr, err := dbus.NewVariant(nil, v)
	if err != nil {
		return err
	}
	fmt.Println(vr.Contents().Type())
	if globalArgs.Verbose {
		out := indenter{w: os.Stderr}
		describe(&out, 0, vr.Contents())
	}
	return nil
}

// newUnmarshaller returns an Unmarshaller for bs. If order is nil, bs
// must start with a byte order flag byte.
func newUnmarshaller(bs []byte, order fragments.ByteOrder) (*dbus.Unmarshaller, error) {
	if order != nil {
		return dbus.NewUnmarshaller(bs, order), nil
	}
	u := dbus.NewUnmarshaller(bs, fragments.LittleEndian)
	if err := u.ByteOrderFlag(); err != nil {
		return nil, fmt.Errorf("reading byte order flag: %w", err)
	}
	return u, nil
}

// parseOrder returns the byte order named by s. It returns a nil
// ByteOrder for "flag", meaning the order is read from the input.
func parseOrder(s string) (fragments.ByteOrder, error) {
	switch strings.ToLower(s) {
	case "flag":
		return nil, nil
	case "le", "l", "little":
		return fragments.LittleEndian, nil
	case "be", "b", "big":
		return fragments.BigEndian, nil
	case "native":
		return fragments.NativeEndian, nil
	default:
		return nil, fmt.Errorf("unknown byte order %q", s)
	}
}
