// Package dbus encodes and decodes values in the DBus wire format.
//
// Values are described by DBus type signatures, parsed by the
// [signature] package. A [Value] is a Go value tagged with its exact
// DBus type: [Byte], [Boolean], [Int16], [UInt16], [Int32], [UInt32],
// [UnixFD], [Int64], [UInt64], [Double], [String], [ObjectPath],
// [Signature], [Array], [Struct], [DictEntry] and [Variant]. Values
// are immutable once constructed.
//
// [MakeValue] converts ordinary Go values to a Value of a given type.
// It applies the following conversions:
//
// Integers of any Go width convert to any DBus integer type, provided
// the value fits. Out of range values cause a [RangeError].
//
// Booleans are converted by truthiness: nil, false, numeric zero, and
// empty strings, slices, arrays and maps are false. Everything else
// is true.
//
// Strings, object paths and signatures accept Go strings, []byte and
// [fmt.Stringer] values. Strings must be valid UTF-8 without NUL
// bytes, object paths and signatures must be well formed.
//
// Arrays accept slices and Go arrays, converting each element to the
// array's element type. Byte arrays also accept strings and []byte.
// Dictionaries accept maps, and sequences of key/value pairs. Map
// entries are sorted by key, so that encoding is deterministic.
//
// Structs and dict entries accept slices and Go arrays with one
// element per field.
//
// Variants accept a [Value], which is boxed as is, a [Typed] value
// carrying an explicit signature, or any other Go value, whose DBus
// type is inferred by [GuessType].
//
// A [Marshaller] appends values to a byte buffer, and an
// [Unmarshaller] reads them back. The Unmarshaller presents decoded
// values either as plain Go values, or as exact Values, depending on
// the [Mode] requested.
//
// Decoding an incomplete buffer returns an [IncompleteBufferError],
// and leaves the Unmarshaller positioned where decoding started. The
// caller may [Unmarshaller.Feed] more bytes and try again. All other
// decoding errors are fatal for the buffer.
package dbus
