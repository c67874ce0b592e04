// package fragments provides low-level encoding and decoding helpers
// to construct and parse DBus messages.
//
// The provided encoder and decoder are very low level, and do not
// encode any DBus semantics beyond alignment and framing. It is the
// caller's responsibility to produce valid DBus messages using these
// tools.
//
// You should not need to use this package directly, unless you are
// building message headers or other framing around the message
// bodies produced by dbus.Marshaller and consumed by
// dbus.Unmarshaller.
package fragments
