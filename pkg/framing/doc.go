// Package framing splits an undelimited stream of back-to-back JSON objects
// into complete object frames.
//
// The broker's streaming body has no length prefix or separator between
// batches. A Splitter scans it one byte at a time, tracking brace depth and
// whether it is inside a string literal, so frames come out identically no
// matter where the transport happens to cut the chunks.
//
//	s := framing.NewSplitter()
//	err := s.Scan(ctx, resp.Body, func(f framing.Frame) error {
//	    batch := decoder.Decode(f)
//	    return buffer.Put(ctx, batch)
//	})
//
// A Splitter is not safe for concurrent use and holds the state of exactly one
// stream; create a new one per connection.
//
// # Escaped quotes
//
// By default a `"` always toggles the in-string flag, including an escaped
// `\"` inside a string. Payloads whose strings contain both escaped quotes and
// braces can therefore be mis-framed. EscapeAware enables a scanner that
// honours backslash escapes.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package framing
