// Package fieldstream turns a language model's token stream into a live
// stream of text for one string field of the JSON object the model is
// writing.
//
// A model told to answer with {"response": "..."} produces chunks such as
//
//	`{"resp`  `onse": "Hel`  `lo wor`  `ld"}`
//
// and a speech synthesizer wants "Hel", "lo wor", "ld" as soon as each piece
// arrives. Extract wraps the token stream and yields exactly those deltas:
//
//	s := fieldstream.Extract(tokens, fieldstream.WithField("response"))
//	for {
//	    delta, err := s.Next(ctx)
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    speak(delta)
//	}
//
// The first non-empty chunk decides the mode. If it does not start with '{'
// the stream is relayed verbatim (ModePassthrough). Otherwise every chunk is
// appended to a buffer that is re-parsed with a tolerant parser; the target
// field's current value is compared with what was already emitted and only
// the new suffix is returned.
//
// Three conditions are kept apart. A buffer that simply has not received
// enough input yet is silent and retried on the next chunk. A complete
// document that does not fit a Typed schema fails with ErrSchemaMismatch.
// Output that can never parse fails with ErrMalformed, and input that ends
// while a top-level key is still being written fails with
// ErrMalformedTerminal. Input that ends inside a value still parses, so the
// stream ends with io.EOF and Stats reports it as Truncated.
//
// FanOut runs one independent pipeline per consumer (speech, captions, ...)
// over independent views of the same generation.
package fieldstream
