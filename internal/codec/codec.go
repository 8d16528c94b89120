// Package codec defines how request bodies are encoded and responses decoded.
package codec

import "io"

type Encoder interface {
	Encode(v any) error
}

type Decoder interface {
	Decode(v any) error
}

// Marshaler encodes operation request bodies as JSON objects.
type Marshaler interface {
	Marshal(v any) ([]byte, error)
	NewEncoder(w io.Writer) Encoder
}

// Unmarshaler decodes operation responses. Numbers decoded into untyped
// destinations must come back as json.Number, never float64, so hash values
// keep their exact digits.
type Unmarshaler interface {
	Unmarshal(data []byte, dst any) error
	NewDecoder(r io.Reader) Decoder
}
