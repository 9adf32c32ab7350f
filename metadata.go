package fileintake

import (
	"bytes"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"time"

	"github.com/gobeaver/fileintake/filevalidator"
	"github.com/google/uuid"
)

// Kind identifies the variant held by a Value
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindNumber
	KindBool
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindBinary:
		return "binary"
	default:
		return "invalid"
	}
}

// Value is a metadata extension value. The zero Value is KindInvalid.
type Value struct {
	kind Kind
	str  string
	num  float64
	bin  []byte
}

// StringValue wraps s
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue wraps n
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

// IntValue wraps n as a number
func IntValue(n int) Value { return NumberValue(float64(n)) }

// BoolValue wraps b
func BoolValue(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// BinaryValue wraps a copy of b
func BinaryValue(b []byte) Value { return Value{kind: KindBinary, bin: bytes.Clone(b)} }

// Kind returns the variant held by v
func (v Value) Kind() Kind { return v.kind }

// Str returns the string held by v
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Number returns the number held by v
func (v Value) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// Int returns the number held by v truncated to an int
func (v Value) Int() (int, bool) { return int(v.num), v.kind == KindNumber }

// Bool returns the boolean held by v
func (v Value) Bool() (bool, bool) { return v.num != 0, v.kind == KindBool }

// Binary returns the bytes held by v. Callers must not modify them.
func (v Value) Binary() ([]byte, bool) { return v.bin, v.kind == KindBinary }

// Equal reports whether v and o hold the same variant and content
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.str == o.str && v.num == o.num && bytes.Equal(v.bin, o.bin)
}

// String formats v for display
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.num != 0)
	case KindBinary:
		return fmt.Sprintf("<%d bytes>", len(v.bin))
	default:
		return "<invalid>"
	}
}

// Extensions is an insertion-ordered map of plugin-provided metadata.
// It is copy-on-write: Set returns a new value and never modifies the receiver.
type Extensions struct {
	keys   []string
	values map[string]Value
}

// Get returns the value stored under key
func (e Extensions) Get(key string) (Value, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Has reports whether key is present
func (e Extensions) Has(key string) bool {
	_, ok := e.values[key]
	return ok
}

// Set returns a copy of e with key set to v. An existing key keeps its position.
func (e Extensions) Set(key string, v Value) Extensions {
	out := Extensions{
		keys:   slices.Clone(e.keys),
		values: make(map[string]Value, len(e.values)+1),
	}
	for k, val := range e.values {
		out.values[k] = val
	}
	if _, ok := out.values[key]; !ok {
		out.keys = append(out.keys, key)
	}
	out.values[key] = v
	return out
}

// Keys returns the keys in insertion order
func (e Extensions) Keys() []string { return slices.Clone(e.keys) }

// Len returns the number of entries
func (e Extensions) Len() int { return len(e.keys) }

// All iterates the entries in insertion order
func (e Extensions) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range e.keys {
			if !yield(k, e.values[k]) {
				return
			}
		}
	}
}

// Metadata describes a processed file
type Metadata struct {
	// ID is unique within one Processor and assigned after validation succeeds
	ID           string
	Name         string
	Size         int64
	Type         string
	Extension    string
	LastModified time.Time

	// Checksum is the hex digest of the original content, empty without content
	Checksum string

	Extensions Extensions
}

// NewID returns a random UUID string
func NewID() string {
	return uuid.NewString()
}

// ExtractMetadata derives metadata from the original file. newID defaults
// to NewID and algorithm to ChecksumXXHash.
func ExtractMetadata(f *filevalidator.File, newID func() string, algorithm ChecksumAlgorithm) (Metadata, error) {
	if newID == nil {
		newID = NewID
	}
	md := Metadata{
		ID:           newID(),
		Name:         f.Name,
		Size:         f.Size,
		Type:         f.Type,
		Extension:    f.Extension(),
		LastModified: f.LastModified,
	}
	if f.HasContent() && algorithm != ChecksumNone {
		sum, err := CalculateChecksum(f.Open(), algorithm)
		if err != nil {
			return Metadata{}, err
		}
		md.Checksum = sum
	}
	return md, nil
}
