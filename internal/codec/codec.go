package codec

import (
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// Codec encodes and decodes schema-tagged records.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var (
	defaultOnce  sync.Once
	defaultCodec *cborCodec
)

// CBOR returns the process-wide deterministic CBOR codec.
func CBOR() Codec {
	defaultOnce.Do(func() {
		c, err := newCBOR()
		if err != nil {
			// Options are static; a failure here is a programming error.
			panic(err)
		}
		defaultCodec = c
	})
	return defaultCodec
}

func newCBOR() (*cborCodec, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dec, err := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		return nil, err
	}
	return &cborCodec{enc: enc, dec: dec}, nil
}

func (c *cborCodec) Marshal(v any) ([]byte, error) {
	data, err := c.enc.Marshal(v)
	if err != nil {
		return nil, &Error{Op: OpEncode, Err: err}
	}
	return data, nil
}

func (c *cborCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return &Error{Op: OpDecode, Err: errEmptyInput}
	}
	if err := c.dec.Unmarshal(data, v); err != nil {
		return &Error{Op: OpDecode, Err: err}
	}
	return nil
}

// Marshal encodes v with the default codec.
func Marshal(v any) ([]byte, error) {
	return CBOR().Marshal(v)
}

// Unmarshal decodes data into v with the default codec.
func Unmarshal(data []byte, v any) error {
	return CBOR().Unmarshal(data, v)
}
