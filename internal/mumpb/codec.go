package mumpb

import "google.golang.org/grpc/encoding"

// wireMessage is satisfied by every mumpb message type; the codec below
// calls straight through to the hand-written Marshal/Unmarshal pair instead
// of routing through reflection-based protobuf, since these types were not
// produced by protoc.
type wireMessage interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

type codec struct{}

func (codec) Name() string { return "mumpb" }

func (codec) Marshal(v interface{}) ([]byte, error) {
	m, ok := v.(wireMessage)
	if !ok {
		return nil, errNotWireMessage(v)
	}
	return m.Marshal()
}

func (codec) Unmarshal(data []byte, v interface{}) error {
	m, ok := v.(wireMessage)
	if !ok {
		return errNotWireMessage(v)
	}
	return m.Unmarshal(data)
}

func init() {
	encoding.RegisterCodec(codec{})
}
