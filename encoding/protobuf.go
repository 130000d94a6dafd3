package encoding

import (
	"github.com/illuscio-dev/spanroutes-go/mimetype"
	"golang.org/x/xerrors"
	"google.golang.org/protobuf/proto"
)

var (
	protobufAccepts  = mimetype.MustNew("*", "x-protobuf", mimetype.Charset{})
	protobufProduces = mimetype.MustNew("application", "x-protobuf", mimetype.Charset{})
)

// ProtobufNegotiator reads and writes protocol buffer messages in their binary wire
// format. Values and receivers that are not proto.Message are refused.
type ProtobufNegotiator struct {
	codecTypes
}

// NewProtobufNegotiator returns a ProtobufNegotiator.
func NewProtobufNegotiator(opts ...NegotiatorOption) *ProtobufNegotiator {
	return &ProtobufNegotiator{
		codecTypes: newCodecTypes(protobufAccepts, protobufProduces, true, opts),
	}
}

func (negotiator *ProtobufNegotiator) Serialize(
	value interface{}, requested mimetype.MimeType,
) (Outcome, error) {
	responseType, err := negotiator.responseType(requested)
	if err != nil {
		return Outcome{}, err
	}

	message, ok := value.(proto.Message)
	if !ok {
		return Outcome{}, xerrors.Errorf("%T is not a proto.Message: %w", value, ErrRefused)
	}

	body, err := proto.MarshalOptions{Deterministic: true}.Marshal(message)
	if err != nil {
		return Outcome{}, xerrors.Errorf("protobuf encode error: %w", err)
	}
	return Outcome{MimeType: responseType, Body: body}, nil
}

func (negotiator *ProtobufNegotiator) Deserialize(
	data []byte, contentType mimetype.MimeType, receiver interface{},
) (mimetype.MimeType, error) {
	requestType, err := negotiator.requestType(contentType)
	if err != nil {
		return mimetype.MimeType{}, err
	}

	message, ok := receiver.(proto.Message)
	if !ok {
		return mimetype.MimeType{}, xerrors.Errorf(
			"%T is not a proto.Message: %w", receiver, ErrRefused,
		)
	}

	if err := proto.Unmarshal(data, message); err != nil {
		return mimetype.MimeType{}, xerrors.Errorf("protobuf decode error: %w", err)
	}
	return requestType, nil
}
