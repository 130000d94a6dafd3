package encoding

import (
	"bytes"

	"github.com/illuscio-dev/spanroutes-go/mimetype"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/xerrors"
)

var (
	msgpackAccepts  = mimetype.MustNew("*", "msgpack", mimetype.Charset{})
	msgpackProduces = mimetype.MustNew("application", "msgpack", mimetype.Charset{})
)

// MsgPackNegotiator reads and writes MessagePack. Struct fields are named by their
// json tags, so one body type serves both negotiators. Map keys are written in sorted
// order and unknown fields are decode errors.
type MsgPackNegotiator struct {
	codecTypes
}

// NewMsgPackNegotiator returns a MsgPackNegotiator.
func NewMsgPackNegotiator(opts ...NegotiatorOption) *MsgPackNegotiator {
	return &MsgPackNegotiator{
		codecTypes: newCodecTypes(msgpackAccepts, msgpackProduces, true, opts),
	}
}

func (negotiator *MsgPackNegotiator) Serialize(
	value interface{}, requested mimetype.MimeType,
) (Outcome, error) {
	responseType, err := negotiator.responseType(requested)
	if err != nil {
		return Outcome{}, err
	}

	buffer := new(bytes.Buffer)
	encoder := msgpack.NewEncoder(buffer)
	encoder.SetCustomStructTag("json")
	encoder.SetSortMapKeys(true)

	if err := encoder.Encode(value); err != nil {
		return Outcome{}, xerrors.Errorf("msgpack encode error: %w", err)
	}
	return Outcome{MimeType: responseType, Body: buffer.Bytes()}, nil
}

func (negotiator *MsgPackNegotiator) Deserialize(
	data []byte, contentType mimetype.MimeType, receiver interface{},
) (mimetype.MimeType, error) {
	requestType, err := negotiator.requestType(contentType)
	if err != nil {
		return mimetype.MimeType{}, err
	}

	decoder := msgpack.NewDecoder(bytes.NewReader(data))
	decoder.SetCustomStructTag("json")
	decoder.DisallowUnknownFields(true)

	if err := decoder.Decode(receiver); err != nil {
		return mimetype.MimeType{}, xerrors.Errorf("msgpack decode error: %w", err)
	}
	return requestType, nil
}
