package encoding

import (
	"fmt"

	"github.com/illuscio-dev/spanroutes-go/mimetype"
	"golang.org/x/xerrors"
)

var textPlain = mimetype.MustNew("text", "plain", mimetype.Charset{})

// TextNegotiator handles text/plain. Any value is written with fmt.Sprint, while bodies
// can only be read into a *string.
type TextNegotiator struct {
	codecTypes
}

// NewTextNegotiator returns a TextNegotiator.
func NewTextNegotiator(opts ...NegotiatorOption) *TextNegotiator {
	return &TextNegotiator{
		codecTypes: newCodecTypes(textPlain, textPlain, false, opts),
	}
}

func (negotiator *TextNegotiator) Serialize(
	value interface{}, requested mimetype.MimeType,
) (Outcome, error) {
	responseType, err := negotiator.responseType(requested)
	if err != nil {
		return Outcome{}, err
	}

	body, err := negotiator.encodeText([]byte(fmt.Sprint(value)), responseType)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{MimeType: responseType, Body: body}, nil
}

func (negotiator *TextNegotiator) Deserialize(
	data []byte, contentType mimetype.MimeType, receiver interface{},
) (mimetype.MimeType, error) {
	requestType, err := negotiator.requestType(contentType)
	if err != nil {
		return mimetype.MimeType{}, err
	}

	stringPointer, ok := receiver.(*string)
	if !ok {
		return mimetype.MimeType{}, xerrors.Errorf(
			"receiver must be a string pointer to receive text: %w", ErrRefused,
		)
	}

	decoded, err := negotiator.decodeText(data, contentType)
	if err != nil {
		return mimetype.MimeType{}, err
	}

	*stringPointer = string(decoded)
	return requestType, nil
}
