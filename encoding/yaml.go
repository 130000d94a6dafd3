package encoding

import (
	"github.com/illuscio-dev/spanroutes-go/mimetype"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

var (
	yamlAccepts  = mimetype.MustNew("*", "yaml", mimetype.Charset{})
	yamlProduces = mimetype.MustNew("application", "yaml", mimetype.Charset{})
)

// YAMLNegotiator reads and writes YAML through gopkg.in/yaml.v2. Decoding is strict,
// so duplicate keys and fields missing from the receiver are decode errors.
type YAMLNegotiator struct {
	codecTypes
}

// NewYAMLNegotiator returns a YAMLNegotiator.
func NewYAMLNegotiator(opts ...NegotiatorOption) *YAMLNegotiator {
	return &YAMLNegotiator{
		codecTypes: newCodecTypes(yamlAccepts, yamlProduces, false, opts),
	}
}

func (negotiator *YAMLNegotiator) Serialize(
	value interface{}, requested mimetype.MimeType,
) (Outcome, error) {
	responseType, err := negotiator.responseType(requested)
	if err != nil {
		return Outcome{}, err
	}

	encoded, err := yaml.Marshal(value)
	if err != nil {
		return Outcome{}, xerrors.Errorf("yaml encode error: %w", err)
	}

	body, err := negotiator.encodeText(encoded, responseType)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{MimeType: responseType, Body: body}, nil
}

func (negotiator *YAMLNegotiator) Deserialize(
	data []byte, contentType mimetype.MimeType, receiver interface{},
) (mimetype.MimeType, error) {
	requestType, err := negotiator.requestType(contentType)
	if err != nil {
		return mimetype.MimeType{}, err
	}

	decoded, err := negotiator.decodeText(data, contentType)
	if err != nil {
		return mimetype.MimeType{}, err
	}

	if err := yaml.UnmarshalStrict(decoded, receiver); err != nil {
		return mimetype.MimeType{}, xerrors.Errorf("yaml decode error: %w", err)
	}
	return requestType, nil
}
