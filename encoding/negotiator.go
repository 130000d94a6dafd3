package encoding

import (
	"github.com/illuscio-dev/spanroutes-go/mimetype"
	"golang.org/x/xerrors"
)

// ErrRefused is returned (possibly wrapped) by a Negotiator that cannot honor the
// requested type or receiver. It is a refusal, not a failure of the payload.
var ErrRefused = xerrors.New("negotiator refused")

/*
Negotiator is a codec for one wire format, declaring the MIME types it can decode
and encode.

A zero requested or contentType argument means the client did not specify one.
Negotiators are built once at setup time and then shared by every request, so
implementations must be safe for concurrent use and must not mutate their own state
in Serialize or Deserialize.

New wire formats are added by implementing Negotiator and adding the value to the
list passed to NewEngine. The engine needs no changes.
*/
type Negotiator interface {
	// Accepts is the request body type this negotiator decodes. May contain wildcards.
	Accepts() mimetype.MimeType

	// Produces is the response type this negotiator encodes. May contain wildcards.
	Produces() mimetype.MimeType

	// Serialize encodes value as requested. The returned Outcome must carry a concrete
	// MIME type, with a charset for text encodings. Returns ErrRefused when requested
	// cannot be honored.
	Serialize(value interface{}, requested mimetype.MimeType) (Outcome, error)

	// Deserialize decodes data into receiver and returns the type the data was read as.
	// Returns ErrRefused when contentType is not covered by Accepts() or receiver is of
	// a kind the negotiator cannot fill. Any other error is a malformed payload.
	Deserialize(
		data []byte, contentType mimetype.MimeType, receiver interface{},
	) (mimetype.MimeType, error)
}

// Outcome is the result of a serialization: the bytes and the concrete type they are
// encoded as.
type Outcome struct {
	MimeType mimetype.MimeType
	Body     []byte
}

// ContentType is the value for the Content-Type header of the outcome.
func (outcome Outcome) ContentType() string {
	return outcome.MimeType.String()
}

// NegotiatorOption customizes a negotiator at construction.
type NegotiatorOption func(settings *negotiatorSettings)

type negotiatorSettings struct {
	accepts        mimetype.MimeType
	produces       mimetype.MimeType
	defaultCharset mimetype.Charset
}

// WithAccepts replaces the request body type a negotiator declares.
func WithAccepts(accepts mimetype.MimeType) NegotiatorOption {
	return func(settings *negotiatorSettings) {
		settings.accepts = accepts
	}
}

// WithProduces replaces the response type a negotiator declares.
func WithProduces(produces mimetype.MimeType) NegotiatorOption {
	return func(settings *negotiatorSettings) {
		settings.produces = produces
	}
}

// WithDefaultCharset sets the charset a text negotiator encodes with when the client
// names none. Binary negotiators ignore it.
func WithDefaultCharset(charset mimetype.Charset) NegotiatorOption {
	return func(settings *negotiatorSettings) {
		settings.defaultCharset = charset
	}
}

/*
codecTypes holds the declared types of a negotiator and implements the type checks
every concrete negotiator shares. Text codecs always answer with a charset, falling
back to defaultCharset. Binary codecs never carry one.
*/
type codecTypes struct {
	accepts        mimetype.MimeType
	produces       mimetype.MimeType
	defaultCharset mimetype.Charset
	binary         bool

	// Writes characters the response charset cannot represent.
	escape func(char rune) string
}

// Unrepresentable characters of plain text codecs become '?'.
func replaceRune(rune) string {
	return "?"
}

func newCodecTypes(
	accepts mimetype.MimeType,
	produces mimetype.MimeType,
	binary bool,
	opts []NegotiatorOption,
) codecTypes {
	settings := &negotiatorSettings{
		accepts:        accepts,
		produces:       produces,
		defaultCharset: mimetype.UTF8,
	}
	for _, opt := range opts {
		opt(settings)
	}
	if settings.defaultCharset.IsZero() {
		settings.defaultCharset = mimetype.UTF8
	}

	return codecTypes{
		accepts:        settings.accepts,
		produces:       settings.produces,
		defaultCharset: settings.defaultCharset,
		binary:         binary,
		escape:         replaceRune,
	}
}

func (types codecTypes) Accepts() mimetype.MimeType {
	return types.accepts
}

func (types codecTypes) Produces() mimetype.MimeType {
	return types.produces
}

// DefaultCharset is the charset used when the requested type names none.
func (types codecTypes) DefaultCharset() mimetype.Charset {
	return types.defaultCharset
}

// Resolves the concrete type a response is written as.
func (types codecTypes) responseType(
	requested mimetype.MimeType,
) (mimetype.MimeType, error) {
	responseType := types.produces
	if !requested.IsZero() {
		if !types.produces.Compatible(requested) {
			return mimetype.MimeType{}, xerrors.Errorf(
				"cannot produce %v: %w", requested, ErrRefused,
			)
		}
		responseType = types.produces.Narrow(requested)
	}

	if !responseType.IsConcrete() {
		return mimetype.MimeType{}, xerrors.Errorf(
			"%v is not a concrete type: %w", responseType, ErrRefused,
		)
	}

	switch {
	case types.binary:
		responseType = responseType.WithoutCharset()
	case !responseType.HasCharset():
		responseType = responseType.WithCharset(types.defaultCharset)
	}
	return responseType, nil
}

// Checks an inbound Content-Type, returning the type the body will be read as.
func (types codecTypes) requestType(
	contentType mimetype.MimeType,
) (mimetype.MimeType, error) {
	if contentType.IsZero() {
		return types.accepts, nil
	}
	if !types.accepts.Supports(contentType) {
		return mimetype.MimeType{}, xerrors.Errorf(
			"cannot decode %v: %w", contentType, ErrRefused,
		)
	}
	return contentType, nil
}

// Transcodes UTF-8 output into the charset of responseType, escaping what the charset
// cannot represent.
func (types codecTypes) encodeText(
	utf8Text []byte, responseType mimetype.MimeType,
) ([]byte, error) {
	if types.binary {
		return utf8Text, nil
	}
	return responseType.Charset().EncodeEscaping(utf8Text, types.escape)
}

// Transcodes an inbound body to UTF-8 according to its declared charset.
func (types codecTypes) decodeText(
	data []byte, contentType mimetype.MimeType,
) ([]byte, error) {
	if types.binary {
		return data, nil
	}
	return contentType.Charset().Decode(data)
}
