package encoding

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/illuscio-dev/spanroutes-go/mimetype"
	"github.com/illuscio-dev/spanroutes-go/spanerrors"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// EngineOption customizes an Engine at construction.
type EngineOption func(engine *Engine)

// WithLogger sets the logger of the engine. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(engine *Engine) {
		if logger != nil {
			engine.logger = logger
		}
	}
}

// WithValidator sets the validator run on decoded struct bodies. A nil validator
// turns validation off.
func WithValidator(validate *validator.Validate) EngineOption {
	return func(engine *Engine) {
		engine.validate = validate
	}
}

// WithMetrics makes the engine record its negotiations.
func WithMetrics(metrics *Metrics) EngineOption {
	return func(engine *Engine) {
		engine.metrics = metrics
	}
}

/*
Engine picks, for each request, the negotiator that decodes the request body and the
one that encodes the response body.

Order

The order of the negotiators passed to NewEngine matters: the first negotiator is
used when a request names no type, and breaks ties between equally weighted matches.

Errors

Every error returned by Deserialize, Serialize, RequestNegotiator and
ResponseNegotiator is a *spanerrors.SpanError:

• EmptyBodyError when there is no body to decode.

• UnsupportedMediaTypeError when no negotiator accepts the Content-Type.

• DecodeError when the selected negotiator cannot decode the body, or the decoded
struct fails validation.

• NotAcceptableError when no negotiator produces a type the Accept header allows.

• ContractViolationError when the negotiator selected for a response fails.

Panics

If a negotiator panics, the panic is caught and handled as the error it stands for.

An Engine is immutable and can be shared by concurrent requests.
*/
type Engine struct {
	negotiators []Negotiator
	logger      *zap.Logger
	validate    *validator.Validate
	metrics     *Metrics
}

// NewEngine returns an engine for negotiators. An empty negotiator list is a
// ConfigurationError.
func NewEngine(negotiators []Negotiator, opts ...EngineOption) (*Engine, error) {
	if len(negotiators) == 0 {
		return nil, spanerrors.ConfigurationError.New(
			"an engine needs at least one negotiator", nil, nil,
		)
	}
	for index, negotiator := range negotiators {
		if negotiator == nil {
			return nil, spanerrors.ConfigurationError.New(
				"negotiator is nil",
				map[string]interface{}{"index": index},
				nil,
			)
		}
	}

	engine := &Engine{
		negotiators: append([]Negotiator(nil), negotiators...),
		logger:      zap.NewNop(),
		validate:    validator.New(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// Negotiators returns a copy of the negotiator list, in order.
func (engine *Engine) Negotiators() []Negotiator {
	return append([]Negotiator(nil), engine.negotiators...)
}

// Default returns the first negotiator.
func (engine *Engine) Default() Negotiator {
	return engine.negotiators[0]
}

/*
RequestNegotiator selects the negotiator for a request body with the Content-Type
header value contentType, and returns it with the parsed type.

A missing or unreadable Content-Type selects the default negotiator, with a zero
type. Otherwise the first negotiator whose Accepts() supports the type is selected.
*/
func (engine *Engine) RequestNegotiator(
	contentType string,
) (Negotiator, mimetype.MimeType, error) {
	parsed, ok := mimetype.TryParse(contentType)
	if !ok {
		return engine.Default(), mimetype.MimeType{}, nil
	}

	for _, negotiator := range engine.negotiators {
		if negotiator.Accepts().Supports(parsed) {
			return negotiator, parsed, nil
		}
	}

	return nil, parsed, spanerrors.UnsupportedMediaTypeError.New(
		"no negotiator accepts content type "+parsed.String(), nil, nil,
	)
}

/*
Deserialize decodes body into receiver with the negotiator selected by
RequestNegotiator, and returns the type the body was read as. Once selected, no other
negotiator is tried.

Decoded structs are then checked with the engine's validator, so fields tagged
`validate:"required"` can be enforced.
*/
func (engine *Engine) Deserialize(
	contentType string, body []byte, receiver interface{},
) (mimetype.MimeType, error) {
	if len(body) == 0 {
		engine.metrics.recordNegotiation(DirectionRequest, "", resultEmptyBody)
		return mimetype.MimeType{}, spanerrors.EmptyBodyError.New(
			"request body is empty", nil, nil,
		)
	}

	negotiator, parsed, err := engine.RequestNegotiator(contentType)
	if err != nil {
		engine.metrics.recordNegotiation(DirectionRequest, "", resultUnsupportedMediaType)
		engine.logger.Debug(
			"no negotiator for request", zap.String("content_type", contentType),
		)
		return mimetype.MimeType{}, err
	}

	// Labels come from the negotiator, never the client, to keep series bounded.
	label := negotiator.Accepts().Essence()

	decodedType, err := safeDeserialize(negotiator, body, parsed, receiver)
	if err != nil {
		engine.metrics.recordCodecError(label, "decode")
		engine.metrics.recordNegotiation(DirectionRequest, label, resultDecodeError)
		engine.logger.Debug(
			"request body could not be decoded",
			zap.String("mime_type", label),
			zap.Error(err),
		)
		return mimetype.MimeType{}, spanerrors.DecodeError.New(
			"error decoding request body: "+err.Error(), nil, err,
		)
	}

	if err := engine.validateBody(receiver); err != nil {
		engine.metrics.recordNegotiation(DirectionRequest, label, resultDecodeError)
		return mimetype.MimeType{}, spanerrors.DecodeError.New(
			"request body failed validation: "+err.Error(), nil, err,
		)
	}

	engine.metrics.recordNegotiation(DirectionRequest, label, resultOK)
	engine.logger.Debug("decoded request body", zap.Stringer("mime_type", decodedType))
	return decodedType, nil
}

/*
ResponseNegotiator selects the negotiator for a response given the Accept header
value accept, and returns it with the type it is asked to produce.

Without usable Accept entries the default negotiator is selected and asked for its
own Produces(). Otherwise each negotiator is paired with the highest weighted entry
its Produces() is compatible with, and the negotiator with the highest weight wins.
Ties go to the earlier negotiator, then the earlier entry. The requested type is the
negotiator's Produces() narrowed by the entry.
*/
func (engine *Engine) ResponseNegotiator(
	accept string,
) (Negotiator, mimetype.MimeType, error) {
	entries := mimetype.ParseAccept(accept)
	if len(entries) == 0 {
		return engine.Default(), engine.Default().Produces(), nil
	}

	var selected Negotiator
	var selectedEntry mimetype.AcceptEntry
	bestQuality := -1.0

	for _, negotiator := range engine.negotiators {
		produces := negotiator.Produces()
		for _, entry := range entries {
			if entry.Quality > bestQuality && produces.Compatible(entry.MimeType) {
				selected = negotiator
				selectedEntry = entry
				bestQuality = entry.Quality
			}
		}
	}

	if selected == nil {
		return nil, mimetype.MimeType{}, spanerrors.NotAcceptableError.New(
			"no negotiator produces a type allowed by accept header: "+accept, nil, nil,
		)
	}
	return selected, selected.Produces().Narrow(selectedEntry.MimeType), nil
}

// CheckAccept fails with a NotAcceptableError when no negotiator can answer accept, so
// a request can be refused before any work is done for it.
func (engine *Engine) CheckAccept(accept string) error {
	if _, _, err := engine.ResponseNegotiator(accept); err != nil {
		engine.metrics.recordNegotiation(DirectionResponse, "", resultNotAcceptable)
		return err
	}
	return nil
}

// Serialize encodes value with the negotiator selected by ResponseNegotiator. The
// Outcome's ContentType() is the Content-Type header for the response.
func (engine *Engine) Serialize(accept string, value interface{}) (Outcome, error) {
	negotiator, requested, err := engine.ResponseNegotiator(accept)
	if err != nil {
		engine.metrics.recordNegotiation(DirectionResponse, "", resultNotAcceptable)
		engine.logger.Debug("no negotiator for response", zap.String("accept", accept))
		return Outcome{}, err
	}

	outcome, err := safeSerialize(negotiator, value, requested)
	if err == nil && !outcome.MimeType.IsConcrete() {
		err = xerrors.Errorf(
			"negotiator returned non-concrete type %q", outcome.MimeType.String(),
		)
	}

	label := negotiator.Produces().Essence()
	if err != nil {
		engine.metrics.recordCodecError(label, "encode")
		engine.metrics.recordNegotiation(DirectionResponse, label, resultContractViolation)
		engine.logger.Warn(
			"negotiator failed to serialize response",
			zap.Stringer("requested", requested),
			zap.String("accept", accept),
			zap.Error(err),
		)
		return Outcome{}, spanerrors.ContractViolationError.New(
			"response could not be serialized as "+requested.String(), nil, err,
		)
	}

	engine.metrics.recordNegotiation(DirectionResponse, label, resultOK)
	engine.logger.Debug(
		"serialized response",
		zap.String("content_type", outcome.ContentType()),
		zap.Int("bytes", len(outcome.Body)),
	)
	return outcome, nil
}

func (engine *Engine) validateBody(receiver interface{}) error {
	if engine.validate == nil {
		return nil
	}

	value := reflect.ValueOf(receiver)
	for value.Kind() == reflect.Ptr || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}

	return engine.validate.Struct(value.Interface())
}

func panicError(operation string, recovered interface{}) error {
	if recoveredErr, ok := recovered.(error); ok {
		return xerrors.Errorf("panic during %v: %w", operation, recoveredErr)
	}
	return xerrors.Errorf("panic during %v: %v", operation, recovered)
}

// Serializes with a negotiator while catching panics to return as errors.
func safeSerialize(
	negotiator Negotiator, value interface{}, requested mimetype.MimeType,
) (outcome Outcome, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = panicError("serialize", recovered)
		}
	}()

	return negotiator.Serialize(value, requested)
}

// Deserializes with a negotiator while catching panics to return as errors.
func safeDeserialize(
	negotiator Negotiator,
	data []byte,
	contentType mimetype.MimeType,
	receiver interface{},
) (decodedType mimetype.MimeType, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = panicError("deserialize", recovered)
		}
	}()

	return negotiator.Deserialize(data, contentType, receiver)
}
