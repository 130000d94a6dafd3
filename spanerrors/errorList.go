package spanerrors

// APIError is the base error, used when a handler fails with an unclassified error or
// panics.
var APIError = NewSpanErrorType(
	"APIError",
	1000,
	500,
)

// EmptyBodyError is returned when a route that requires a body received none.
var EmptyBodyError = NewSpanErrorType(
	"EmptyBodyError",
	1001,
	400,
)

// UnsupportedMediaTypeError is returned when no negotiator accepts the request's
// Content-Type.
var UnsupportedMediaTypeError = NewSpanErrorType(
	"UnsupportedMediaTypeError",
	1002,
	400,
)

// NotAcceptableError is returned when no negotiator can produce any type listed in the
// request's Accept header. Sent as a 400 so clients see one status for every failed
// negotiation.
var NotAcceptableError = NewSpanErrorType(
	"NotAcceptableError",
	1003,
	400,
)

// DecodeError is returned when a body matched a negotiator but could not be decoded
// into the route's body type, or failed validation.
var DecodeError = NewSpanErrorType(
	"DecodeError",
	1004,
	400,
)

// ContractViolationError is returned when a negotiator selected for a response fails
// or refuses to serialize it.
var ContractViolationError = NewSpanErrorType(
	"ContractViolationError",
	1005,
	500,
)

// ConfigurationError is returned when routes or negotiators are set up incorrectly.
// It is never a per-request condition.
var ConfigurationError = NewSpanErrorType(
	"ConfigurationError",
	1006,
	500,
)

// PathParamError is returned when a path parameter is missing or has the wrong type.
var PathParamError = NewSpanErrorType(
	"PathParamError",
	1007,
	404,
)

// ResponseWrittenError is returned when a response is written twice for one request.
var ResponseWrittenError = NewSpanErrorType(
	"ResponseWrittenError",
	1008,
	500,
)

// InvalidMethodError is returned when a negotiated path exists but not for the
// request's HTTP method.
var InvalidMethodError = NewSpanErrorType(
	"InvalidMethodError",
	1009,
	400,
)

// QueryParamError is returned when a query parameter, such as a paging parameter,
// cannot be read.
var QueryParamError = NewSpanErrorType(
	"QueryParamError",
	1010,
	400,
)

// ErrorList holds the default SpanErrorType definitions.
var ErrorList = [11]*SpanErrorType{
	APIError,
	EmptyBodyError,
	UnsupportedMediaTypeError,
	NotAcceptableError,
	DecodeError,
	ContractViolationError,
	ConfigurationError,
	PathParamError,
	ResponseWrittenError,
	InvalidMethodError,
	QueryParamError,
}

// Used to make ErrorTypeCodeIndex.
func makeDefaultErrorCodeIndex() map[int]*SpanErrorType {
	index := make(map[int]*SpanErrorType)
	for _, errorType := range ErrorList {
		index[errorType.apiCode] = errorType
	}
	return index
}

// ErrorTypeCodeIndex maps ApiCode to the default error types.
var ErrorTypeCodeIndex = makeDefaultErrorCodeIndex()
