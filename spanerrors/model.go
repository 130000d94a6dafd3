package spanerrors

import (
	"fmt"
	"runtime/debug"
	"strconv"

	uuid "github.com/satori/go.uuid"
	"golang.org/x/xerrors"
)

// Interface for object that can set header information.
type headerSetter interface {
	Set(key string, value string)
}

/*
SpanErrorType defines a type of error that a negotiated route can return.

Each SpanErrorType for a given ecosystem should have a unique Name and ApiCode.

Since types are declared as pointers, to protect against accidental mutation of the
error type by other packages, the underlying fields of this struct are private and
accessed through functions. Define new error types using NewSpanErrorType()
*/
type SpanErrorType struct {
	// Unique human-readable name of the error type.
	name string

	// Unique number to identify the error type.
	apiCode int

	// HTTP status code sent when this error type is returned.
	httpCode int
}

// NewSpanErrorType returns an error type definition. Each definition should only need
// to be declared once, ensuring consistent codes and names across services.
func NewSpanErrorType(
	name string,
	apiCode int,
	httpCode int,
) *SpanErrorType {
	return &SpanErrorType{
		name:     name,
		apiCode:  apiCode,
		httpCode: httpCode,
	}
}

// New returns a SpanError of this type. source is the error that caused it, if any.
func (errorType *SpanErrorType) New(
	message string,
	errorData map[string]interface{},
	source error,
) *SpanError {
	return &SpanError{
		SpanErrorType: errorType,
		Message:       message,
		ID:            uuid.NewV4(),
		ErrorData:     errorData,
		sourceErr:     source,
		sourceStack:   debug.Stack(),
		frame:         xerrors.Caller(1),
	}
}

/*
Panic creates a new error and immediately panics with it. Route adapters recover the
panic and answer with the error, so handlers can abort from deeply nested calls without
threading the error back up.
*/
func (errorType *SpanErrorType) Panic(
	message string,
	errorData map[string]interface{},
	source error,
) {
	panic(errorType.New(message, errorData, source))
}

// Name is the unique human-readable name of the error type.
func (errorType *SpanErrorType) Name() string {
	return errorType.name
}

// ApiCode is the unique number identifying the error type.
func (errorType *SpanErrorType) ApiCode() int {
	return errorType.apiCode
}

// HttpCode is the HTTP status sent when this error type is returned.
func (errorType *SpanErrorType) HttpCode() int {
	return errorType.httpCode
}

// WithHttpCode returns a copy of the error type with the http code replaced. The copy
// still matches the original through IsType.
func (errorType *SpanErrorType) WithHttpCode(newHttpCode int) *SpanErrorType {
	return &SpanErrorType{
		name:     errorType.name,
		apiCode:  errorType.apiCode,
		httpCode: newHttpCode,
	}
}

// Allows the error type definition itself to also be a valid error, so it can be used
// as the target of xerrors.Is.
func (errorType *SpanErrorType) Error() string {
	return errorType.name + " (" + strconv.Itoa(errorType.apiCode) + ")"
}

// SpanError is a specific error instance.
type SpanError struct {
	// The type of error we are returning.
	*SpanErrorType

	// A message detailing what caused the error.
	Message string

	// An id for the error being returned.
	ID uuid.UUID

	// A string / any mapping of data related to the error.
	ErrorData map[string]interface{}

	// If this error was returned because of another error, the original error is stored
	// here.
	sourceErr error

	// The debug.Stack() from where this error was instantiated.
	sourceStack []byte

	// The xerrors.Frame from where this error was instantiated.
	frame xerrors.Frame
}

// IsType returns true if the underlying type of this error is errorType. Types copied
// through WithHttpCode still match, so the ErrorType fields are not compared directly.
func (spanError *SpanError) IsType(errorType *SpanErrorType) bool {
	return errorType != nil && spanError.SpanErrorType.Error() == errorType.Error()
}

// Is lets xerrors.Is(err, SomeErrorType) find a SpanError of that type in a chain.
func (spanError *SpanError) Is(target error) bool {
	errorType, ok := target.(*SpanErrorType)
	return ok && spanError.IsType(errorType)
}

// Error string to conform to builtin error interface.
func (spanError *SpanError) Error() string {
	return spanError.SpanErrorType.Error() + " - " + spanError.Message
}

// Unwrap returns the source error.
func (spanError *SpanError) Unwrap() error {
	return spanError.sourceErr
}

// FormatError implements xerrors.Formatter, printing the creation frame with %+v.
func (spanError *SpanError) FormatError(printer xerrors.Printer) error {
	printer.Print(spanError.Error())
	spanError.frame.Format(printer)
	return spanError.sourceErr
}

// Format hooks the error into fmt so that %+v prints the detailed chain.
func (spanError *SpanError) Format(state fmt.State, verb rune) {
	xerrors.FormatError(spanError, state, verb)
}

// LogMessage is a more verbose message that includes a debug.Stack() and source error
// information. This is not part of Error(), Message or ErrorData since it may contain
// information that should not be returned to the client.
func (spanError *SpanError) LogMessage() string {
	return fmt.Sprint(
		"\nMESSAGE: ",
		spanError.Error(),
		"\nORIGINAL: ",
		spanError.sourceErr,
		"\nPANIC STACK:\n",
		string(spanError.sourceStack),
	)
}

// ToHeader writes the error to an object which implements a Set(key string, value
// string) method like http.Header.
func (spanError *SpanError) ToHeader(setter headerSetter) error {
	setter.Set(headerName, spanError.name)
	setter.Set(headerCode, strconv.Itoa(spanError.apiCode))
	setter.Set(headerMessage, spanError.Message)
	setter.Set(headerID, spanError.ID.String())

	if spanError.ErrorData != nil {
		encoded, err := encodeErrorData(spanError.ErrorData)
		if err != nil {
			return xerrors.Errorf("error encoding error data: %w", err)
		}
		setter.Set(headerData, encoded)
	}

	return nil
}
