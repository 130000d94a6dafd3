package spanerrors

import (
	"reflect"
	"strconv"

	uuid "github.com/satori/go.uuid"
	"github.com/ugorji/go/codec"
	"golang.org/x/xerrors"
)

const (
	headerName    = "error-name"
	headerCode    = "error-code"
	headerMessage = "error-message"
	headerID      = "error-id"
	headerData    = "error-data"
)

// ErrNoErrorInHeaders is returned by ErrorFromHeaders when the headers carry no error.
var ErrNoErrorInHeaders = xerrors.New("no error in headers")

// Error data is JSON in a header, so nested maps decode with string keys.
var errorDataHandle = newErrorDataHandle()

func newErrorDataHandle() *codec.JsonHandle {
	handle := &codec.JsonHandle{}
	handle.MapType = reflect.TypeOf(map[string]interface{}(nil))
	return handle
}

func encodeErrorData(errorData map[string]interface{}) (string, error) {
	var encoded []byte
	if err := codec.NewEncoderBytes(&encoded, errorDataHandle).Encode(errorData); err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeErrorData(encoded string) (map[string]interface{}, error) {
	errorData := make(map[string]interface{})
	err := codec.NewDecoderBytes([]byte(encoded), errorDataHandle).Decode(&errorData)
	if err != nil {
		return nil, err
	}
	return errorData, nil
}

type headerFetcher interface {
	Get(key string) string
}

/*
ErrorFromHeaders rebuilds an error from the headers of an HTTP response. If a
SpanError can be made from the header data, a pointer to it is returned. If an error
code is detected in the headers, but the header data is malformed and cannot be
loaded, then hasError is returned as true, and a description of the parsing issue is
returned in err.

If the headers do not contain an error, hasError will be false, spanError will be nil
and err will be ErrNoErrorInHeaders.

errorTypeCodeIndex is used to look up the type for the error code. Pass
ErrorTypeCodeIndex unless custom error types are in use.
*/
func ErrorFromHeaders(
	headers headerFetcher,
	errorTypeCodeIndex map[int]*SpanErrorType,
) (spanError *SpanError, hasError bool, err error) {
	errorCodeStr := headers.Get(headerCode)
	if errorCodeStr == "" {
		return nil, false, ErrNoErrorInHeaders
	}

	// A non-numeric code is not one of ours.
	errorCode, err := strconv.Atoi(errorCodeStr)
	if err != nil {
		return nil, false, xerrors.Errorf("error-code not int: %w", ErrNoErrorInHeaders)
	}

	if errorTypeCodeIndex == nil {
		return nil, true, xerrors.New("no error index provided")
	}
	errorType, ok := errorTypeCodeIndex[errorCode]
	if !ok {
		return nil, true, xerrors.New("no known error for code " + errorCodeStr)
	}

	errorID, err := uuid.FromString(headers.Get(headerID))
	if err != nil {
		return nil, true, xerrors.Errorf("error id is not valid UUID: %w", err)
	}

	var errorData map[string]interface{}
	if encoded := headers.Get(headerData); encoded != "" {
		errorData, err = decodeErrorData(encoded)
		if err != nil {
			return nil, true, xerrors.Errorf(
				"error data could not be parsed as JSON: %w", err,
			)
		}
	}

	spanError = errorType.New(headers.Get(headerMessage), errorData, nil)
	spanError.ID = errorID

	return spanError, true, nil
}
