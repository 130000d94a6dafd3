package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/illuscio-dev/spanroutes-go/spanerrors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/xerrors"
)

func TestResponderSingleWrite(test *testing.T) {
	assert := assert.New(test)

	core, logs := observer.New(zapcore.DebugLevel)
	recorder := httptest.NewRecorder()
	responder := newResponder(recorder, zap.New(core))

	assert.False(responder.Responded())
	assert.NoError(responder.write(
		http.StatusCreated, nil, "text/plain; charset=utf-8", []byte("first"),
	))
	assert.True(responder.Responded())

	err := responder.write(http.StatusOK, nil, "", []byte("second"))
	assert.True(xerrors.Is(err, spanerrors.ResponseWrittenError))

	assert.Equal(http.StatusCreated, recorder.Code)
	assert.Equal("first", recorder.Body.String())
	assert.Equal(1, logs.FilterMessage("second response refused").Len())
}

func TestResponderFailAfterWrite(test *testing.T) {
	assert := assert.New(test)

	core, logs := observer.New(zapcore.DebugLevel)
	recorder := httptest.NewRecorder()
	responder := newResponder(recorder, zap.New(core))
	request := httptest.NewRequest(http.MethodGet, "/foo", nil)

	assert.NoError(responder.write(http.StatusOK, nil, "", nil))
	responder.fail(request, xerrors.New("too late"))

	assert.Equal(http.StatusOK, recorder.Code)
	assert.Empty(recorder.Header().Get("error-name"))
	assert.Equal(1, logs.FilterMessage("error raised after the response was written").Len())
}

func TestResponderFailWrapsPlainErrors(test *testing.T) {
	assert := assert.New(test)

	core, logs := observer.New(zapcore.DebugLevel)
	recorder := httptest.NewRecorder()
	responder := newResponder(recorder, zap.New(core))
	request := httptest.NewRequest(http.MethodGet, "/foo", nil)

	responder.fail(request, xerrors.New("database is down"))

	assert.Equal(http.StatusInternalServerError, recorder.Code)
	assert.Equal("APIError", recorder.Header().Get("error-name"))
	assert.Equal("1000", recorder.Header().Get("error-code"))
	assert.Empty(recorder.Body.String())
	assert.Equal(1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestResponderFailKeepsSpanErrorCode(test *testing.T) {
	assert := assert.New(test)

	recorder := httptest.NewRecorder()
	responder := newResponder(recorder, zap.NewNop())
	request := httptest.NewRequest(http.MethodGet, "/foo", nil)

	wrapped := xerrors.Errorf(
		"loading: %w",
		spanerrors.PathParamError.New("no foo", map[string]interface{}{"id": "abc"}, nil),
	)
	responder.fail(request, wrapped)

	assert.Equal(http.StatusNotFound, recorder.Code)
	assert.Equal("PathParamError", recorder.Header().Get("error-name"))
	assert.Equal("no foo", recorder.Header().Get("error-message"))
	assert.JSONEq(`{"id": "abc"}`, recorder.Header().Get("error-data"))
}
