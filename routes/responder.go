package routes

import (
	"net/http"

	"github.com/illuscio-dev/spanroutes-go/spanerrors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// Writes the one response of a request. Every write after the first is refused.
type responder struct {
	writer  http.ResponseWriter
	written *atomic.Bool
	logger  *zap.Logger
}

func newResponder(writer http.ResponseWriter, logger *zap.Logger) *responder {
	return &responder{
		writer:  writer,
		written: atomic.NewBool(false),
		logger:  logger,
	}
}

// Responded reports whether a response was written.
func (responder *responder) Responded() bool {
	return responder.written.Load()
}

func (responder *responder) claim() error {
	if !responder.written.CompareAndSwap(false, true) {
		err := spanerrors.ResponseWrittenError.New(
			"a response was already written for this request", nil, nil,
		)
		responder.logger.Error("second response refused", zap.Error(err))
		return err
	}
	return nil
}

// Writes status and headers, with body as contentType when body is not nil.
func (responder *responder) write(
	status int, headers http.Header, contentType string, body []byte,
) error {
	if err := responder.claim(); err != nil {
		return err
	}

	for key, values := range headers {
		for _, value := range values {
			responder.writer.Header().Add(key, value)
		}
	}
	if contentType != "" {
		responder.writer.Header().Set("Content-Type", contentType)
	}
	responder.writer.WriteHeader(status)

	if body != nil {
		if _, err := responder.writer.Write(body); err != nil {
			return xerrors.Errorf("error writing response body: %w", err)
		}
	}
	return nil
}

// Answers with err: SpanErrors use their own http code, anything else is an APIError.
// The error travels in headers and the body is left empty.
func (responder *responder) fail(request *http.Request, err error) {
	var spanErr *spanerrors.SpanError
	if !xerrors.As(err, &spanErr) {
		spanErr = spanerrors.APIError.New("an unexpected error occurred", nil, err)
	}

	if claimErr := responder.claim(); claimErr != nil {
		responder.logger.Error(
			"error raised after the response was written",
			zap.String("error_name", spanErr.Name()),
			zap.String("message", spanErr.LogMessage()),
		)
		return
	}

	fields := []zap.Field{
		zap.String("method", request.Method),
		zap.String("path", request.URL.Path),
		zap.String("error_name", spanErr.Name()),
		zap.Int("status", spanErr.HttpCode()),
		zap.String("error_id", spanErr.ID.String()),
	}
	if spanErr.HttpCode() >= http.StatusInternalServerError {
		responder.logger.Error(
			spanErr.Message,
			append(fields, zap.String("detail", spanErr.LogMessage()))...,
		)
	} else {
		responder.logger.Debug(spanErr.Message, fields...)
	}

	if headerErr := spanErr.ToHeader(responder.writer.Header()); headerErr != nil {
		responder.logger.Warn("error data dropped from headers", zap.Error(headerErr))
	}
	responder.writer.WriteHeader(spanErr.HttpCode())
}
