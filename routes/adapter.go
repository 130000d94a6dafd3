package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/illuscio-dev/spanroutes-go/spanerrors"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// Builds the gin handler that negotiates, decodes and answers for one route.
func (table *Table) ginHandler(route routeDef) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		responder := newResponder(ctx.Writer, table.logger)
		defer table.recoverHandler(ctx, responder)

		if err := table.serve(ctx, route, responder); err != nil {
			responder.fail(ctx.Request, err)
		}
	}
}

func (table *Table) serve(ctx *gin.Context, route routeDef, responder *responder) error {
	accept := ctx.GetHeader("Accept")

	if err := table.engine.CheckAccept(accept); err != nil {
		return err
	}

	request := &Request{
		Request: ctx.Request,
		params:  ctx.Params,
	}

	if route.factory != nil {
		body, err := ctx.GetRawData()
		if err != nil {
			return spanerrors.DecodeError.New("error reading request body", nil, err)
		}

		receiver := route.factory()
		bodyType, err := table.engine.Deserialize(
			ctx.GetHeader("Content-Type"), body, receiver,
		)
		if err != nil {
			return err
		}

		request.Body = receiver
		request.BodyType = bodyType
	}

	result, err := route.handler(request)
	if err != nil {
		return err
	}

	if result.Body == nil {
		return responder.write(result.status(), result.Headers, "", nil)
	}

	outcome, err := table.engine.Serialize(accept, result.Body)
	if err != nil {
		return err
	}

	table.logger.Debug(
		"request handled",
		zap.String("method", route.method),
		zap.String("route", route.path),
		zap.Int("status", result.status()),
		zap.String("content_type", outcome.ContentType()),
	)
	return responder.write(
		result.status(), result.Headers, outcome.ContentType(), outcome.Body,
	)
}

// Turns a handler panic into an error response. A panicking *SpanError is sent as
// is, anything else is an APIError.
func (table *Table) recoverHandler(ctx *gin.Context, responder *responder) {
	recovered := recover()
	if recovered == nil {
		return
	}

	var err error
	switch value := recovered.(type) {
	case *spanerrors.SpanError:
		err = value
	case error:
		err = spanerrors.APIError.New(
			"handler panicked", nil, xerrors.Errorf("panic: %w", value),
		)
	default:
		err = spanerrors.APIError.New(
			"handler panicked", nil, xerrors.New(fmt.Sprint("panic: ", value)),
		)
	}

	table.logger.Error(
		"recovered handler panic",
		zap.String("method", ctx.Request.Method),
		zap.String("path", ctx.Request.URL.Path),
		zap.Any("panic", recovered),
	)
	responder.fail(ctx.Request, err)
	ctx.Abort()
}
