package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/illuscio-dev/spanroutes-go/mimetype"
	"github.com/illuscio-dev/spanroutes-go/spanerrors"
)

// HandlerFunc handles a negotiated request. Returning an error answers with that
// error instead of the result: SpanErrors keep their http code, any other error is a
// 500 APIError.
type HandlerFunc func(request *Request) (Result, error)

// BodyFactory returns a fresh pointer for a request body to be decoded into.
type BodyFactory func() interface{}

// Request is the incoming request as seen by a HandlerFunc.
type Request struct {
	*http.Request

	// The decoded body, as returned by the route's BodyFactory. Nil for routes without
	// a body.
	Body interface{}

	// The type Body was decoded as. Zero when the client sent no Content-Type or the
	// route has no body.
	BodyType mimetype.MimeType

	params gin.Params
}

// Param returns the path parameter name. A missing parameter is a PathParamError.
func (request *Request) Param(name string) (string, error) {
	value, ok := request.params.Get(name)
	if !ok {
		return "", spanerrors.PathParamError.New(
			"missing path parameter "+name,
			map[string]interface{}{"param": name},
			nil,
		)
	}
	return value, nil
}

// IntParam returns the path parameter name as an int. A missing or non-numeric
// parameter is a PathParamError.
func (request *Request) IntParam(name string) (int, error) {
	raw, err := request.Param(name)
	if err != nil {
		return 0, err
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, spanerrors.PathParamError.New(
			"path parameter "+name+" is not an integer",
			map[string]interface{}{"param": name, "value": raw},
			err,
		)
	}
	return value, nil
}
