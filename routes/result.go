package routes

import "net/http"

// Result is what a handler answers with: a status and an optional body. The body is
// serialized with the negotiator chosen from the request's Accept header. A nil Body
// writes the status alone, and a zero Status is sent as 200.
type Result struct {
	Status int
	Body   interface{}

	// Extra response headers. Content-Type is always set by negotiation.
	Headers http.Header
}

// WithHeader returns a copy of the result with the header key set to value.
func (result Result) WithHeader(key string, value string) Result {
	headers := result.Headers.Clone()
	if headers == nil {
		headers = make(http.Header)
	}
	headers.Set(key, value)
	result.Headers = headers
	return result
}

// WithPage returns a copy of the result carrying the paging headers of page.
func (result Result) WithPage(page Page) Result {
	headers := result.Headers.Clone()
	if headers == nil {
		headers = make(http.Header)
	}
	page.ToHeaders(headers)
	result.Headers = headers
	return result
}

// Ok is a 200 result.
func Ok(body interface{}) Result {
	return Result{Status: http.StatusOK, Body: body}
}

// Created is a 201 result.
func Created(body interface{}) Result {
	return Result{Status: http.StatusCreated, Body: body}
}

// BadRequest is a 400 result.
func BadRequest(body interface{}) Result {
	return Result{Status: http.StatusBadRequest, Body: body}
}

// Unauthorized is a 401 result.
func Unauthorized(body interface{}) Result {
	return Result{Status: http.StatusUnauthorized, Body: body}
}

// Forbidden is a 403 result.
func Forbidden(body interface{}) Result {
	return Result{Status: http.StatusForbidden, Body: body}
}

// NotFound is a 404 result.
func NotFound(body interface{}) Result {
	return Result{Status: http.StatusNotFound, Body: body}
}

// InternalServerError is a 500 result.
func InternalServerError(body interface{}) Result {
	return Result{Status: http.StatusInternalServerError, Body: body}
}

func (result Result) status() int {
	if result.Status == 0 {
		return http.StatusOK
	}
	return result.Status
}
