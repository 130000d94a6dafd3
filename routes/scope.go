package routes

import (
	"net/http"
	"strings"

	"github.com/illuscio-dev/spanroutes-go/spanerrors"
)

type routeDef struct {
	method  string
	path    string
	factory BodyFactory
	handler HandlerFunc
}

// Collects the routes of one Build call.
type collector struct {
	routes []routeDef
	errs   []error
}

/*
Scope declares routes under a path prefix. Scopes nest through Path, each child
holding its own copy of the prefix, so sibling scopes never see each other's segments:

	routes.Build(engine, func(root *routes.Scope) {
		root.Path("foo", func(foo *routes.Scope) {
			foo.GET(listFoo)
			foo.Path(":id", func(byID *routes.Scope) {
				byID.POST(newFoo, postFooByID)
			})
		})
	})

Scopes are only valid inside the function passed to Build.
*/
type Scope struct {
	segments  []string
	collector *collector
}

// Path declares a nested scope. segment may hold several segments and path
// parameters, such as "child/:childId".
func (scope *Scope) Path(segment string, define func(child *Scope)) {
	segments := make([]string, len(scope.segments), len(scope.segments)+1)
	copy(segments, scope.segments)

	child := &Scope{
		segments:  append(segments, segment),
		collector: scope.collector,
	}
	define(child)
}

// FullPath is "/" followed by the non-blank segments of the scope, joined by "/".
func (scope *Scope) FullPath() string {
	parts := make([]string, 0, len(scope.segments))
	for _, segment := range scope.segments {
		for _, part := range strings.Split(segment, "/") {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
	}
	return "/" + strings.Join(parts, "/")
}

// GET declares a GET route.
func (scope *Scope) GET(handler HandlerFunc) {
	scope.Handle(http.MethodGet, nil, handler)
}

// DELETE declares a DELETE route.
func (scope *Scope) DELETE(handler HandlerFunc) {
	scope.Handle(http.MethodDelete, nil, handler)
}

// POSTBlank declares a POST route that ignores the request body.
func (scope *Scope) POSTBlank(handler HandlerFunc) {
	scope.Handle(http.MethodPost, nil, handler)
}

// PUTBlank declares a PUT route that ignores the request body.
func (scope *Scope) PUTBlank(handler HandlerFunc) {
	scope.Handle(http.MethodPut, nil, handler)
}

// POST declares a POST route whose body is decoded into the value returned by
// factory.
func (scope *Scope) POST(factory BodyFactory, handler HandlerFunc) {
	scope.withBody(http.MethodPost, factory, handler)
}

// PUT declares a PUT route whose body is decoded into the value returned by factory.
func (scope *Scope) PUT(factory BodyFactory, handler HandlerFunc) {
	scope.withBody(http.MethodPut, factory, handler)
}

// PATCH declares a PATCH route whose body is decoded into the value returned by
// factory.
func (scope *Scope) PATCH(factory BodyFactory, handler HandlerFunc) {
	scope.withBody(http.MethodPatch, factory, handler)
}

func (scope *Scope) withBody(method string, factory BodyFactory, handler HandlerFunc) {
	if factory == nil {
		scope.fail(method, "body factory is nil")
		return
	}
	scope.Handle(method, factory, handler)
}

// Handle declares a route for any method. A nil factory declares a route without a
// body.
func (scope *Scope) Handle(method string, factory BodyFactory, handler HandlerFunc) {
	if handler == nil {
		scope.fail(method, "handler is nil")
		return
	}

	scope.collector.routes = append(scope.collector.routes, routeDef{
		method:  strings.ToUpper(method),
		path:    scope.FullPath(),
		factory: factory,
		handler: handler,
	})
}

func (scope *Scope) fail(method string, message string) {
	scope.collector.errs = append(scope.collector.errs, spanerrors.ConfigurationError.New(
		message,
		map[string]interface{}{"method": method, "path": scope.FullPath()},
		nil,
	))
}
