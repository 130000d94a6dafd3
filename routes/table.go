package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/illuscio-dev/spanroutes-go/encoding"
	"github.com/illuscio-dev/spanroutes-go/spanerrors"
	"go.uber.org/zap"
)

// Option customizes a Table.
type Option func(table *Table)

// WithLogger sets the logger used for resolved routes and request failures. Defaults to
// a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(table *Table) {
		if logger != nil {
			table.logger = logger
		}
	}
}

// Route is one resolved route of a Table.
type Route struct {
	Method string
	Path   string

	// Whether the route decodes a request body.
	HasBody bool
}

/*
Table is the flat list of routes produced by Build, bound to one negotiation Engine.
It is immutable and can be mounted on any number of gin engines.
*/
type Table struct {
	engine *encoding.Engine
	routes []routeDef
	logger *zap.Logger
}

/*
Build runs define against a root scope and resolves the declared routes into a Table.

Setup mistakes are reported as a ConfigurationError: a nil engine, a nil handler or
body factory, the same method declared twice on one path, or paths the router cannot
hold together (such as two parameter names at the same position).

Paths are checked by mounting the table on a scratch gin engine, so in gin's debug mode
gin prints its own [GIN-debug] lines for every Build. Those go to gin.DefaultWriter and
cannot be redirected per table; set gin.SetMode(gin.ReleaseMode) to silence them. Each
resolved route is also logged at debug level through the WithLogger logger.
*/
func Build(
	engine *encoding.Engine, define func(root *Scope), opts ...Option,
) (*Table, error) {
	if engine == nil {
		return nil, spanerrors.ConfigurationError.New("route engine is nil", nil, nil)
	}

	declared := &collector{}
	define(&Scope{collector: declared})

	if len(declared.errs) > 0 {
		return nil, declared.errs[0]
	}

	seen := make(map[string]bool, len(declared.routes))
	for _, route := range declared.routes {
		key := route.method + " " + route.path
		if seen[key] {
			return nil, spanerrors.ConfigurationError.New(
				"route declared twice: "+key, nil, nil,
			)
		}
		seen[key] = true
	}

	table := &Table{
		engine: engine,
		routes: declared.routes,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(table)
	}

	if err := table.checkTree(); err != nil {
		return nil, err
	}
	for _, route := range table.Routes() {
		table.logger.Debug(
			"route resolved",
			zap.String("method", route.Method),
			zap.String("path", route.Path),
			zap.Bool("has_body", route.HasBody),
		)
	}
	return table, nil
}

// Mounts the routes on a scratch router, which panics on conflicting paths.
func (table *Table) checkTree() (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = spanerrors.ConfigurationError.New(
				fmt.Sprint("routes cannot be mounted: ", recovered), nil, nil,
			)
		}
	}()

	table.Mount(gin.New())
	return nil
}

// Routes lists the routes in declaration order.
func (table *Table) Routes() []Route {
	routes := make([]Route, len(table.routes))
	for index, route := range table.routes {
		routes[index] = Route{
			Method:  route.method,
			Path:    route.path,
			HasBody: route.factory != nil,
		}
	}
	return routes
}

/*
Mount registers the routes on router.

It also turns on router.HandleMethodNotAllowed and installs a NoMethod handler, so a
request for a known path with an undeclared method gets a 400 InvalidMethodError
instead of falling through to another handler. This applies to every path of router.
*/
func (table *Table) Mount(router *gin.Engine) {
	for _, route := range table.routes {
		router.Handle(route.method, route.path, table.ginHandler(route))
	}

	router.HandleMethodNotAllowed = true
	router.NoMethod(table.methodNotAllowed)
}

// Handler returns a new gin engine serving only the routes of the table.
func (table *Table) Handler() http.Handler {
	router := gin.New()
	table.Mount(router)
	return router
}

func (table *Table) methodNotAllowed(ctx *gin.Context) {
	responder := newResponder(ctx.Writer, table.logger)
	responder.fail(ctx.Request, spanerrors.InvalidMethodError.New(
		"method "+ctx.Request.Method+" is not declared for this path", nil, nil,
	))
	ctx.Abort()
}
