/*
Package routes declares http routes whose request and response bodies go through an
encoding.Engine, and mounts them on a gin router.

Routes are declared with nested scopes and resolved into a Table by Build:

	table, err := routes.Build(engine, func(root *routes.Scope) {
		root.Path("foo", func(foo *routes.Scope) {
			foo.GET(listFoo)
			foo.POST(func() interface{} { return new(Foo) }, createFoo)
		})
	})

Each request is then handled in the same order:

1. The Accept header is checked, so a request nothing can answer is refused up front.

2. For routes with a body, the body is decoded into a fresh value from the route's
BodyFactory and validated.

3. The handler runs and its Result is serialized with the negotiator chosen for the
Accept header.

Errors

Handler errors, decoding failures and panics are answered with the http code of
their spanerrors type. The error itself is written to the response headers (see
spanerrors.ErrorFromHeaders) and the body is left empty. Errors that are not
SpanErrors are sent as a 500 APIError.

A request gets exactly one response. A second write is refused with a
ResponseWrittenError.
*/
package routes
