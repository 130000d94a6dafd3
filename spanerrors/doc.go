/*
Error model for negotiated routes.

Every failure a negotiated route can answer with is classified by a SpanErrorType,
which pairs a stable name and API code with the HTTP status sent to the client:

• SpanErrorType defines an error type.

• SpanError is an instance of an error which contains a SpanErrorType.

SpanErrors travel to clients as response headers (error-name, error-code,
error-message, error-id and error-data), leaving the body empty. ErrorFromHeaders is
the client-side inverse.

Default SpanErrorType Variables

Several pointers to SpanErrorType definitions are included in this package, and
indexed by API code in ErrorTypeCodeIndex. Codes 1000-1999 are reserved for them.
*/
package spanerrors
