/*
Content negotiation for request and response bodies.

A Negotiator is a codec for one wire format. It declares the type it accepts for
request bodies and the type it produces for responses, both of which may contain
wildcards. An Engine holds an ordered list of negotiators and, per request, picks the
one matching the Content-Type or the Accept header.

Negotiators

The following negotiators ship with this package, and can be built by name through
LookupFactory:

• json: JSONNegotiator

• xml: XMLNegotiator

• yaml: YAMLNegotiator

• bson: BSONNegotiator

• msgpack: MsgPackNegotiator

• protobuf: ProtobufNegotiator

• text: TextNegotiator

Charsets

Text negotiators always answer with a charset. When the client names none, the
negotiator's DefaultCharset() is used, which is UTF-8 unless set with
WithDefaultCharset. Request bodies declaring a charset are transcoded to UTF-8 before
decoding.
*/
package encoding
