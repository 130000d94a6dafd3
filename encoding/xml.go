package encoding

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/illuscio-dev/spanroutes-go/mimetype"
	"golang.org/x/xerrors"
)

var (
	xmlAccepts  = mimetype.MustNew("*", "xml", mimetype.Charset{})
	xmlProduces = mimetype.MustNew("application", "xml", mimetype.Charset{})
)

/*
XMLNegotiator reads and writes XML through encoding/xml.

It accepts any type with an xml sub type and produces application/xml. Documents are
written with an XML declaration naming the charset they are encoded in, and
characters that charset cannot represent become character references. Inbound
documents may be in any charset known to the IANA index, named either by the
Content-Type or by their own declaration.
*/
type XMLNegotiator struct {
	codecTypes
}

// NewXMLNegotiator returns an XMLNegotiator.
func NewXMLNegotiator(opts ...NegotiatorOption) *XMLNegotiator {
	types := newCodecTypes(xmlAccepts, xmlProduces, false, opts)
	types.escape = escapeXMLRune
	return &XMLNegotiator{codecTypes: types}
}

// Characters the charset lacks are written as character references.
func escapeXMLRune(char rune) string {
	return fmt.Sprintf("&#%d;", char)
}

func (negotiator *XMLNegotiator) Serialize(
	value interface{}, requested mimetype.MimeType,
) (Outcome, error) {
	responseType, err := negotiator.responseType(requested)
	if err != nil {
		return Outcome{}, err
	}

	encoded, err := xml.Marshal(value)
	if err != nil {
		return Outcome{}, xerrors.Errorf("xml encode error: %w", err)
	}

	document := bytes.NewBufferString(fmt.Sprintf(
		`<?xml version="1.0" encoding="%v"?>`+"\n",
		strings.ToUpper(responseType.Charset().Name()),
	))
	document.Write(encoded)

	body, err := negotiator.encodeText(document.Bytes(), responseType)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{MimeType: responseType, Body: body}, nil
}

func (negotiator *XMLNegotiator) Deserialize(
	data []byte, contentType mimetype.MimeType, receiver interface{},
) (mimetype.MimeType, error) {
	requestType, err := negotiator.requestType(contentType)
	if err != nil {
		return mimetype.MimeType{}, err
	}

	decoded, err := negotiator.decodeText(data, contentType)
	if err != nil {
		return mimetype.MimeType{}, err
	}

	decoder := xml.NewDecoder(bytes.NewReader(decoded))
	decoder.CharsetReader = xmlCharsetReader(contentType.HasCharset())

	if err := decoder.Decode(receiver); err != nil {
		return mimetype.MimeType{}, xerrors.Errorf("xml decode error: %w", err)
	}
	return requestType, nil
}

// Builds the reader for documents declaring a non UTF-8 encoding. When the
// Content-Type named a charset the body has already been transcoded, and the
// declaration is only checked.
func xmlCharsetReader(transcoded bool) func(string, io.Reader) (io.Reader, error) {
	return func(label string, input io.Reader) (io.Reader, error) {
		charset, err := mimetype.LookupCharset(label)
		if err != nil {
			return nil, err
		}
		if transcoded || charset.IsUTF8() {
			return input, nil
		}
		return charset.Encoding().NewDecoder().Reader(input), nil
	}
}
