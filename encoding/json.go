package encoding

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf16"

	"github.com/illuscio-dev/spanroutes-go/mimetype"
	"github.com/illuscio-dev/spanroutes-go/spantypes"
	uuid "github.com/satori/go.uuid"
	"github.com/ugorji/go/codec"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/xerrors"
)

var (
	jsonAccepts  = mimetype.MustNew("*", "json", mimetype.Charset{})
	jsonProduces = mimetype.MustNew("application", "json", mimetype.Charset{})
)

// JSONExtensionOpts holds options for a JSON handle extension.
type JSONExtensionOpts struct {
	ValueType    reflect.Type
	ExtInterface codec.InterfaceExt
}

/*
JSONNegotiator reads and writes JSON through the codec library
(https://godoc.org/github.com/ugorji/go/codec).

It accepts any type with a json sub type and produces application/json, encoding in
UTF-8 unless the client asks for another charset. Characters that charset cannot
represent are written as \u escapes. Decoding is strict: a body field
that does not exist on the receiving struct is a decode error. Map keys are written
in sorted order.

Default JSON Extensions

• BinData from the "spantypes" package is represented as a hex string.

• BSON primitive.Binary data is encoded as a UUID string for 0x3 subtype and a hex
string for 0x0 subtype. Other subtypes are not supported.

• BSON raw is converted to a map and THEN encoded to a json object.

UUIDs from "github.com/satori/go.uuid" are written through their text form.
*/
type JSONNegotiator struct {
	codecTypes
	handle *codec.JsonHandle
}

// NewJSONNegotiator returns a JSONNegotiator with the default extensions registered.
func NewJSONNegotiator(opts ...NegotiatorOption) (*JSONNegotiator, error) {
	handle := &codec.JsonHandle{}
	handle.ErrorIfNoField = true
	handle.Canonical = true
	handle.MapType = reflect.TypeOf(map[string]interface{}(nil))

	types := newCodecTypes(jsonAccepts, jsonProduces, false, opts)
	types.escape = escapeJSONRune

	negotiator := &JSONNegotiator{
		codecTypes: types,
		handle:     handle,
	}

	if err := negotiator.AddExtensions(defaultJSONExtensions()); err != nil {
		return nil, xerrors.Errorf("error adding default json extensions: %w", err)
	}
	return negotiator, nil
}

// AddExtensions registers extensions with the JSON handle. Must be called before the
// negotiator is handed to an Engine.
func (negotiator *JSONNegotiator) AddExtensions(extensions []*JSONExtensionOpts) error {
	for _, extOpts := range extensions {
		err := negotiator.handle.SetInterfaceExt(
			extOpts.ValueType, 1, extOpts.ExtInterface,
		)
		if err != nil {
			return xerrors.Errorf(
				"error adding json extension for %v: %w", extOpts.ValueType, err,
			)
		}
	}
	return nil
}

func (negotiator *JSONNegotiator) Serialize(
	value interface{}, requested mimetype.MimeType,
) (Outcome, error) {
	responseType, err := negotiator.responseType(requested)
	if err != nil {
		return Outcome{}, err
	}

	var encoded []byte
	if err := codec.NewEncoderBytes(&encoded, negotiator.handle).Encode(value); err != nil {
		return Outcome{}, xerrors.Errorf("json encode error: %w", err)
	}

	body, err := negotiator.encodeText(encoded, responseType)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{MimeType: responseType, Body: body}, nil
}

func (negotiator *JSONNegotiator) Deserialize(
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

	if err := codec.NewDecoderBytes(decoded, negotiator.handle).Decode(receiver); err != nil {
		return mimetype.MimeType{}, xerrors.Errorf("json decode error: %w", err)
	}
	return requestType, nil
}

// Outside of strings the encoder only writes ASCII, so any character the charset lacks
// sits in a string and can be written as a \u escape.
func escapeJSONRune(char rune) string {
	escaped := strings.Builder{}
	for _, unit := range utf16.Encode([]rune{char}) {
		escaped.WriteString(fmt.Sprintf(`\u%04x`, unit))
	}
	return escaped.String()
}

func defaultJSONExtensions() []*JSONExtensionOpts {
	return []*JSONExtensionOpts{
		{
			ValueType:    reflect.TypeOf(spantypes.BinData{}),
			ExtInterface: jsonExtBinData{},
		},
		{
			ValueType:    reflect.TypeOf(primitive.Binary{}),
			ExtInterface: jsonExtBsonBinary{},
		},
		{
			ValueType:    reflect.TypeOf(bson.Raw{}),
			ExtInterface: jsonExtBsonRaw{bsonRegistry: defaultBSONRegistry},
		},
	}
}

// Writes BinData as a hex string.
type jsonExtBinData struct{}

func (ext jsonExtBinData) ConvertExt(value interface{}) interface{} {
	switch data := value.(type) {
	case spantypes.BinData:
		return hex.EncodeToString(data)
	case *spantypes.BinData:
		return hex.EncodeToString(*data)
	}
	panic(xerrors.Errorf("unexpected BinData value of type %T", value))
}

func (ext jsonExtBinData) UpdateExt(dest interface{}, value interface{}) {
	destData := dest.(*spantypes.BinData)

	var text string
	switch encoded := value.(type) {
	case string:
		text = encoded
	case []byte:
		text = string(encoded)
	case nil:
		*destData = nil
		return
	default:
		panic(xerrors.Errorf("BinData must be a hex string, got %T", value))
	}

	decoded, err := hex.DecodeString(text)
	if err != nil {
		panic(xerrors.Errorf("BinData is not valid hex: %w", err))
	}
	*destData = decoded
}

// Converts BSON binary fields to json. Supports Binary blobs and UUIDs.
type jsonExtBsonBinary struct{}

func (ext jsonExtBsonBinary) ConvertExt(value interface{}) interface{} {
	var valueBin primitive.Binary
	switch binary := value.(type) {
	case primitive.Binary:
		valueBin = binary
	case *primitive.Binary:
		valueBin = *binary
	}

	switch valueBin.Subtype {
	case bsonSubtypeUUID:
		valueUUID, err := uuid.FromBytes(valueBin.Data)
		if err != nil {
			panic(xerrors.Errorf("error converting bson uuid: %w", err))
		}
		return valueUUID.String()
	case bsonSubtypeGeneric:
		return hex.EncodeToString(valueBin.Data)
	}

	panic(xerrors.Errorf("unsupported Binary BSON subtype %#x", valueBin.Subtype))
}

func (ext jsonExtBsonBinary) UpdateExt(dest interface{}, value interface{}) {
	panic(xerrors.New(
		"decoding to bson binary field not supported, " +
			"use uuid or BinData type as intermediary",
	))
}

// Converts BSON Raw document to json object.
type jsonExtBsonRaw struct {
	bsonRegistry *bsoncodec.Registry
}

func (ext jsonExtBsonRaw) ConvertExt(value interface{}) interface{} {
	var valueRaw bson.Raw
	switch raw := value.(type) {
	case bson.Raw:
		valueRaw = raw
	case *bson.Raw:
		valueRaw = *raw
	}

	unmarshaled := make(map[string]interface{})
	if len(valueRaw) > 0 {
		err := bson.UnmarshalWithRegistry(ext.bsonRegistry, valueRaw, &unmarshaled)
		if err != nil {
			panic(xerrors.Errorf("error while unmarshalling bson for encoding: %w", err))
		}
	}
	return unmarshaled
}

func (ext jsonExtBsonRaw) UpdateExt(dest interface{}, value interface{}) {
	panic(xerrors.New("decoding to BSON raw field not supported"))
}
