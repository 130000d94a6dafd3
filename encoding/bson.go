package encoding

import (
	"bufio"
	"bytes"
	"io"
	"reflect"

	"github.com/illuscio-dev/spanroutes-go/mimetype"
	"github.com/illuscio-dev/spanroutes-go/spantypes"
	uuid "github.com/satori/go.uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"golang.org/x/xerrors"
)

// BsonListSepString is a delimiter for top-level bson lists, which bson does not
// normally support. When multiple documents are being sent in a single payload, the
// unicode SYMBOL FOR RECORD SEPARATOR is used.
// (http://fileformat.info/info/unicode/char/241e/index.htm)
const BsonListSepString = "\u241E"

// BsonListSepBytes is a byte representation of BsonListSepString.
var BsonListSepBytes = []byte(BsonListSepString)

// Largest document the server side of the driver allows.
const maxBsonDocumentSize = 16 * 1024 * 1024

const (
	bsonSubtypeGeneric byte = 0x0
	bsonSubtypeUUID    byte = 0x3
)

var (
	bsonAccepts  = mimetype.MustNew("*", "bson", mimetype.Charset{})
	bsonProduces = mimetype.MustNew("application", "bson", mimetype.Charset{})
)

// split function used to separate the bson records.
func splitBsonFunc(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.Index(data, BsonListSepBytes); i >= 0 {
		return i + len(BsonListSepBytes), data[0:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}

	// Request more data.
	return 0, nil, nil
}

// BsonCodecOpts holds options for registering BSON codecs with a BSONNegotiator.
type BsonCodecOpts struct {
	// Type this codec handles encoding / decoding to.
	ValueType reflect.Type

	// Codec to register for this type.
	Codec bsoncodec.ValueCodec
}

var defaultBsonCodecs = []*BsonCodecOpts{
	{
		ValueType: reflect.TypeOf(uuid.UUID{}),
		Codec:     bsonCodecUUID{},
	},
	{
		ValueType: reflect.TypeOf(spantypes.BinData{}),
		Codec:     bsonCodecBinData{},
	},
}

// NewBSONRegistry builds a registry holding the driver defaults, the default codecs
// of this package and codecs.
func NewBSONRegistry(codecs ...*BsonCodecOpts) *bsoncodec.Registry {
	builder := bson.NewRegistryBuilder()
	for _, codecOpts := range defaultBsonCodecs {
		builder.RegisterCodec(codecOpts.ValueType, codecOpts.Codec)
	}
	for _, codecOpts := range codecs {
		builder.RegisterCodec(codecOpts.ValueType, codecOpts.Codec)
	}
	return builder.Build()
}

var defaultBSONRegistry = NewBSONRegistry()

// Reads a binary value of subtype, treating BSON null as empty.
func readBinary(
	valueReader bsonrw.ValueReader, subtype byte,
) (data []byte, isNull bool, err error) {
	if valueReader.Type() == bsontype.Null {
		return nil, true, valueReader.ReadNull()
	}

	data, readSubtype, err := valueReader.ReadBinary()
	if err != nil {
		return nil, false, err
	}
	if readSubtype != subtype {
		return nil, false, xerrors.Errorf(
			"expected binary subtype %#x, got %#x", subtype, readSubtype,
		)
	}
	return data, false, nil
}

// bsonCodecUUID handles encoding and decoding of UUID to and from bson.
type bsonCodecUUID struct{}

func (codec bsonCodecUUID) EncodeValue(
	encodeCTX bsoncodec.EncodeContext,
	valueWriter bsonrw.ValueWriter,
	value reflect.Value,
) error {
	valueUUID, ok := value.Interface().(uuid.UUID)
	if !ok {
		return xerrors.Errorf("cannot encode %v as uuid", value.Type())
	}
	return valueWriter.WriteBinaryWithSubtype(valueUUID.Bytes(), bsonSubtypeUUID)
}

func (codec bsonCodecUUID) DecodeValue(
	decodeCTX bsoncodec.DecodeContext,
	valueReader bsonrw.ValueReader,
	value reflect.Value,
) error {
	bytesUUID, isNull, err := readBinary(valueReader, bsonSubtypeUUID)
	if err != nil {
		return err
	}
	if isNull {
		value.Set(reflect.ValueOf(uuid.Nil))
		return nil
	}

	uuidVal, err := uuid.FromBytes(bytesUUID)
	if err != nil {
		return err
	}
	value.Set(reflect.ValueOf(uuidVal))
	return nil
}

// bsonCodecBinData handles BinData as a generic binary primitive.
type bsonCodecBinData struct{}

func (codec bsonCodecBinData) EncodeValue(
	encodeCTX bsoncodec.EncodeContext,
	valueWriter bsonrw.ValueWriter,
	value reflect.Value,
) error {
	data, ok := value.Interface().(spantypes.BinData)
	if !ok {
		return xerrors.Errorf("cannot encode %v as BinData", value.Type())
	}
	if data == nil {
		return valueWriter.WriteNull()
	}
	return valueWriter.WriteBinaryWithSubtype(data, bsonSubtypeGeneric)
}

func (codec bsonCodecBinData) DecodeValue(
	decodeCTX bsoncodec.DecodeContext,
	valueReader bsonrw.ValueReader,
	value reflect.Value,
) error {
	data, isNull, err := readBinary(valueReader, bsonSubtypeGeneric)
	if err != nil {
		return err
	}
	if isNull {
		value.Set(reflect.ValueOf(spantypes.BinData(nil)))
		return nil
	}

	// The reader's buffer is reused, so the bytes are copied out.
	copied := make(spantypes.BinData, len(data))
	copy(copied, data)
	value.Set(reflect.ValueOf(copied))
	return nil
}

/*
BSONNegotiator reads and writes BSON through the official driver
(https://godoc.org/go.mongodb.org/mongo-driver).

It accepts any type with a bson sub type and produces application/bson. BSON is
binary, so no charset is ever attached.

Top-level lists are written as documents separated by BsonListSepBytes, and read back
into a slice receiver the same way.

The following type extensions ship with the negotiator:

• primitive.Binary of subtype 0x3 can be decoded to / encoded from UUID objects from
"github.com/satori/go.uuid".

• primitive.Binary of subtype 0x0 can be decoded to / encoded from the BinData named
type of []byte in the "spantypes" module.
*/
type BSONNegotiator struct {
	codecTypes
	registry *bsoncodec.Registry
}

// NewBSONNegotiator returns a BSONNegotiator using the default registry.
func NewBSONNegotiator(opts ...NegotiatorOption) *BSONNegotiator {
	return &BSONNegotiator{
		codecTypes: newCodecTypes(bsonAccepts, bsonProduces, true, opts),
		registry:   defaultBSONRegistry,
	}
}

// WithCodecs returns a copy of the negotiator whose registry also holds codecs.
func (negotiator *BSONNegotiator) WithCodecs(codecs ...*BsonCodecOpts) *BSONNegotiator {
	return &BSONNegotiator{
		codecTypes: negotiator.codecTypes,
		registry:   NewBSONRegistry(codecs...),
	}
}

// Registry returns the bsoncodec.Registry used to encode and decode.
func (negotiator *BSONNegotiator) Registry() *bsoncodec.Registry {
	return negotiator.registry
}

func (negotiator *BSONNegotiator) Serialize(
	value interface{}, requested mimetype.MimeType,
) (Outcome, error) {
	responseType, err := negotiator.responseType(requested)
	if err != nil {
		return Outcome{}, err
	}

	buffer := new(bytes.Buffer)
	if err := negotiator.encode(buffer, value); err != nil {
		return Outcome{}, xerrors.Errorf("bson encode error: %w", err)
	}
	return Outcome{MimeType: responseType, Body: buffer.Bytes()}, nil
}

func (negotiator *BSONNegotiator) Deserialize(
	data []byte, contentType mimetype.MimeType, receiver interface{},
) (mimetype.MimeType, error) {
	requestType, err := negotiator.requestType(contentType)
	if err != nil {
		return mimetype.MimeType{}, err
	}

	if err := negotiator.decode(bytes.NewReader(data), receiver); err != nil {
		return mimetype.MimeType{}, xerrors.Errorf("bson decode error: %w", err)
	}
	return requestType, nil
}

func isRawDocument(content interface{}) bool {
	switch content.(type) {
	case bson.Raw, *bson.Raw:
		return true
	}
	return false
}

// Detects whether content is a sequence (array or slice)
func isSequence(value reflect.Value) bool {
	return value.Kind() == reflect.Slice || value.Kind() == reflect.Array
}

func (negotiator *BSONNegotiator) encodeSingle(
	writer io.Writer, content interface{},
) error {
	var bodyBSON bson.Raw

	switch raw := content.(type) {
	case bson.Raw:
		bodyBSON = raw
	case *bson.Raw:
		bodyBSON = *raw
	default:
		marshalled, err := bson.MarshalWithRegistry(negotiator.registry, content)
		if err != nil {
			return err
		}
		bodyBSON = marshalled
	}

	_, err := writer.Write(bodyBSON)
	return err
}

// Used to encode multiple bson objects to a single payload.
func (negotiator *BSONNegotiator) encodeMany(
	writer io.Writer, content reflect.Value,
) error {
	finalIndex := content.Len() - 1

	for arrayIndex := 0; arrayIndex <= finalIndex; arrayIndex++ {
		err := negotiator.encodeSingle(writer, content.Index(arrayIndex).Interface())
		if err != nil {
			return err
		}

		// No separator after the final item.
		if arrayIndex != finalIndex {
			if _, err = writer.Write(BsonListSepBytes); err != nil {
				return xerrors.Errorf("error writing document separator: %w", err)
			}
		}
	}
	return nil
}

func (negotiator *BSONNegotiator) encode(writer io.Writer, content interface{}) error {
	contentValue := reflect.Indirect(reflect.ValueOf(content))

	if isSequence(contentValue) && !isRawDocument(content) {
		return negotiator.encodeMany(writer, contentValue)
	}
	return negotiator.encodeSingle(writer, content)
}

func (negotiator *BSONNegotiator) decodeSingle(
	reader io.Reader, contentReceiver interface{},
) error {
	document, err := bson.NewFromIOReader(reader)
	if err != nil {
		return err
	}

	if rawReceiver, ok := contentReceiver.(*bson.Raw); ok {
		*rawReceiver = document
		return nil
	}
	return bson.UnmarshalWithRegistry(negotiator.registry, document, contentReceiver)
}

// Decodes multiple bson documents into a slice pointer.
func (negotiator *BSONNegotiator) decodeMany(
	reader io.Reader, contentReceiver interface{},
) error {
	slicePointer := reflect.ValueOf(contentReceiver)
	if slicePointer.Kind() != reflect.Ptr || slicePointer.Elem().Kind() != reflect.Slice {
		return xerrors.Errorf("list receiver must be a slice pointer: %w", ErrRefused)
	}
	sliceValue := slicePointer.Elem()
	elementType := sliceValue.Type().Elem()

	docScanner := bufio.NewScanner(reader)
	docScanner.Buffer(make([]byte, 0, 4096), maxBsonDocumentSize+len(BsonListSepBytes))
	docScanner.Split(splitBsonFunc)

	for docScanner.Scan() {
		docBuff := bytes.NewBuffer(docScanner.Bytes())
		newElement := reflect.New(elementType)

		if err := negotiator.decodeSingle(docBuff, newElement.Interface()); err != nil {
			return err
		}

		sliceValue.Set(reflect.Append(sliceValue, newElement.Elem()))
	}

	return docScanner.Err()
}

func (negotiator *BSONNegotiator) decode(
	reader io.Reader, contentReceiver interface{},
) error {
	receiverValue := reflect.Indirect(reflect.ValueOf(contentReceiver))

	if isSequence(receiverValue) && !isRawDocument(contentReceiver) {
		return negotiator.decodeMany(reader, contentReceiver)
	}
	return negotiator.decodeSingle(reader, contentReceiver)
}
