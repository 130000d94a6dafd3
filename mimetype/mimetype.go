// Parsed, immutable MIME types for content negotiation.
package mimetype

import (
	"strings"

	"golang.org/x/xerrors"
)

// Wildcard matches any value in the primary or sub type position.
const Wildcard = "*"

const charsetParam = "charset"

var (
	// ErrMalformedMimeType is returned when text violates the MIME type grammar.
	ErrMalformedMimeType = xerrors.New("malformed mime type")

	// ErrUnsupportedCharset is returned when a charset name cannot be resolved.
	ErrUnsupportedCharset = xerrors.New("unsupported charset")
)

// Param is a single "key=value" MIME type parameter.
type Param struct {
	Key   string
	Value string
}

/*
MimeType is a parsed MIME type: a primary type, a sub type, an optional charset and any
number of extra parameters.

	application/json; charset=utf-8; version=2

Values are immutable once constructed and every constructed value is grammar-valid.
The zero value is used throughout this module to signal "no MIME type" (for instance
a missing Content-Type header) and can be checked with IsZero().

The charset is kept apart from the other parameters, so Params() never contains a
"charset" key.
*/
type MimeType struct {
	primaryType string
	subType     string
	charset     Charset
	params      []Param
}

/*
New builds a MimeType from its parts, validating every token against the MIME grammar.
Parameter keys are lower-cased. When a key is repeated the last value wins, keeping the
position of the first occurrence.

A "charset" key in params is rejected: use the charset argument.
*/
func New(
	primaryType string, subType string, charset Charset, params ...Param,
) (MimeType, error) {
	if err := validateToken(primaryType); err != nil {
		return MimeType{}, xerrors.Errorf("primary type: %w", err)
	}
	if err := validateToken(subType); err != nil {
		return MimeType{}, xerrors.Errorf("sub type: %w", err)
	}

	var normalized []Param
	for _, param := range params {
		key := strings.ToLower(param.Key)
		if err := validateToken(key); err != nil {
			return MimeType{}, xerrors.Errorf("parameter key: %w", err)
		}
		if err := validateToken(param.Value); err != nil {
			return MimeType{}, xerrors.Errorf("parameter %v value: %w", key, err)
		}
		if key == charsetParam {
			return MimeType{}, xerrors.Errorf(
				"charset must not be passed as a parameter: %w", ErrMalformedMimeType,
			)
		}

		replaced := false
		for index := range normalized {
			if normalized[index].Key == key {
				normalized[index].Value = param.Value
				replaced = true
				break
			}
		}
		if !replaced {
			normalized = append(normalized, Param{Key: key, Value: param.Value})
		}
	}

	mimeType := MimeType{
		primaryType: primaryType,
		subType:     subType,
		charset:     charset,
		params:      normalized,
	}
	return mimeType, nil
}

// MustNew is like New but panics on invalid input. Intended for MIME types declared as
// literals, such as the accepts / produces types of a negotiator.
func MustNew(
	primaryType string, subType string, charset Charset, params ...Param,
) MimeType {
	mimeType, err := New(primaryType, subType, charset, params...)
	if err != nil {
		panic(err)
	}
	return mimeType
}

/*
Parse reads a MimeType from text such as a Content-Type header value:

	type/subtype[; charset=name][; key=value]*

Parameter keys are lower-cased and surrounding double quotes are removed from values.
Grammar violations fail with ErrMalformedMimeType. A charset that does not resolve
fails with ErrUnsupportedCharset.
*/
func Parse(text string) (MimeType, error) {
	segments := strings.Split(text, ";")

	typeSegment := strings.TrimSpace(segments[0])
	if typeSegment == "" {
		return MimeType{}, xerrors.Errorf(
			"mime type cannot be empty: %w", ErrMalformedMimeType,
		)
	}

	typeParts := strings.Split(typeSegment, "/")
	if len(typeParts) != 2 {
		return MimeType{}, xerrors.Errorf(
			"mime type %q must have exactly two parts separated by '/': %w",
			typeSegment,
			ErrMalformedMimeType,
		)
	}

	var charset Charset
	params := make([]Param, 0, len(segments)-1)

	for _, segment := range segments[1:] {
		pair := strings.Split(segment, "=")
		if len(pair) != 2 {
			return MimeType{}, xerrors.Errorf(
				"malformed mime parameter %q: %w", segment, ErrMalformedMimeType,
			)
		}

		key := strings.ToLower(strings.TrimSpace(pair[0]))
		value := unquote(strings.TrimSpace(pair[1]))

		if key != charsetParam {
			params = append(params, Param{Key: key, Value: value})
			continue
		}

		if err := validateToken(value); err != nil {
			return MimeType{}, xerrors.Errorf("charset: %w", err)
		}
		resolved, err := LookupCharset(value)
		if err != nil {
			return MimeType{}, err
		}
		charset = resolved
	}

	return New(typeParts[0], typeParts[1], charset, params...)
}

// TryParse is the total version of Parse. It returns false instead of an error, for
// headers that are optional.
func TryParse(text string) (MimeType, bool) {
	mimeType, err := Parse(text)
	if err != nil {
		return MimeType{}, false
	}
	return mimeType, true
}

// Interface for object used to get headers such as http.Request.Header or
// http.Response.Header
type headerFetcher interface {
	Get(string) string
}

// FromHeader extracts the content type from a message / request header. Returns false
// if the header is missing or cannot be parsed.
func FromHeader(headers headerFetcher) (MimeType, bool) {
	return TryParse(headers.Get("Content-Type"))
}

// PrimaryType returns the part before the '/'.
func (mimeType MimeType) PrimaryType() string {
	return mimeType.primaryType
}

// SubType returns the part after the '/'.
func (mimeType MimeType) SubType() string {
	return mimeType.subType
}

// Charset returns the charset, which is the zero Charset when none was given.
func (mimeType MimeType) Charset() Charset {
	return mimeType.charset
}

// HasCharset reports whether a charset was given.
func (mimeType MimeType) HasCharset() bool {
	return !mimeType.charset.IsZero()
}

// Params returns a copy of the non-charset parameters in their stored order.
func (mimeType MimeType) Params() []Param {
	if len(mimeType.params) == 0 {
		return nil
	}
	params := make([]Param, len(mimeType.params))
	copy(params, mimeType.params)
	return params
}

// Param returns the value of the parameter key.
func (mimeType MimeType) Param(key string) (string, bool) {
	key = strings.ToLower(key)
	for _, param := range mimeType.params {
		if param.Key == key {
			return param.Value, true
		}
	}
	return "", false
}

// IsZero reports whether this is the zero MimeType ("no MIME type").
func (mimeType MimeType) IsZero() bool {
	return mimeType.primaryType == ""
}

// IsWildcard reports whether the primary or sub type is a wildcard.
func (mimeType MimeType) IsWildcard() bool {
	return mimeType.primaryType == Wildcard || mimeType.subType == Wildcard
}

// IsConcrete reports whether the MimeType is set and holds no wildcard.
func (mimeType MimeType) IsConcrete() bool {
	return !mimeType.IsZero() && !mimeType.IsWildcard()
}

// WithCharset returns a copy of the MimeType using charset.
func (mimeType MimeType) WithCharset(charset Charset) MimeType {
	mimeType.charset = charset
	return mimeType
}

// WithoutCharset returns a copy of the MimeType with no charset.
func (mimeType MimeType) WithoutCharset() MimeType {
	mimeType.charset = Charset{}
	return mimeType
}

/*
Supports reports whether candidate is covered by this MimeType. This is the declaring
side of the comparison, so its wildcards absorb the candidate's values, and not the
other way around:

• the primary type is a wildcard or equals the candidate's, ignoring case.

• the sub type is a wildcard or equals the candidate's, ignoring case.

• this charset is absent, or equals the candidate's charset.

A charset on the declaring side is a hard requirement. A charset that only the
candidate has is accepted.
*/
func (mimeType MimeType) Supports(candidate MimeType) bool {
	return componentSupports(mimeType.primaryType, candidate.primaryType) &&
		componentSupports(mimeType.subType, candidate.subType) &&
		(mimeType.charset.IsZero() || mimeType.charset == candidate.charset)
}

// Compatible is the symmetric counterpart of Supports: a wildcard on either side
// matches, and charsets only have to agree when both sides name one. It is true
// whenever one side Supports the other.
func (mimeType MimeType) Compatible(other MimeType) bool {
	return componentCompatible(mimeType.primaryType, other.primaryType) &&
		componentCompatible(mimeType.subType, other.subType) &&
		(mimeType.charset.IsZero() ||
			other.charset.IsZero() ||
			mimeType.charset == other.charset)
}

// Narrow fills this MimeType's wildcards with the values of other, and takes other's
// charset when it has one. Used to turn a negotiator's declared type into the concrete
// type a client asked for.
func (mimeType MimeType) Narrow(other MimeType) MimeType {
	if mimeType.primaryType == Wildcard {
		mimeType.primaryType = other.primaryType
	}
	if mimeType.subType == Wildcard {
		mimeType.subType = other.subType
	}
	if other.HasCharset() {
		mimeType.charset = other.charset
	}
	return mimeType
}

// Equal reports structural equality: type names compare without case and parameters
// compare regardless of order.
func (mimeType MimeType) Equal(other MimeType) bool {
	if !strings.EqualFold(mimeType.primaryType, other.primaryType) ||
		!strings.EqualFold(mimeType.subType, other.subType) ||
		mimeType.charset != other.charset ||
		len(mimeType.params) != len(other.params) {
		return false
	}

	for _, param := range mimeType.params {
		value, ok := other.Param(param.Key)
		if !ok || value != param.Value {
			return false
		}
	}
	return true
}

// Essence returns "type/subtype" without any parameters.
func (mimeType MimeType) Essence() string {
	if mimeType.IsZero() {
		return ""
	}
	return mimeType.primaryType + "/" + mimeType.subType
}

// String returns the canonical form, with the charset first among the parameters:
//
//	primary/sub[; charset=name][; key=value]*
func (mimeType MimeType) String() string {
	if mimeType.IsZero() {
		return ""
	}

	builder := strings.Builder{}
	builder.WriteString(mimeType.primaryType)
	builder.WriteString("/")
	builder.WriteString(mimeType.subType)

	writeParam := func(key string, value string) {
		builder.WriteString("; ")
		builder.WriteString(key)
		builder.WriteString("=")
		builder.WriteString(value)
	}

	if mimeType.HasCharset() {
		writeParam(charsetParam, mimeType.charset.Name())
	}
	for _, param := range mimeType.params {
		writeParam(param.Key, param.Value)
	}

	return builder.String()
}

func componentSupports(declared string, candidate string) bool {
	return declared == Wildcard || strings.EqualFold(declared, candidate)
}

func componentCompatible(left string, right string) bool {
	return left == Wildcard || right == Wildcard || strings.EqualFold(left, right)
}

// Characters that may not appear in a token, in addition to spaces and controls.
const tSpecials = `()<>@,;:/[]?="\`

func isTokenChar(char rune) bool {
	return char > ' ' && char < 127 && !strings.ContainsRune(tSpecials, char)
}

func validateToken(token string) error {
	if token == "" {
		return xerrors.Errorf("empty token: %w", ErrMalformedMimeType)
	}
	for _, char := range token {
		if !isTokenChar(char) {
			return xerrors.Errorf("invalid token %q: %w", token, ErrMalformedMimeType)
		}
	}
	return nil
}

func unquote(value string) string {
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		return value[1 : len(value)-1]
	}
	return value
}
