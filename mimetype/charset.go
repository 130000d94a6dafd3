package mimetype

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/xerrors"
)

/*
Charset is a character set that has been resolved against the IANA registry. Names are
matched case-insensitively and through their registered aliases, so "UTF-8", "utf-8"
and "csUTF8" all resolve to the same Charset.

The zero value means "no charset". Two Charsets are equal when they resolve to the same
canonical name, so Charset values can be compared with ==.
*/
type Charset struct {
	// Lower-cased preferred MIME name of the charset.
	name string
}

// Commonly used charsets.
var (
	UTF8     = MustCharset("utf-8")
	ISO88591 = MustCharset("iso-8859-1")
)

// LookupCharset resolves name to a Charset. Unknown names, and names that are
// registered but have no available encoder, fail with ErrUnsupportedCharset.
func LookupCharset(name string) (Charset, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Charset{}, xerrors.Errorf("charset name is blank: %w", ErrUnsupportedCharset)
	}

	enc, err := ianaindex.IANA.Encoding(trimmed)
	if err != nil || enc == nil {
		return Charset{}, xerrors.Errorf(
			"charset %q: %w", trimmed, ErrUnsupportedCharset,
		)
	}

	return Charset{name: canonicalCharsetName(enc, trimmed)}, nil
}

// MustCharset is like LookupCharset but panics on unknown names. Used for charsets
// declared as package-level literals.
func MustCharset(name string) Charset {
	charset, err := LookupCharset(name)
	if err != nil {
		panic(err)
	}
	return charset
}

// Prefer the MIME name ("ISO-8859-1") over the IANA name ("ISO_8859-1:1987").
func canonicalCharsetName(enc encoding.Encoding, fallback string) string {
	if name, err := ianaindex.MIME.Name(enc); err == nil && name != "" {
		return strings.ToLower(name)
	}
	if name, err := ianaindex.IANA.Name(enc); err == nil && name != "" {
		return strings.ToLower(name)
	}
	return strings.ToLower(fallback)
}

// Name returns the lower-cased canonical name, or "" for the zero Charset.
func (charset Charset) Name() string {
	return charset.name
}

// IsZero reports whether no charset is set.
func (charset Charset) IsZero() bool {
	return charset.name == ""
}

// IsUTF8 reports whether the charset is UTF-8. The zero Charset is treated as UTF-8.
func (charset Charset) IsUTF8() bool {
	return charset.name == "" || charset.name == UTF8.name
}

// Encoding returns the x/text encoding for the charset.
func (charset Charset) Encoding() encoding.Encoding {
	if charset.IsUTF8() {
		return unicode.UTF8
	}
	enc, err := ianaindex.IANA.Encoding(charset.name)
	if err != nil || enc == nil {
		// Only reachable for a Charset built outside LookupCharset.
		return unicode.UTF8
	}
	return enc
}

// Encode transcodes UTF-8 text into this charset. Characters the charset cannot
// represent cause an error rather than silent replacement.
func (charset Charset) Encode(utf8Text []byte) ([]byte, error) {
	if charset.IsUTF8() {
		return utf8Text, nil
	}
	encoded, err := charset.Encoding().NewEncoder().Bytes(utf8Text)
	if err != nil {
		return nil, xerrors.Errorf("error encoding text as %v: %w", charset.name, err)
	}
	return encoded, nil
}

/*
EncodeEscaping is like Encode, but a character the charset cannot represent is written
as escape(char) instead of failing. escape must return text the charset can represent,
such as ASCII for ASCII-compatible charsets.
*/
func (charset Charset) EncodeEscaping(
	utf8Text []byte, escape func(char rune) string,
) ([]byte, error) {
	encoded, err := charset.Encode(utf8Text)
	if err == nil {
		return encoded, nil
	}

	encoder := charset.Encoding().NewEncoder()
	escaped := make([]byte, 0, len(utf8Text))
	for _, char := range string(utf8Text) {
		charBytes, err := encoder.String(string(char))
		if err != nil {
			if charBytes, err = encoder.String(escape(char)); err != nil {
				return nil, xerrors.Errorf(
					"error encoding escape of %q as %v: %w", char, charset.name, err,
				)
			}
		}
		escaped = append(escaped, charBytes...)
	}
	return escaped, nil
}

// Decode transcodes text in this charset into UTF-8.
func (charset Charset) Decode(raw []byte) ([]byte, error) {
	if charset.IsUTF8() {
		return raw, nil
	}
	decoded, err := charset.Encoding().NewDecoder().Bytes(raw)
	if err != nil {
		return nil, xerrors.Errorf("error decoding text from %v: %w", charset.name, err)
	}
	return decoded, nil
}

func (charset Charset) String() string {
	return charset.name
}
