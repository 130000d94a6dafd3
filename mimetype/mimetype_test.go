package mimetype_test

//revive:disable:import-shadowing reason: Disabled for assert := assert.New(), which is
// the preferred method of using multiple asserts in a test.

import (
	"net/http"
	"testing"

	"github.com/illuscio-dev/spanroutes-go/mimetype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(test *testing.T, text string) mimetype.MimeType {
	parsed, err := mimetype.Parse(text)
	require.NoError(test, err, "parsing %q", text)
	return parsed
}

func utf16BE(test *testing.T) mimetype.Charset {
	charset, err := mimetype.LookupCharset("UTF-16BE")
	require.NoError(test, err)
	return charset
}

// CONSTRUCTION

func TestNewValid(test *testing.T) {
	assert := assert.New(test)

	mimeType, err := mimetype.New("application", "json", mimetype.UTF8)
	assert.NoError(err)

	assert.Equal("application", mimeType.PrimaryType())
	assert.Equal("json", mimeType.SubType())
	assert.Equal(mimetype.UTF8, mimeType.Charset())
	assert.True(mimeType.HasCharset())
	assert.Empty(mimeType.Params())
}

func TestNewInvalidTokens(test *testing.T) {
	cases := map[string]func() (mimetype.MimeType, error){
		"primary type": func() (mimetype.MimeType, error) {
			return mimetype.New("somethingWithInvalidCharacter(", "json", mimetype.UTF8)
		},
		"sub type": func() (mimetype.MimeType, error) {
			return mimetype.New("application", "json(", mimetype.UTF8)
		},
		"empty sub type": func() (mimetype.MimeType, error) {
			return mimetype.New("application", "", mimetype.UTF8)
		},
		"parameter key": func() (mimetype.MimeType, error) {
			return mimetype.New(
				"application",
				"json",
				mimetype.UTF8,
				mimetype.Param{Key: "a", Value: "x"},
				mimetype.Param{Key: "b(", Value: "y"},
				mimetype.Param{Key: "c", Value: "z"},
			)
		},
		"parameter value": func() (mimetype.MimeType, error) {
			return mimetype.New(
				"application",
				"json",
				mimetype.UTF8,
				mimetype.Param{Key: "a", Value: "x"},
				mimetype.Param{Key: "b", Value: "y"},
				mimetype.Param{Key: "c", Value: "z("},
			)
		},
		"charset parameter": func() (mimetype.MimeType, error) {
			return mimetype.New(
				"application",
				"json",
				mimetype.Charset{},
				mimetype.Param{Key: "Charset", Value: "utf-8"},
			)
		},
	}

	for name, construct := range cases {
		construct := construct
		test.Run(name, func(subTest *testing.T) {
			mimeType, err := construct()
			assert.ErrorIs(subTest, err, mimetype.ErrMalformedMimeType)
			assert.True(subTest, mimeType.IsZero())
		})
	}
}

func TestMustNewPanics(test *testing.T) {
	assert.Panics(test, func() {
		mimetype.MustNew("app lication", "json", mimetype.Charset{})
	})
}

func TestNewDuplicateParamsLastWins(test *testing.T) {
	mimeType := mimetype.MustNew(
		"text",
		"csv",
		mimetype.Charset{},
		mimetype.Param{Key: "header", Value: "absent"},
		mimetype.Param{Key: "delim", Value: "tab"},
		mimetype.Param{Key: "HEADER", Value: "present"},
	)

	assert.Equal(
		test,
		[]mimetype.Param{
			{Key: "header", Value: "present"},
			{Key: "delim", Value: "tab"},
		},
		mimeType.Params(),
	)
}

// PARSE

func TestParse(test *testing.T) {
	cases := []struct {
		text     string
		expected mimetype.MimeType
	}{
		{
			text:     "application/json; charset=UTF-8",
			expected: mimetype.MustNew("application", "json", mimetype.UTF8),
		},
		{
			text:     "application/json; charset=Utf-8",
			expected: mimetype.MustNew("application", "json", mimetype.UTF8),
		},
		{
			text:     "*/json",
			expected: mimetype.MustNew("*", "json", mimetype.Charset{}),
		},
		{
			text:     "application/json;charset=iso-8859-1",
			expected: mimetype.MustNew("application", "json", mimetype.ISO88591),
		},
		{
			text:     "application/json; charset=latin1",
			expected: mimetype.MustNew("application", "json", mimetype.ISO88591),
		},
		{
			text: "application/json; charset=Utf-8; foo=bar; bleh=bleu",
			expected: mimetype.MustNew(
				"application",
				"json",
				mimetype.UTF8,
				mimetype.Param{Key: "foo", Value: "bar"},
				mimetype.Param{Key: "bleh", Value: "bleu"},
			),
		},
		{
			text: "application/json; foo=bar; bleh=bleu",
			expected: mimetype.MustNew(
				"application",
				"json",
				mimetype.Charset{},
				mimetype.Param{Key: "foo", Value: "bar"},
				mimetype.Param{Key: "bleh", Value: "bleu"},
			),
		},
		{
			text: ` text/plain ; FORMAT="flowed"`,
			expected: mimetype.MustNew(
				"text",
				"plain",
				mimetype.Charset{},
				mimetype.Param{Key: "format", Value: "flowed"},
			),
		},
	}

	for _, thisCase := range cases {
		thisCase := thisCase
		test.Run(thisCase.text, func(subTest *testing.T) {
			parsed, err := mimetype.Parse(thisCase.text)
			assert.NoError(subTest, err)
			assert.Equal(subTest, thisCase.expected, parsed)
		})
	}
}

func TestParseMalformed(test *testing.T) {
	texts := []string{
		"",
		"   ",
		"application",
		"application/json/extra",
		"application/json; charset",
		"application/json; a=b=c",
		"application/json;",
		"application/js on",
		"application/json; charset=",
		"appli(cation/json",
	}

	for _, text := range texts {
		_, err := mimetype.Parse(text)
		assert.ErrorIs(test, err, mimetype.ErrMalformedMimeType, "parsing %q", text)
	}
}

func TestParseUnknownCharset(test *testing.T) {
	assert := assert.New(test)

	_, err := mimetype.Parse("application/json; charset=foo")
	assert.ErrorIs(err, mimetype.ErrUnsupportedCharset)
	assert.NotErrorIs(err, mimetype.ErrMalformedMimeType)
}

func TestTryParse(test *testing.T) {
	assert := assert.New(test)

	parsed, ok := mimetype.TryParse("application/json")
	assert.True(ok)
	assert.Equal("application/json", parsed.String())

	for _, text := range []string{"", "nonsense", "application/json; charset=foo"} {
		parsed, ok = mimetype.TryParse(text)
		assert.False(ok, "parsing %q", text)
		assert.True(parsed.IsZero())
	}
}

func TestFromHeader(test *testing.T) {
	assert := assert.New(test)

	header := make(http.Header)
	_, ok := mimetype.FromHeader(header)
	assert.False(ok)

	header.Set("Content-Type", "application/xml; charset=ISO-8859-1")
	parsed, ok := mimetype.FromHeader(header)
	assert.True(ok)
	assert.Equal(mimetype.MustNew("application", "xml", mimetype.ISO88591), parsed)
}

func TestCharsetCaseInsensitive(test *testing.T) {
	upper := mustParse(test, "application/json; charset=UTF-8")
	lower := mustParse(test, "application/json; charset=utf-8")

	assert.Equal(test, upper, lower)
	assert.True(test, upper.Equal(lower))
}

// SUPPORTS

type supportsCase struct {
	candidate string
	expected  bool
}

func runSupports(
	test *testing.T, declared mimetype.MimeType, cases []supportsCase,
) {
	assert.True(test, declared.Supports(declared), "%v supports itself", declared)

	for _, thisCase := range cases {
		candidate := mustParse(test, thisCase.candidate)
		assert.Equal(
			test,
			thisCase.expected,
			declared.Supports(candidate),
			"%v supports %v",
			declared,
			candidate,
		)
	}
}

func TestSupportsWildcard(test *testing.T) {
	runSupports(test, mimetype.MustNew("*", "*", mimetype.Charset{}), []supportsCase{
		{"foo/*", true},
		{"*/bar", true},
		{"foo/bar", true},
		{"foo/*; charset=utf-8", true},
		{"*/bar; charset=utf-8", true},
		{"foo/bar; charset=utf-8", true},
	})
}

func TestSupportsWildcardWithCharset(test *testing.T) {
	runSupports(test, mimetype.MustNew("*", "*", utf16BE(test)), []supportsCase{
		{"foo/*", false},
		{"*/bar", false},
		{"foo/bar", false},
		{"foo/*; charset=utf-8", false},
		{"*/bar; charset=utf-8", false},
		{"foo/bar; charset=utf-8", false},
		{"foo/*; charset=utf-16be", true},
		{"*/bar; charset=utf-16be", true},
		{"foo/bar; charset=utf-16be", true},
	})
}

func TestSupportsPrimaryOnly(test *testing.T) {
	runSupports(test, mimetype.MustNew("foo", "*", mimetype.Charset{}), []supportsCase{
		{"foo/*", true},
		{"*/bar", false},
		{"foo/bar", true},
		{"FOO/bar", true},
		{"foo/*; charset=utf-8", true},
		{"*/bar; charset=utf-8", false},
		{"foo/bar; charset=utf-8", true},
		{"foo/bar; charset=utf-16be", true},
	})
}

func TestSupportsPrimaryOnlyWithCharset(test *testing.T) {
	runSupports(test, mimetype.MustNew("foo", "*", mimetype.UTF8), []supportsCase{
		{"foo/*", false},
		{"*/bar", false},
		{"foo/bar", false},
		{"foo/*; charset=utf-8", true},
		{"*/bar; charset=utf-8", false},
		{"foo/bar; charset=utf-8", true},
		{"foo/*; charset=utf-16be", false},
		{"foo/bar; charset=utf-16be", false},
	})
}

func TestSupportsSubOnly(test *testing.T) {
	runSupports(test, mimetype.MustNew("*", "bar", mimetype.Charset{}), []supportsCase{
		{"foo/*", false},
		{"*/bar", true},
		{"foo/bar", true},
		{"foo/*; charset=utf-8", false},
		{"*/bar; charset=utf-8", true},
		{"foo/bar; charset=utf-16be", true},
	})
}

func TestSupportsSubOnlyWithCharset(test *testing.T) {
	runSupports(test, mimetype.MustNew("*", "bar", mimetype.UTF8), []supportsCase{
		{"foo/*", false},
		{"*/bar", false},
		{"foo/bar", false},
		{"*/bar; charset=utf-8", true},
		{"foo/bar; charset=utf-8", true},
		{"*/bar; charset=utf-16be", false},
		{"foo/bar; charset=utf-16be", false},
	})
}

func TestSupportsConcrete(test *testing.T) {
	runSupports(test, mimetype.MustNew("foo", "bar", mimetype.Charset{}), []supportsCase{
		{"foo/*", false},
		{"*/bar", false},
		{"foo/bar", true},
		{"Foo/BAR", true},
		{"foo/bar; charset=utf-8", true},
		{"foo/bar; charset=utf-16be", true},
		{"foo/baz", false},
	})
}

func TestSupportsConcreteWithCharset(test *testing.T) {
	runSupports(test, mimetype.MustNew("foo", "bar", mimetype.UTF8), []supportsCase{
		{"foo/*", false},
		{"*/bar", false},
		{"foo/bar", false},
		{"foo/*; charset=utf-8", false},
		{"foo/bar; charset=utf-8", true},
		{"foo/bar; charset=UTF-8", true},
		{"foo/bar; charset=utf-16be", false},
	})
}

func TestSupportsIgnoresParams(test *testing.T) {
	declared := mustParse(test, "application/json; version=1")
	assert.True(test, declared.Supports(mustParse(test, "application/json; version=2")))
}

// COMPATIBLE / NARROW

func TestCompatible(test *testing.T) {
	assert := assert.New(test)

	produces := mimetype.MustNew("application", "json", mimetype.Charset{})

	assert.True(produces.Compatible(mustParse(test, "*/*")))
	assert.True(produces.Compatible(mustParse(test, "application/*")))
	assert.True(produces.Compatible(mustParse(test, "application/json; charset=iso-8859-1")))
	assert.True(produces.Compatible(mustParse(test, "*/*; charset=utf-8")))
	assert.False(produces.Compatible(mustParse(test, "text/*")))
	assert.False(produces.Compatible(mustParse(test, "application/xml")))

	producesUTF8 := produces.WithCharset(mimetype.UTF8)
	assert.True(producesUTF8.Compatible(mustParse(test, "application/json")))
	assert.False(producesUTF8.Compatible(mustParse(test, "application/json; charset=latin1")))
}

func TestNarrow(test *testing.T) {
	assert := assert.New(test)

	produces := mimetype.MustNew("application", "json", mimetype.Charset{})

	assert.Equal(
		"application/json",
		produces.Narrow(mustParse(test, "*/*")).String(),
	)
	assert.Equal(
		"application/json; charset=iso-8859-1",
		produces.Narrow(mustParse(test, "*/*; charset=ISO-8859-1")).String(),
	)

	wildcard := mimetype.MustNew("*", "json", mimetype.UTF8)
	narrowed := wildcard.Narrow(mustParse(test, "text/json"))
	assert.Equal("text/json; charset=utf-8", narrowed.String())
	assert.True(narrowed.IsConcrete())
}

// STRING

func TestString(test *testing.T) {
	cases := []struct {
		mimeType mimetype.MimeType
		expected string
	}{
		{
			mimeType: mimetype.MustNew("application", "json", mimetype.UTF8),
			expected: "application/json; charset=utf-8",
		},
		{
			mimeType: mimetype.MustNew(
				"application",
				"json",
				mimetype.UTF8,
				mimetype.Param{Key: "foo", Value: "bar"},
				mimetype.Param{Key: "bleh", Value: "bleu"},
			),
			expected: "application/json; charset=utf-8; foo=bar; bleh=bleu",
		},
		{
			mimeType: mimetype.MustNew(
				"application",
				"json",
				mimetype.Charset{},
				mimetype.Param{Key: "foo", Value: "bar"},
				mimetype.Param{Key: "bleh", Value: "bleu"},
			),
			expected: "application/json; foo=bar; bleh=bleu",
		},
		{
			mimeType: mimetype.MustNew("application", "json", mimetype.Charset{}),
			expected: "application/json",
		},
		{
			mimeType: mimetype.MustNew("application", "HardCodedString", mimetype.Charset{}),
			expected: "application/HardCodedString",
		},
		{
			mimeType: mimetype.MimeType{},
			expected: "",
		},
	}

	for _, thisCase := range cases {
		assert.Equal(test, thisCase.expected, thisCase.mimeType.String())
	}
}

func TestRoundTrip(test *testing.T) {
	texts := []string{
		"application/json",
		"Application/JSON; charset=UTF-8",
		"*/*",
		"text/csv;header=present;charset=iso-8859-1",
		"application/vnd.api+json; version=2; charset=utf-16be",
		"foo/bar;a=b;c=d",
	}

	for _, text := range texts {
		parsed := mustParse(test, text)
		reparsed := mustParse(test, parsed.String())

		assert.True(test, parsed.Equal(reparsed), "round trip of %q", text)
		assert.Equal(test, parsed, reparsed)
	}
}

func TestEqual(test *testing.T) {
	assert := assert.New(test)

	left := mustParse(test, "application/json; a=1; b=2")

	assert.True(left.Equal(mustParse(test, "APPLICATION/json; b=2; a=1")))
	assert.False(left.Equal(mustParse(test, "application/json; a=1")))
	assert.False(left.Equal(mustParse(test, "application/json; a=1; b=3")))
	assert.False(left.Equal(mustParse(test, "application/json; a=1; b=2; charset=utf-8")))
	assert.False(left.Equal(mustParse(test, "application/xml; a=1; b=2")))
}

func TestAccessors(test *testing.T) {
	assert := assert.New(test)

	mimeType := mustParse(test, "text/*; charset=utf-8; Format=flowed")

	value, ok := mimeType.Param("FORMAT")
	assert.True(ok)
	assert.Equal("flowed", value)

	_, ok = mimeType.Param("charset")
	assert.False(ok)

	assert.True(mimeType.IsWildcard())
	assert.False(mimeType.IsConcrete())
	assert.Equal("text/*", mimeType.Essence())
	assert.False(mimeType.WithoutCharset().HasCharset())
	assert.Equal(
		"text/*; charset=iso-8859-1; format=flowed",
		mimeType.WithCharset(mimetype.ISO88591).String(),
	)

	// Params hands out a copy.
	params := mimeType.Params()
	params[0].Value = "changed"
	value, _ = mimeType.Param("format")
	assert.Equal("flowed", value)
}

func TestCharsetEncodeEscaping(test *testing.T) {
	assert := assert.New(test)

	escape := func(char rune) string { return "<" + string(char) + ">" }
	latin1 := mimetype.ISO88591

	_, err := latin1.Encode([]byte("10 €"))
	assert.Error(err)

	encoded, err := latin1.EncodeEscaping([]byte("é"), escape)
	require.NoError(test, err)
	assert.Equal([]byte{0xe9}, encoded)

	encoded, err = latin1.EncodeEscaping([]byte("é 10 €"), func(rune) string { return "EUR" })
	require.NoError(test, err)
	assert.Equal([]byte("\xe9 10 EUR"), encoded)

	_, err = latin1.EncodeEscaping([]byte("€"), escape)
	assert.Error(err, "escape output must itself be encodable")

	encoded, err = mimetype.UTF8.EncodeEscaping([]byte("€"), escape)
	require.NoError(test, err)
	assert.Equal("€", string(encoded))
}
