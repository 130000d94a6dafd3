package mimetype_test

import (
	"fmt"
	"testing"

	"github.com/illuscio-dev/spanroutes-go/mimetype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccept(test *testing.T) {
	assert := assert.New(test)

	entries := mimetype.ParseAccept(
		"text/html, application/json;q=0.9, */*; q=0.1; charset=utf-8",
	)
	require.Len(test, entries, 3)

	assert.Equal("text/html", entries[0].MimeType.String())
	assert.Equal(mimetype.MaxQuality, entries[0].Quality)
	assert.Equal(0, entries[0].Index)

	assert.Equal("application/json", entries[1].MimeType.String())
	assert.Equal(0.9, entries[1].Quality)
	assert.Equal(1, entries[1].Index)

	assert.Equal("*/*; charset=utf-8", entries[2].MimeType.String())
	assert.Equal(0.1, entries[2].Quality)
	assert.Equal(2, entries[2].Index)
}

func TestParseAcceptQuality(test *testing.T) {
	cases := []struct {
		header   string
		expected float64
	}{
		{"application/json", 1},
		{"application/json; q=0.5", 0.5},
		{"application/json; Q=0.25", 0.25},
		{"application/json; q=7", 1},
		{"application/json; q=abc", 1},
		{"application/json; q=", 1},
		{"application/json; q=NaN", 1},
		{"application/json; q=Inf", 1},
		{"application/json; q=-Inf", 1},
		{"application/json; q=+infinity", 1},
	}

	for _, thisCase := range cases {
		entries := mimetype.ParseAccept(thisCase.header)
		if !assert.Len(test, entries, 1, thisCase.header) {
			continue
		}
		assert.Equal(test, thisCase.expected, entries[0].Quality, thisCase.header)
		assert.Equal(test, "application/json", entries[0].MimeType.String())
	}
}

func TestParseAcceptDropsRejectedAndMalformed(test *testing.T) {
	assert := assert.New(test)

	entries := mimetype.ParseAccept(
		"application/xml;q=0, nonsense, application/json; charset=foo, , text/plain;q=-1, " +
			"application/yaml",
	)
	require.Len(test, entries, 1)

	assert.Equal("application/yaml", entries[0].MimeType.String())
	assert.Equal(5, entries[0].Index)
}

func TestParseAcceptEmpty(test *testing.T) {
	assert.Empty(test, mimetype.ParseAccept(""))
	assert.Empty(test, mimetype.ParseAccept("  ,  "))
}

func TestParseAcceptKeepsOtherParams(test *testing.T) {
	entries := mimetype.ParseAccept("text/csv; header=present; q=0.3")
	require.Len(test, entries, 1)

	value, ok := entries[0].MimeType.Param("header")
	assert.True(test, ok)
	assert.Equal(test, "present", value)
	assert.Equal(test, 0.3, entries[0].Quality)
}

func ExampleParse() {
	mimeType, err := mimetype.Parse(`Application/JSON; Charset="UTF-8"; version=2`)
	if err != nil {
		panic(err)
	}

	fmt.Println(mimeType)
	fmt.Println(mimeType.Essence())
	fmt.Println(mimeType.Charset().IsUTF8())

	// Output:
	// Application/JSON; charset=utf-8; version=2
	// Application/JSON
	// true
}

func ExampleMimeType_Supports() {
	declared := mimetype.MustNew("*", "json", mimetype.Charset{})

	fmt.Println(declared.Supports(mimetype.MustNew("text", "json", mimetype.UTF8)))
	fmt.Println(declared.Supports(mimetype.MustNew("text", "xml", mimetype.Charset{})))

	// Output:
	// true
	// false
}
