package parser

import (
	stderrors "errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/mcncl/jsonshape/internal/errors"
	"github.com/mcncl/jsonshape/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SimpleObject(t *testing.T) {
	jsonStr := `{"name": "John Doe", "age": 30, "isStudent": false, "city": null}`
	root, err := Parse(strings.NewReader(jsonStr))
	if err != nil {
		t.Fatalf("Parse() error = %v, wantErr nil", err)
	}

	expectedRoot := models.Object(
		models.M("name", models.String("John Doe")),
		models.M("age", models.Number("30")),
		models.M("isStudent", models.Bool(false)),
		models.M("city", models.Null()),
	)

	if !reflect.DeepEqual(root, expectedRoot) {
		t.Errorf("Parse() root = %#v, want %#v", root, expectedRoot)
	}
}

func TestParse_KeepsMemberOrder(t *testing.T) {
	jsonStr := `{"zeta": 1, "alpha": 2, "mid": {"b": true, "a": false}}`
	root, err := Parse(strings.NewReader(jsonStr))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, root.Keys())
	mid, ok := root.Get("mid")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, mid.Keys())
}

func TestParse_SimpleArray(t *testing.T) {
	jsonStr := `[1, "test", true, null, 3.14]`
	root, err := Parse(strings.NewReader(jsonStr))
	if err != nil {
		t.Fatalf("Parse() error = %v, wantErr nil", err)
	}

	expectedRoot := models.Array(
		models.Number("1"),
		models.String("test"),
		models.Bool(true),
		models.Null(),
		models.Number("3.14"),
	)

	if !reflect.DeepEqual(root, expectedRoot) {
		t.Errorf("Parse() root = %#v, want %#v", root, expectedRoot)
	}
}

func TestParse_NestedObject(t *testing.T) {
	jsonStr := `{"user": {"name": "Jane Doe", "id": 123}, "active": true, "tags": ["go", "json"], "empty": {}, "none": []}`
	root, err := Parse(strings.NewReader(jsonStr))
	require.NoError(t, err)

	expectedRoot := models.Object(
		models.M("user", models.Object(
			models.M("name", models.String("Jane Doe")),
			models.M("id", models.Number("123")),
		)),
		models.M("active", models.Bool(true)),
		models.M("tags", models.Array(models.String("go"), models.String("json"))),
		models.M("empty", models.Object()),
		models.M("none", models.Array()),
	)

	assert.True(t, root.Equal(expectedRoot), "Parse() root = %#v", root)
}

func TestParse_NumberLiteralsPreserved(t *testing.T) {
	root, err := Parse(strings.NewReader(`[1.50, 1e3, -0, 12345678901234567890]`))
	require.NoError(t, err)

	require.Len(t, root.Items, 4)
	assert.Equal(t, "1.50", root.Items[0].Text)
	assert.Equal(t, "1e3", root.Items[1].Text)
	assert.Equal(t, "-0", root.Items[2].Text)
	assert.Equal(t, "12345678901234567890", root.Items[3].Text)
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	if err == nil {
		t.Errorf("Parse() with empty reader, err = nil, want error")
	} else if !strings.Contains(err.Error(), "input is empty") {
		t.Errorf("Parse() with empty reader, err = %v, want error containing 'input is empty'", err)
	}
	assert.True(t, stderrors.Is(err, errors.ErrEmptyInput))
	assert.True(t, errors.IsType(err, errors.ErrorTypeInput))

	_, err = Parse(strings.NewReader(" \n\t "))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInput))
}

func TestParse_MemberKeysSurviveValueDecoding(t *testing.T) {
	inputs := map[string][]string{
		`{"a":1,"b":2}`:                       {"a", "b"},
		`{"outer":{"inner":{"x":[{"y":1}]}}}`: {"outer"},
		`{"s":"text","o":{},"l":[],"n":null}`: {"s", "o", "l", "n"},
	}

	for input, keys := range inputs {
		var root models.Value
		var err error
		require.NotPanics(t, func() { root, err = ParseString(input) }, input)
		require.NoError(t, err)
		assert.Equal(t, keys, root.Keys())
	}

	root, err := ParseString(`{"outer":{"inner":{"x":[{"y":1}]}}}`)
	require.NoError(t, err)
	expected := models.Object(models.M("outer", models.Object(
		models.M("inner", models.Object(
			models.M("x", models.Array(models.Object(models.M("y", models.Number("1"))))),
		)),
	)))
	assert.True(t, root.Equal(expected), "Parse() root = %#v", root)
}

func TestParseBytes(t *testing.T) {
	root, err := ParseBytes([]byte(`{"id": 7, "name": "x"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, root.Keys())

	_, err = ParseBytes(nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInput))
}

func TestParseString_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := ParseString(input)
		if err == nil {
			t.Errorf("ParseString(%q) err = nil, want error", input)
			continue
		}
		assert.True(t, errors.IsType(err, errors.ErrorTypeInput))
		assert.Contains(t, err.Error(), "input string is empty")
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	testCases := []struct {
		name    string
		jsonStr string
	}{
		{"MissingClosingBrace", `{"name": "John Doe", "age": 30`},
		{"MissingClosingBracket", `["item1", "item2",`},
		{"TrailingComma", `{"a": 1,}`},
		{"UnquotedKey", `{a: 1}`},
		{"SingleQuotes", `{'a': 1}`},
		{"BareWord", `nope`},
		{"DuplicateKey", `{"a": 1, "a": 2}`},
		{"TrailingGarbage", `{"a": 1} }`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root, err := ParseString(tc.jsonStr)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeParsing), "got %v", err)
			assert.Equal(t, models.Value{}, root)
		})
	}
}

func TestParse_MultipleValues(t *testing.T) {
	_, err := ParseString(`{"a": 1} {"b": 2}`)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrMultipleJSON))
}

func TestParse_TrailingWhitespaceAllowed(t *testing.T) {
	root, err := ParseString("{\"a\": 1}\n\n  ")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, root.Keys())
}

func TestParse_SyntaxErrorCarriesDiagnostic(t *testing.T) {
	_, err := ParseString(`{"a": 1,}`)
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Contains(t, appErr.Message, "offset")
	assert.NotNil(t, appErr.Err, "decoder diagnostic should be wrapped")
	assert.Contains(t, errors.UserFriendlyError(err), "Invalid JSON input")
}

func TestParseFile_SimpleObject(t *testing.T) {
	content := `{"product": "Laptop", "price": 1200.50}`
	tmpfile, err := os.CreateTemp("", "test_simple_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	root, err := ParseFile(tmpfile.Name())
	if err != nil {
		t.Fatalf("ParseFile() error = %v, wantErr nil", err)
	}

	expectedRoot := models.Object(
		models.M("product", models.String("Laptop")),
		models.M("price", models.Number("1200.50")),
	)

	if !reflect.DeepEqual(root, expectedRoot) {
		t.Errorf("ParseFile() root = %#v, want %#v", root, expectedRoot)
	}
}

func TestParseFile_NonExistentFile(t *testing.T) {
	_, err := ParseFile("nonexistentfile.json")
	if err == nil {
		t.Fatalf("ParseFile() with non-existent file, err = nil, want error")
	}
	assert.True(t, stderrors.Is(err, errors.ErrFileNotFound))
}

func TestParseFile_EmptyPath(t *testing.T) {
	_, err := ParseFile("")
	if err == nil {
		t.Errorf("ParseFile() with empty path, err = nil, want error")
	} else if !strings.Contains(err.Error(), "file path is empty") {
		t.Errorf("ParseFile() with empty path, err = %v, want error containing 'file path is empty'", err)
	}
}

func TestParseFile_EmptyFileContent(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_empty_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name())

	if err := tmpfile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	_, err = ParseFile(tmpfile.Name())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrFileEmpty))
}

func TestParse_RootPrimitives(t *testing.T) {
	testCases := []struct {
		name        string
		jsonStr     string
		expectedVal models.Value
	}{
		{"RootString", `"hello world"`, models.String("hello world")},
		{"RootNumber", `123.45`, models.Number("123.45")},
		{"RootBooleanTrue", `true`, models.Bool(true)},
		{"RootBooleanFalse", `false`, models.Bool(false)},
		{"RootNull", `null`, models.Null()},
		{"RootEscapedString", `"tab\tand é"`, models.String("tab\tand é")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root, err := Parse(strings.NewReader(tc.jsonStr))
			if err != nil {
				t.Fatalf("Parse() error = %v, wantErr nil for %s", err, tc.name)
			}

			if !reflect.DeepEqual(root, tc.expectedVal) {
				t.Errorf("Parse() root = %#v, want %#v for %s", root, tc.expectedVal, tc.name)
			}
		})
	}
}
