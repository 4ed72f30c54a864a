package parser

import (
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/mcncl/jsonshape/internal/errors" // Custom errors package
	"github.com/mcncl/jsonshape/internal/models"
)

// Parse decodes a single JSON value from reader into the ordered value model.
// Object members keep their input order and duplicate names are rejected.
func Parse(reader io.Reader) (models.Value, error) {
	decoder := jsontext.NewDecoder(reader)

	root, err := decodeValue(decoder)
	if err != nil {
		if stderrors.Is(err, io.EOF) { // io.EOF before any token means empty input
			return models.Value{}, errors.NewInputError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return models.Value{}, decodeError(err)
	}

	// Anything but EOF after the first value is either a second value or garbage.
	if _, err := decoder.ReadToken(); err == nil {
		return models.Value{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	} else if !stderrors.Is(err, io.EOF) {
		return models.Value{}, decodeError(err)
	}

	return root, nil
}

// decodeValue reads exactly one value from the token stream.
// Nesting is bounded by the decoder's own depth limit.
func decodeValue(decoder *jsontext.Decoder) (models.Value, error) {
	tok, err := decoder.ReadToken()
	if err != nil {
		return models.Value{}, err
	}

	switch tok.Kind() {
	case 'n':
		return models.Null(), nil
	case 'f', 't':
		return models.Bool(tok.Bool()), nil
	case '"':
		return models.String(tok.String()), nil
	case '0':
		// String on a number token yields the raw literal.
		return models.Number(tok.String()), nil
	case '{':
		members := make([]models.Member, 0)
		for decoder.PeekKind() != '}' {
			keyTok, err := decoder.ReadToken()
			if err != nil {
				return models.Value{}, err
			}
			// A token is only valid until the next read.
			key := keyTok.String()
			val, err := decodeValue(decoder)
			if err != nil {
				return models.Value{}, err
			}
			members = append(members, models.M(key, val))
		}
		if _, err := decoder.ReadToken(); err != nil {
			return models.Value{}, err
		}
		return models.Object(members...), nil
	case '[':
		items := make([]models.Value, 0)
		for decoder.PeekKind() != ']' {
			val, err := decodeValue(decoder)
			if err != nil {
				return models.Value{}, err
			}
			items = append(items, val)
		}
		if _, err := decoder.ReadToken(); err != nil {
			return models.Value{}, err
		}
		return models.Array(items...), nil
	default:
		return models.Value{}, fmt.Errorf("unexpected JSON token %q", tok.Kind())
	}
}

// decodeError classifies a decoder failure, keeping the decoder's own
// diagnostic as the wrapped error.
func decodeError(err error) error {
	if stderrors.Is(err, jsontext.ErrDuplicateName) {
		return errors.NewParsingError("duplicate object member name", err)
	}
	var syntaxError *jsontext.SyntacticError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.ByteOffset),
			err,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("unexpected end of JSON input", err)
	}
	return errors.NewInputError("failed to read JSON input", err)
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Value, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Value{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseBytes parses JSON from a byte slice
func ParseBytes(data []byte) (models.Value, error) {
	return ParseString(string(data))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.Value, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Value{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Value{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Value{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.Value{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.Value{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file)
}
