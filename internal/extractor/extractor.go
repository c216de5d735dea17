// Package extractor reduces uploaded documents and fetched web pages to
// plain text.
package extractor

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Extract returns the plain text of data interpreted as kind.
func Extract(kind Kind, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch kind {
	case Text:
		text, err = extractText(data)
	case PDF:
		text, err = extractPDF(data)
	case DOCX:
		text, err = extractDOCX(data)
	case HTML:
		text, err = extractHTML(data)
	default:
		err = fmt.Errorf("unknown kind")
	}
	if err != nil {
		return "", &ExtractError{Kind: kind, Err: err}
	}
	return text, nil
}

func extractText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("content is not valid UTF-8")
	}
	return string(data), nil
}
