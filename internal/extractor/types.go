package extractor

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the declared format of raw source bytes.
type Kind int

const (
	Text Kind = iota + 1
	PDF
	DOCX
	HTML
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case PDF:
		return "pdf"
	case DOCX:
		return "docx"
	case HTML:
		return "html"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// uploadKinds lists the file extensions accepted for upload.
var uploadKinds = map[string]Kind{
	".txt":  Text,
	".pdf":  PDF,
	".docx": DOCX,
}

// KindForFilename reports the Kind for an uploaded filename, based on its
// extension. HTML is never accepted as an upload.
func KindForFilename(name string) (Kind, bool) {
	k, ok := uploadKinds[strings.ToLower(filepath.Ext(name))]
	return k, ok
}

// ExtractError wraps a failure to turn raw bytes into text.
type ExtractError struct {
	Kind Kind
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Kind, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}
