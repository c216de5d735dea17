// Package assembler merges stored source texts into the context block that
// is handed to the prompt builder.
package assembler

import (
	"strings"

	"github.com/MikeSquared-Agency/joey/internal/truncate"
)

// Separator precedes every source text in the merged block.
const Separator = "\n"

type Assembler struct {
	maxContextChars int
}

func New(maxContextChars int) *Assembler {
	return &Assembler{maxContextChars: maxContextChars}
}

// Assemble concatenates texts in order, each preceded by Separator. When the
// result exceeds the budget only the trailing maxContextChars characters are
// kept, so the most recently ingested sources survive.
func (a *Assembler) Assemble(snapshot []string) string {
	if len(snapshot) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, text := range snapshot {
		sb.WriteString(Separator)
		sb.WriteString(text)
	}
	return truncate.Tail(sb.String(), a.maxContextChars)
}
