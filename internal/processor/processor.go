package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/joey/internal/assembler"
	"github.com/MikeSquared-Agency/joey/internal/completion"
	"github.com/MikeSquared-Agency/joey/internal/extractor"
	"github.com/MikeSquared-Agency/joey/internal/fetcher"
	"github.com/MikeSquared-Agency/joey/internal/hermes"
	"github.com/MikeSquared-Agency/joey/internal/prompt"
	"github.com/MikeSquared-Agency/joey/internal/store"
)

// Completer sends a prompt to the downstream chat-completion API.
type Completer interface {
	Complete(ctx context.Context, entries []prompt.Entry) (string, error)
}

// PageFetcher retrieves the visible text of a normalised URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Publisher emits gateway events. Satisfied by *hermes.Client.
type Publisher interface {
	Publish(subject string, data any) error
}

// Deps wires a Processor. Fetcher and Events may be nil.
type Deps struct {
	Store     *store.Store
	Assembler *assembler.Assembler
	Builder   prompt.Builder
	LLM       Completer
	Fetcher   PageFetcher
	Events    Publisher
	Logger    *slog.Logger
	Model     string
	// SoftFail turns completion failures into reply text instead of errors.
	SoftFail bool
}

// Processor runs the ingestion and chat pipelines.
type Processor struct {
	store     *store.Store
	assembler *assembler.Assembler
	builder   prompt.Builder
	llm       Completer
	fetcher   PageFetcher
	events    Publisher
	logger    *slog.Logger
	model     string
	softFail  bool
}

func New(d Deps) *Processor {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		store:     d.Store,
		assembler: d.Assembler,
		builder:   d.Builder,
		llm:       d.LLM,
		fetcher:   d.Fetcher,
		events:    d.Events,
		logger:    logger,
		model:     d.Model,
		softFail:  d.SoftFail,
	}
}

// Origin records how a source reached the gateway.
type Origin string

const (
	OriginUpload Origin = "upload"
	OriginURL    Origin = "url"
	OriginWatch  Origin = "watch"
)

// ErrUnsupportedType is returned for uploads with an unknown extension.
var ErrUnsupportedType = errors.New("unsupported file type")

// IngestResult describes a stored source.
type IngestResult struct {
	Identifier  string
	Kind        extractor.Kind
	RawChars    int
	StoredChars int
}

// Truncated reports whether the per-source budget cut the text.
func (r IngestResult) Truncated() bool {
	return r.StoredChars < r.RawChars
}

// IngestFile extracts text from an uploaded or watched file and stores it
// under filename. Nothing is stored when extraction fails or ctx is done.
func (p *Processor) IngestFile(ctx context.Context, origin Origin, filename string, data []byte) (IngestResult, error) {
	kind, ok := extractor.KindForFilename(filename)
	if !ok {
		return IngestResult{}, ErrUnsupportedType
	}

	text, err := extractor.Extract(kind, data)
	if err != nil {
		return IngestResult{}, err
	}
	return p.commit(ctx, origin, filename, kind, text)
}

// IngestURL fetches a web page and stores its text under the normalised URL.
func (p *Processor) IngestURL(ctx context.Context, rawURL string) (IngestResult, error) {
	if p.fetcher == nil {
		return IngestResult{}, errors.New("url ingestion is not enabled")
	}
	target, err := fetcher.NormalizeURL(rawURL)
	if err != nil {
		return IngestResult{}, err
	}

	text, err := p.fetcher.Fetch(ctx, target)
	if err != nil {
		return IngestResult{}, err
	}
	return p.commit(ctx, OriginURL, target, extractor.HTML, text)
}

func (p *Processor) commit(ctx context.Context, origin Origin, id string, kind extractor.Kind, text string) (IngestResult, error) {
	if err := ctx.Err(); err != nil {
		return IngestResult{}, fmt.Errorf("ingest %s: %w", id, err)
	}

	p.store.Put(id, text)

	raw := utf8.RuneCountInString(text)
	res := IngestResult{
		Identifier:  id,
		Kind:        kind,
		RawChars:    raw,
		StoredChars: min(raw, p.store.MaxSourceChars()),
	}
	p.logger.Info("source ingested",
		"identifier", id,
		"kind", kind.String(),
		"origin", string(origin),
		"raw_chars", res.RawChars,
		"stored_chars", res.StoredChars,
	)
	p.publish(hermes.SubjectSourceIngested, hermes.SourceIngested{
		Envelope:   hermes.NewEnvelope(),
		Identifier: id,
		Kind:       kind.String(),
		Origin:     string(origin),
		RawChars:   res.RawChars,
		Stored:     res.StoredChars,
		Truncated:  res.Truncated(),
	})
	return res, nil
}

// Sources returns the number of stored sources.
func (p *Processor) Sources() int {
	return p.store.Len()
}

func (p *Processor) publish(subject string, evt any) {
	if p.events == nil {
		return
	}
	if err := p.events.Publish(subject, evt); err != nil {
		p.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

// Ensure the concrete clients satisfy the interfaces.
var (
	_ Completer   = (*completion.Client)(nil)
	_ PageFetcher = (*fetcher.Fetcher)(nil)
	_ Publisher   = (*hermes.Client)(nil)
)
