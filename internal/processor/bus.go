package processor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MikeSquared-Agency/joey/internal/hermes"
)

// OriginBus marks sources that arrived as hermes ingest requests.
const OriginBus Origin = "bus"

// busIngestTimeout bounds one ingest request, including any page fetch.
const busIngestTimeout = 30 * time.Second

// HandleIngestRequest stores the source described by a hermes IngestRequest.
// Failures are logged; successes publish SourceIngested like any other path.
func (p *Processor) HandleIngestRequest(subject string, data []byte) {
	var req hermes.IngestRequest
	if err := json.Unmarshal(data, &req); err != nil {
		p.logger.Warn("invalid ingest request", "subject", subject, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), busIngestTimeout)
	defer cancel()

	var err error
	switch {
	case req.URL != "" && req.Filename != "":
		p.logger.Warn("ingest request sets both url and filename", "url", req.URL, "filename", req.Filename)
		return
	case req.URL != "":
		_, err = p.IngestURL(ctx, req.URL)
	case req.Filename != "":
		_, err = p.IngestFile(ctx, OriginBus, req.Filename, req.Content)
	default:
		p.logger.Warn("ingest request has neither url nor filename", "subject", subject)
		return
	}
	if err != nil {
		p.logger.Warn("bus ingestion failed", "url", req.URL, "filename", req.Filename, "error", err)
	}
}
