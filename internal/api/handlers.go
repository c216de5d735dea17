package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MikeSquared-Agency/joey/internal/conversation"
	"github.com/MikeSquared-Agency/joey/internal/extractor"
	"github.com/MikeSquared-Agency/joey/internal/fetcher"
	"github.com/MikeSquared-Agency/joey/internal/processor"
)

// Fixed client-facing messages.
const (
	msgUnsupportedType = "Unsupported file type"
	msgUnreachable     = "Failed to reach the URL. Check if it's valid."
	msgFetched         = "Webpage content fetched and stored. You can now ask questions about it."
)

type chatResponse struct {
	Reply string `json:"reply"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type fetchRequest struct {
	URL string `json:"url"`
}

// chat handles POST /api/chat
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req conversation.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var verr *conversation.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	reply, err := s.proc.Chat(r.Context(), req.Messages)
	if err != nil {
		var chatErr *processor.ChatError
		if errors.As(err, &chatErr) {
			writeError(w, http.StatusBadRequest, chatErr.Error())
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unexpected error: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

// upload handles POST /api/upload
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid upload: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if _, ok := extractor.KindForFilename(header.Filename); !ok {
		writeJSON(w, http.StatusOK, messageResponse{Message: msgUnsupportedType})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read upload: %v", err))
		return
	}

	_, err = s.proc.IngestFile(r.Context(), processor.OriginUpload, header.Filename, data)
	switch {
	case err == nil:
	case errors.Is(err, processor.ErrUnsupportedType):
		writeJSON(w, http.StatusOK, messageResponse{Message: msgUnsupportedType})
		return
	default:
		s.logger.Warn("upload ingestion failed", "filename", header.Filename, "error", err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to process %s: %v", header.Filename, err))
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Uploaded %s. You can now ask questions about it.", header.Filename),
	})
}

// fetchURL handles POST /api/fetch_url
func (s *Server) fetchURL(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	_, err := s.proc.IngestURL(r.Context(), req.URL)
	if err != nil {
		s.logger.Warn("url ingestion failed", "url", req.URL, "error", err)
		writeError(w, http.StatusBadRequest, fetchErrorDetail(err))
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: msgFetched})
}

func fetchErrorDetail(err error) string {
	var (
		invalid   *fetcher.InvalidURLError
		statusErr *fetcher.StatusError
	)
	switch {
	case errors.As(err, &invalid):
		return fmt.Sprintf("Invalid URL: %s", invalid.Reason)
	case errors.Is(err, fetcher.ErrUnreachable):
		return msgUnreachable
	case errors.As(err, &statusErr):
		return fmt.Sprintf("HTTP error: %d", statusErr.StatusCode)
	default:
		return fmt.Sprintf("Unexpected error: %v", err)
	}
}
