package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/mdblocks/internal/pipeline"
	"github.com/dgallion1/mdblocks/internal/render"
	"github.com/dgallion1/mdblocks/internal/source"
)

const defaultFilename = "upload.md"

// upload is a file read from a request.
type upload struct {
	filename string
	data     []byte
}

var errTooLarge = errors.New("file too large")

// handleConvert converts one document synchronously. The file comes either
// as multipart field "file" or as the raw request body, in which case the
// "filename" query parameter picks the format.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	up, status, err := s.readUpload(r)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	conv, err := s.orchestrator.Converter().Convert(up.filename, up.data)
	if err != nil {
		s.log.Error("convert failed", "filename", up.filename, "error", err)
		jsonError(w, err.Error(), convertErrorStatus(err))
		return
	}
	if title := r.FormValue("title"); title != "" {
		conv.Title = title
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) readUpload(r *http.Request) (*upload, int, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, multipartErrorStatus(err), fmt.Errorf("invalid multipart form: %w", err)
		}
		defer r.MultipartForm.RemoveAll()
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("file is required: %w", err)
		}
		defer file.Close()
		return s.readFile(sanitizeFilename(header.Filename), file)
	}

	filename := defaultFilename
	if name := r.URL.Query().Get("filename"); name != "" {
		filename = sanitizeFilename(name)
	}
	return s.readFile(filename, r.Body)
}

func (s *Server) readFile(filename string, rd io.Reader) (*upload, int, error) {
	if !source.IsSupportedExtension(filename) {
		return nil, http.StatusBadRequest, fmt.Errorf("unsupported file type: %q", filepath.Ext(filename))
	}
	data, err := io.ReadAll(io.LimitReader(rd, s.cfg.MaxUploadBytes+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, http.StatusRequestEntityTooLarge, errTooLarge
		}
		return nil, http.StatusBadRequest, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return &upload{filename: filename, data: data}, http.StatusOK, nil
}

// multipartErrorStatus tells a request over the body limit apart from a
// malformed form.
func multipartErrorStatus(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func convertErrorStatus(err error) int {
	if errors.Is(err, render.ErrUnknownNode) || errors.Is(err, source.ErrUnsupportedNode) {
		return http.StatusInternalServerError
	}
	return http.StatusUnprocessableEntity
}

// handleBatchConvert queues every file in multipart field "files".
func (s *Server) handleBatchConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*int64(s.cfg.MaxBatchFiles)+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), multipartErrorStatus(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(files) > s.cfg.MaxBatchFiles {
		jsonError(w, fmt.Sprintf("too many files (max %d)", s.cfg.MaxBatchFiles), http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)

		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			})
			continue
		}
		up, _, err := s.readFile(filename, f)
		f.Close()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		job := pipeline.NewJob(up.filename, up.data)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"doc_id":   job.DocID,
			"status":   pipeline.StatusQueued,
			"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
		})
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
