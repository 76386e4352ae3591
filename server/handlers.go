package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/spektr-org/wrangle/recipe"
	"github.com/spektr-org/wrangle/session"
	"github.com/spektr-org/wrangle/table"
)

var errBadRequest = errors.New("bad request")

const defaultPreviewRows = 20

type createResponse struct {
	ID      string           `json:"id"`
	Summary *session.Summary `json:"summary,omitempty"`
}

type uploadResponse struct {
	Reinitialized bool            `json:"reinitialized"`
	Summary       session.Summary `json:"summary"`
}

// applyRequest carries either an instruction for the model or, in Code, a
// statement to apply as is.
type applyRequest struct {
	Instruction string `json:"instruction"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

type applyResponse struct {
	Message string           `json:"message"`
	Outcome *session.Outcome `json:"outcome"`
	Summary session.Summary  `json:"summary"`
}

type resetResponse struct {
	Message string          `json:"message"`
	Summary session.Summary `json:"summary"`
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Orchestrator, bool) {
	o, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return o, true
}

// handleCreate starts a session, loading the multipart "file" field when
// the request carries one.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	o := s.sessions.Create()
	resp := createResponse{ID: o.ID()}

	name, data, err := s.readUpload(w, r)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		writeJSON(w, http.StatusCreated, resp)
		return
	case err != nil:
		_ = s.sessions.Delete(o.ID())
		s.writeError(w, err)
		return
	}

	if _, err := o.Load(name, data); err != nil {
		_ = s.sessions.Delete(o.ID())
		s.writeError(w, err)
		return
	}
	sum, _ := o.Summary()
	resp.Summary = &sum
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	o, ok := s.lookup(w, r)
	if !ok {
		return
	}
	name, data, err := s.readUpload(w, r)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			err = fmt.Errorf("%w: multipart field \"file\" is required", errBadRequest)
		}
		s.writeError(w, err)
		return
	}
	reinit, err := o.Load(name, data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sum, _ := o.Summary()
	writeJSON(w, http.StatusOK, uploadResponse{Reinitialized: reinit, Summary: sum})
}

// readUpload returns the name and bytes of the multipart "file" field.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		return "", nil, err
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return filepath.Base(header.Filename), data, nil
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	o, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err))
		return
	}

	var out *session.Outcome
	var err error
	if req.Code != "" {
		out, err = o.ApplyCode(req.Description, req.Code)
	} else {
		out, err = o.ApplyCommand(r.Context(), req.Instruction)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	sum, _ := o.Summary()
	writeJSON(w, http.StatusOK, applyResponse{Message: session.MsgApplied, Outcome: out, Summary: sum})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	o, ok := s.lookup(w, r)
	if !ok {
		return
	}
	msg, err := o.Reset()
	if err != nil {
		s.writeError(w, err)
		return
	}
	sum, _ := o.Summary()
	writeJSON(w, http.StatusOK, resetResponse{Message: msg, Summary: sum})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	o, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sum, err := o.Summary()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	o, ok := s.lookup(w, r)
	if !ok {
		return
	}
	log, err := o.Log()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"log": log, "empty_message": emptyLogMessage(log)})
}

func emptyLogMessage(log []session.LogEntry) string {
	if len(log) == 0 {
		return session.MsgNoLog
	}
	return ""
}

// handlePreview renders ?which=original|working (default working) with
// ?rows=N rows (default 20, 0 = all).
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	o, ok := s.lookup(w, r)
	if !ok {
		return
	}
	rows := defaultPreviewRows
	if v := r.URL.Query().Get("rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, fmt.Errorf("%w: rows must be a non-negative integer", errBadRequest))
			return
		}
		rows = n
	}

	var t *table.Table
	var err error
	switch which := r.URL.Query().Get("which"); which {
	case "", "working":
		t, err = o.Working()
	case "original":
		t, err = o.Original()
	default:
		err = fmt.Errorf("%w: which must be original or working, got %q", errBadRequest, which)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table.BuildPreview(t, rows))
}

// handleDownload streams the working table in ?format= (default csv).
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	o, ok := s.lookup(w, r)
	if !ok {
		return
	}
	format := table.FormatCSV
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := table.ParseFormat(v)
		if err != nil {
			s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		format = f
	}
	t, err := o.Working()
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", table.DownloadName(format)))

	if format == table.FormatSQLite {
		s.streamSQLite(w, t)
		return
	}
	if err := table.Write(w, t, format); err != nil {
		s.log.Error("download failed", "format", format, "error", err)
	}
}

// streamSQLite builds the database in a temporary file, then copies it out.
func (s *Server) streamSQLite(w http.ResponseWriter, t *table.Table) {
	dir, err := os.MkdirTemp("", "wrangle-export-")
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "export.sqlite")
	if err := table.WriteSQLite(path, "data", t); err != nil {
		s.writeError(w, err)
		return
	}
	f, err := os.Open(path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		s.log.Error("download failed", "format", table.FormatSQLite, "error", err)
	}
}

func (s *Server) handleRecipe(w http.ResponseWriter, r *http.Request) {
	o, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sum, err := o.Summary()
	if err != nil {
		s.writeError(w, err)
		return
	}
	data, err := recipe.Marshal(recipe.FromLog(sum.FileIdentity, sum.Log, time.Now()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="recipe.yaml"`)
	_, _ = w.Write(data)
}
