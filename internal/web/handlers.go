package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/spektr-org/marksheet/charts"
	"github.com/spektr-org/marksheet/dataset"
	"github.com/spektr-org/marksheet/engine"
	"github.com/spektr-org/marksheet/export"
	"github.com/spektr-org/marksheet/loader"
	"github.com/spektr-org/marksheet/schema"
)

// errNoDataset is reported when a session has not uploaded a file yet.
var errNoDataset = errors.New("upload a file first")

// profileResponse is the body of GET /api/dataset.
type profileResponse struct {
	Name           string         `json:"name"`
	LoadedAt       time.Time      `json:"loadedAt"`
	NumericColumns []string       `json:"numericColumns"`
	Profile        *schema.Config `json:"profile"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessionID(w, r); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexPage.Execute(w, pageData{Operations: engine.Operations}); err != nil {
		s.logger.Error("render index", "error", err)
	}
}

func (s *Server) handleOperations(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"operations": engine.Operations})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(w, r)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("missing form field \"file\": %w", err))
		return
	}
	defer func() { _ = file.Close() }()

	ds, err := loader.Load(header.Filename, file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ws := &Workspace{
		Name:     header.Filename,
		Analyzer: engine.New(ds, s.analyzerOptions()...),
		LoadedAt: time.Now(),
	}
	s.workspaces.Put(id, ws)
	s.logger.Info("dataset uploaded", "session", id, "file", header.Filename, "rows", ds.Len())
	s.writeJSON(w, http.StatusOK, profileOf(ws))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, profileOf(ws))
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(w, r)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.workspaces.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	res, ok := s.execute(w, r, ws)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil || (format != export.FormatCSV && format != export.FormatXLSX) {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %q (expected csv or xlsx)", export.ErrUnknownFormat, chi.URLParam(r, "format")))
		return
	}
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	res, ok := s.execute(w, r, ws)
	if !ok {
		return
	}

	var body []byte
	if format == export.FormatXLSX {
		body, err = export.XLSX(res.Table, res.Title)
	} else {
		body, err = export.CSV(res.Table)
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Operation+format.Extension()))
	_, _ = w.Write(body)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}

	var req engine.Request
	if !s.decode(w, r, &req) {
		return
	}
	a := ws.Analyzer

	var png []byte
	var err error
	switch kind {
	case "result":
		var res *engine.Result
		if res, err = engine.Execute(a, req); err == nil {
			if res.Chart == nil {
				err = fmt.Errorf("%s: %w", res.Operation, charts.ErrNoData)
			} else {
				png, err = charts.Render(res.Chart, s.cfg.Chart)
			}
		}
	case charts.KindBox:
		var cols []string
		if cols, err = a.SelectColumns(engine.NormalizeRequest(req).Columns); err == nil {
			png, err = charts.Box(a.Data(), cols, "Score Distribution", s.cfg.Chart)
		}
	case charts.KindHistogram:
		req = engine.NormalizeRequest(req)
		column := req.Column
		if column == "" && len(req.Columns) == 1 {
			column = req.Columns[0]
		}
		if column == "" {
			err = fmt.Errorf("histogram: %w", engine.ErrSelectionRequired)
		} else if _, err = a.SelectColumns([]string{column}); err == nil {
			png, err = charts.Histogram(dataset.Floats(a.Data(), column), "Distribution: "+column, 10, s.cfg.Chart)
		}
	default:
		err = fmt.Errorf("%w: %q (expected result, box or histogram)", charts.ErrUnsupported, kind)
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// ============================================================================
// HELPERS
// ============================================================================

// workspace returns the caller's workspace or answers 409.
func (s *Server) workspace(w http.ResponseWriter, r *http.Request) (*Workspace, bool) {
	id, err := s.sessionID(w, r)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	ws, ok := s.workspaces.Get(id)
	if !ok {
		s.writeError(w, http.StatusConflict, errNoDataset)
		return nil, false
	}
	return ws, true
}

// execute decodes a Request body and runs it, answering 400 on failure.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, ws *Workspace) (*engine.Result, bool) {
	var req engine.Request
	if !s.decode(w, r, &req) {
		return nil, false
	}
	if req.Threshold == nil && s.cfg.Threshold != nil {
		t := *s.cfg.Threshold
		req.Threshold = &t
	}
	if req.NameColumn == "" {
		req.NameColumn = s.cfg.NameColumn
	}
	res, err := engine.Execute(ws.Analyzer, req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return res, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func profileOf(ws *Workspace) profileResponse {
	return profileResponse{
		Name:           ws.Name,
		LoadedAt:       ws.LoadedAt,
		NumericColumns: ws.Analyzer.NumericColumns(),
		Profile:        ws.Analyzer.Describe(),
	}
}
