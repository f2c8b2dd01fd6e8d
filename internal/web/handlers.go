package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/csvfilter/internal/core"
	"github.com/JonMunkholm/csvfilter/internal/logging"
	mw "github.com/JonMunkholm/csvfilter/internal/web/middleware"
	"github.com/JonMunkholm/csvfilter/internal/web/templates"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
)

// maxMemory is the part of a multipart form kept in memory; the rest spills
// to temporary files.
const maxMemory = 32 << 20

// handleHome renders the upload page.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, templates.HomePage(s.cfg.Upload.MaxFileSize))
}

// handleUpload loads the uploaded file and redirects to its dataset page.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	ctx := core.ContextWithOrigin(r.Context(), mw.ClientIP(r))
	ds, err := s.service.LoadUpload(ctx, name, data)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	http.Redirect(w, r, "/datasets/"+ds.ID.String(), http.StatusSeeOther)
}

// readUpload returns the name and content of the "file" form field.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var sizeErr *http.MaxBytesError
		if errors.As(err, &sizeErr) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("%w: %v", core.ErrNoFile, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, core.ErrNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}

// handleDataset runs the filter pipeline for the query and renders the
// dataset page.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	q := r.URL.Query()
	sel := parseSelections(q)
	view, err := s.service.View(r.Context(), id, sel, parseDisplay(q))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	s.render(w, r, templates.DatasetPage(templates.DatasetParams{
		View:  view,
		Query: encodeQuery(sel, nil).Encode(),
	}))
}

// handleClear drops every selection but keeps the display column choice.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if _, err := s.service.Dataset(id); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	target := "/datasets/" + id.String()
	if q := encodeQuery(core.Selections{}, parseDisplay(r.PostForm)).Encode(); q != "" {
		target += "?" + q
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleDelete forgets a dataset. Form posts go back to the upload page;
// API and DELETE requests get 204.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.service.Forget(id)
	logging.WithFields(r.Context(), "dataset_id", id).Info("dataset closed")

	if r.Method == http.MethodDelete || wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleExport sends the filtered rows as an attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	format, err := core.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	exp, err := s.service.Export(r.Context(), id, parseSelections(r.URL.Query()), format)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exp.FileName))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Row-Count", strconv.Itoa(exp.Rows))
	if _, err := w.Write(exp.Data); err != nil {
		logging.FromContext(r.Context()).Warn("export write failed", "dataset_id", id, "error", err)
	}
}

// render writes an HTML page. Render errors can only be logged since the
// status line is already sent.
func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "path", r.URL.Path, "error", err)
	}
}
