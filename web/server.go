// Package web exposes the importer over HTTP for the upload UI.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"dealerhub/importer"
	"dealerhub/internal/logging"
	"dealerhub/output"
	"dealerhub/record"
)

const defaultMaxUploadBytes = 32 << 20

// Store is what the server needs from a storage backend.
type Store interface {
	importer.Store
	ListDocuments(ctx context.Context, kind record.Kind) ([]record.Document, error)
}

// Options tune the import service behind the server.
type Options struct {
	Workers        int
	MaxBatchWrites int
	ListDelimiter  string
	CommitTimeout  time.Duration
	MaxUploadBytes int64
}

type Server struct {
	store     Store
	service   *importer.Service
	logger    *zap.Logger
	maxUpload int64
	delimiter string
	router    chi.Router
}

func NewServer(store Store, logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}

	serviceOpts := []importer.Option{
		importer.WithMaxBatchWrites(opts.MaxBatchWrites),
		importer.WithCommitTimeout(opts.CommitTimeout),
	}
	if opts.Workers > 0 {
		serviceOpts = append(serviceOpts, importer.WithWorkers(opts.Workers))
	}
	if opts.ListDelimiter != "" {
		serviceOpts = append(serviceOpts, importer.WithListDelimiter(opts.ListDelimiter))
	}

	s := &Server{
		store:     store,
		service:   importer.NewService(storeOrNil(store), serviceOpts...),
		logger:    logger,
		maxUpload: maxUpload,
		delimiter: opts.ListDelimiter,
		router:    chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/import/{kind}", s.handleImport)
		r.Get("/schema/{kind}", s.handleSchema)
		r.Get("/template/{kind}", s.handleTemplate)
		r.Get("/records/{kind}", s.handleRecords)
		r.Get("/summary", s.handleSummary)
	})

	return s
}

// storeOrNil keeps a missing store an untyped nil for the importer.
func storeOrNil(store Store) importer.Store {
	if store == nil {
		return nil
	}
	return store
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger attaches a request-scoped logger to the context and logs
// each completed request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := s.logger.With(zap.String("request_id", middleware.GetReqID(r.Context())))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(logging.WithContext(r.Context(), logger)))

		logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unconfigured"})
		return
	}
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	csvText, source, err := readUpload(r, s.maxUpload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.Import(r.Context(), importer.Request{Kind: kind, CSV: csvText, Source: source})
	writeJSON(w, importStatus(result, err), result)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	schema, err := importer.SchemaFor(kind)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, BuildSchemaView(schema.WithListDelimiter(s.delimiter)))
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	schema, err := importer.SchemaFor(kind)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	table := output.TemplateTable(schema)
	if strings.EqualFold(r.URL.Query().Get("format"), "xlsx") {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", kind.String()+"_template.xlsx"))
		if err := output.WriteExcel(w, table); err != nil {
			logging.FromContext(r.Context()).Error("write xlsx template", zap.Error(err))
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", kind.String()+"_template.csv"))
	if err := output.WriteCSV(w, table); err != nil {
		logging.FromContext(r.Context()).Error("write csv template", zap.Error(err))
	}
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, importer.ErrConfig.Error())
		return
	}

	docs, err := s.store.ListDocuments(r.Context(), kind)
	if err != nil {
		logging.FromContext(r.Context()).Error("list documents", zap.String("kind", kind.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("list %s records: %v", kind, err))
		return
	}
	writeJSON(w, http.StatusOK, BuildRecordViews(docs))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, importer.ErrConfig.Error())
		return
	}

	var all []record.Document
	for _, kind := range record.AllKinds() {
		docs, err := s.store.ListDocuments(r.Context(), kind)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("list %s records: %v", kind, err))
			return
		}
		all = append(all, docs...)
	}
	writeJSON(w, http.StatusOK, BuildSummaryViews(output.BuildStatusSummaries(all)))
}

func kindParam(w http.ResponseWriter, r *http.Request) (record.Kind, bool) {
	kind, err := record.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return kind, true
}

// readUpload returns the CSV text of a request: the multipart "file" field
// (CSV or XLSX by extension) or the raw body.
func readUpload(r *http.Request, maxBytes int64) (string, string, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return "", "", fmt.Errorf("file too large or invalid form: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", "", errors.New("no file provided")
		}
		defer file.Close()

		switch strings.ToLower(filepath.Ext(header.Filename)) {
		case ".xlsx", ".xlsm":
			text, err := importer.ReadExcel(file, header.Filename)
			return text, header.Filename, err
		default:
			content, err := io.ReadAll(file)
			if err != nil {
				return "", "", fmt.Errorf("read upload: %v", err)
			}
			return string(content), header.Filename, nil
		}
	}

	content, err := io.ReadAll(r.Body)
	if err != nil {
		return "", "", fmt.Errorf("read request body: %v", err)
	}
	return string(content), "request body", nil
}

// importStatus maps an import outcome onto an HTTP status.
func importStatus(result importer.Result, err error) int {
	switch {
	case errors.Is(err, importer.ErrConfig):
		return http.StatusServiceUnavailable
	case errors.Is(err, importer.ErrPersistence):
		return http.StatusInternalServerError
	case err != nil:
		return http.StatusBadRequest
	case result.TotalRows > 0 && result.ImportedCount == 0:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusOK
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
