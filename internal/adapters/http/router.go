package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/kirillkom/document-intake/internal/config"
	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/core/ports"
	"github.com/kirillkom/document-intake/internal/core/usecase"
	"github.com/kirillkom/document-intake/internal/observability/metrics"
)

const (
	serviceName        = "api"
	multipartMemoryCap = 8 << 20
)

// Services are the inbound ports served over HTTP.
type Services struct {
	Ingest      ports.DocumentIngestor
	Documents   ports.DocumentReader
	Reviewer    ports.DocumentReviewer
	Reprocessor ports.Reprocessor
	Records     ports.RecordReader
	Exporter    ports.RecordExporter
}

type Router struct {
	cfg     config.Config
	svc     Services
	metrics *metrics.HTTPServerMetrics
	logger  *slog.Logger
}

func NewRouter(cfg config.Config, svc Services, m *metrics.HTTPServerMetrics, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{cfg: cfg, svc: svc, metrics: m, logger: logger}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/documents", rt.listDocuments)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocumentByID)
	mux.HandleFunc("POST /v1/documents/{id}/review", rt.reviewDocument)
	mux.HandleFunc("POST /v1/documents/reprocess-missing", rt.reprocessMissing)
	mux.HandleFunc("POST /v1/structured/reprocess", rt.reprocessStructured)

	mux.HandleFunc("GET /v1/invoices", rt.listInvoices)
	mux.HandleFunc("GET /v1/quotes", rt.listQuotes)
	mux.HandleFunc("GET /v1/invoices/export", rt.exportInvoices)
	mux.HandleFunc("GET /v1/quotes/export", rt.exportQuotes)

	var onReject rejectObserver
	if rt.metrics != nil {
		onReject = func(reason string) { rt.metrics.RecordRejected(serviceName, reason) }
	}

	var handler http.Handler = mux
	handler = backpressureWithObserver(handler, rt.cfg.APIMaxInFlight, rt.queueTimeout(), onReject)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, onReject)
	handler = corsMiddleware(handler, rt.cfg.CORSAllowedOrigins)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler, rt.logger)
	return requestIDMiddleware(handler)
}

func (rt *Router) queueTimeout() time.Duration {
	if rt.cfg.APIQueueTimeout > 0 {
		return rt.cfg.APIQueueTimeout
	}
	return 2 * time.Second
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if rt.cfg.APIMaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.APIMaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemoryCap); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		if guessed := mime.TypeByExtension(filepath.Ext(fileHeader.Filename)); guessed != "" {
			mimeType = guessed
		}
	}

	doc, err := rt.svc.Ingest.Upload(r.Context(), fileHeader.Filename, mimeType, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, domain.NormalizeExt(filepath.Ext(fileHeader.Filename)), fileHeader.Size)
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := rt.svc.Documents.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.svc.Documents.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) reviewDocument(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))

	var req struct {
		DocType string `json:"doc_type"`
		Label   string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	label := req.DocType
	if label == "" {
		label = req.Label
	}
	if strings.TrimSpace(label) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "doc_type is required"})
		return
	}

	if err := rt.svc.Reviewer.Relabel(r.Context(), id, label); err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := rt.svc.Documents.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) reprocessMissing(w http.ResponseWriter, r *http.Request) {
	summary, err := rt.svc.Reprocessor.ReprocessMissing(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (rt *Router) reprocessStructured(w http.ResponseWriter, r *http.Request) {
	summary, err := rt.svc.Reprocessor.ReprocessStructured(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (rt *Router) listInvoices(w http.ResponseWriter, r *http.Request) {
	records, err := rt.svc.Records.ListInvoices(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if records == nil {
		records = []domain.InvoiceRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (rt *Router) listQuotes(w http.ResponseWriter, r *http.Request) {
	records, err := rt.svc.Records.ListQuotes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if records == nil {
		records = []domain.QuoteRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (rt *Router) exportInvoices(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	file, err := rt.svc.Exporter.ExportInvoices(r.Context(), format)
	rt.writeExport(w, r, "invoices", format, file, err)
}

func (rt *Router) exportQuotes(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	file, err := rt.svc.Exporter.ExportQuotes(r.Context(), format)
	rt.writeExport(w, r, "quotes", format, file, err)
}

func (rt *Router) writeExport(w http.ResponseWriter, r *http.Request, kind, format string, file *domain.ExportFile, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		normalized, _ := usecase.ParseExportFormat(format)
		rt.metrics.RecordExport(serviceName, kind, normalized)
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
