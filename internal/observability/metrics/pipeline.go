package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

const namespace = "docintake"

// pipelineCollectors count classification and field extraction outcomes.
// Both the API (reprocess jobs) and the worker run the pipeline.
type pipelineCollectors struct {
	service        string
	documentsTotal *prometheus.CounterVec
	recordsTotal   *prometheus.CounterVec
}

func newPipelineCollectors(service string, registry *prometheus.Registry) pipelineCollectors {
	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "documents_classified_total",
			Help:      "Classified documents by label and whether OCR produced the text.",
		},
		[]string{"service", "label", "ocr"},
	)
	recordsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "records_created_total",
			Help:      "Structured field records created by label.",
		},
		[]string{"service", "label"},
	)
	registry.MustRegister(documentsTotal, recordsTotal)

	return pipelineCollectors{
		service:        service,
		documentsTotal: documentsTotal,
		recordsTotal:   recordsTotal,
	}
}

func (c pipelineCollectors) DocumentClassified(label domain.DocumentType, usedOCR bool) {
	c.documentsTotal.WithLabelValues(c.service, string(label), strconv.FormatBool(usedOCR)).Inc()
}

func (c pipelineCollectors) RecordCreated(label domain.DocumentType) {
	c.recordsTotal.WithLabelValues(c.service, string(label)).Inc()
}
