package heuristic_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/infrastructure/parser/heuristic"
)

var _ = Describe("ParseQuote", func() {
	It("extracts customer, validity, total and items", func() {
		text := "Spett.le Mario Rossi\nPreventivo valido fino al 31/12/2025\nPannelli x 4\nQta 2 installazione\nTotale: 1.500,00"
		q := heuristic.ParseQuote(text)

		Expect(q.Customer).To(HaveValue(Equal("Mario Rossi")))
		Expect(q.ValidUntil.String()).To(Equal("2025-12-31"))
		Expect(q.TotalAmount).To(HaveValue(Equal(1500.0)))
		Expect(q.Items).To(HaveValue(Equal("Pannelli x 4\nQta 2 installazione")))
		Expect(q.Confidence).To(Equal(1.0))
	})

	It("reads a labelled customer", func() {
		q := heuristic.ParseQuote("Cliente: Bianchi SpA\nOfferta")
		Expect(q.Customer).To(HaveValue(Equal("Bianchi SpA")))
		Expect(q.TotalAmount).To(BeNil())
		Expect(q.Items).To(BeNil())
		Expect(q.Confidence).To(Equal(0.5))
	})
})

var _ = Describe("Parser", func() {
	var p *heuristic.Parser

	BeforeEach(func() {
		p = heuristic.New()
	})

	It("dispatches by label", func() {
		Expect(p.ExtractStructuredFields("Totale 10,00", domain.DocTypeInvoice)).To(BeAssignableToTypeOf(&domain.InvoiceFields{}))
		Expect(p.ExtractStructuredFields("Totale 10,00", domain.DocTypeQuote)).To(BeAssignableToTypeOf(&domain.QuoteFields{}))
	})

	It("returns nil for labels without fields", func() {
		Expect(p.ExtractStructuredFields("PEC", domain.DocTypeRegisteredMail)).To(BeNil())
		Expect(p.ExtractStructuredFields("", domain.DocTypeOther)).To(BeNil())
	})

	It("is deterministic", func() {
		text := "Fattura n. INV-2025-007\nTotale € 122,00\nIVA 22%"
		Expect(p.ExtractStructuredFields(text, domain.DocTypeInvoice)).To(Equal(p.ExtractStructuredFields(text, domain.DocTypeInvoice)))
	})
})
