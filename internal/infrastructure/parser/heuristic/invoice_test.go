package heuristic_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/infrastructure/parser/heuristic"
)

var _ = Describe("ParseInvoice", func() {
	var (
		text   string
		fields *domain.InvoiceFields
	)

	JustBeforeEach(func() {
		fields = heuristic.ParseInvoice(text)
	})

	When("net and VAT rate are known", func() {
		BeforeEach(func() {
			text = "ACME S.r.l.\nImponibile 100,00\nIVA 22%"
		})

		It("derives VAT and total", func() {
			Expect(fields.NetAmount).To(HaveValue(Equal(100.0)))
			Expect(fields.VATAmount).To(HaveValue(Equal(22.0)))
			Expect(fields.TotalAmount).To(HaveValue(Equal(122.0)))
		})
	})

	When("only total and VAT rate are known", func() {
		BeforeEach(func() {
			text = "Totale 122,00\nIVA 22%"
		})

		It("derives net and VAT", func() {
			Expect(fields.NetAmount).To(HaveValue(Equal(100.0)))
			Expect(fields.VATAmount).To(HaveValue(Equal(22.0)))
			Expect(fields.TotalAmount).To(HaveValue(Equal(122.0)))
		})
	})

	When("net and total are known", func() {
		BeforeEach(func() {
			text = "Imponibile 1.000,00\nTotale da pagare 1.220,00"
		})

		It("derives VAT as the difference", func() {
			Expect(fields.VATAmount).To(HaveValue(Equal(220.0)))
		})
	})

	When("the VAT line actually carries the total", func() {
		BeforeEach(func() {
			text = "Totale 122,00\nIVA 120,00"
		})

		It("discards the VAT amount", func() {
			Expect(fields.VATAmount).To(BeNil())
			Expect(fields.TotalAmount).To(HaveValue(Equal(122.0)))
		})
	})

	When("VAT exceeds sixty percent of the total", func() {
		BeforeEach(func() {
			text = "Totale 100,00\nIVA 70,00"
		})

		It("discards the VAT amount", func() {
			Expect(fields.VATAmount).To(BeNil())
		})
	})

	When("reading a complete invoice", func() {
		BeforeEach(func() {
			text = `Rossi Impianti S.n.c.
Via Garibaldi 5, 20100 Milano
Fattura n. INV-2025-007 del 14/10/2025
Imponibile € 1.000,00
IVA € 220,00
Totale € 1.220,00
Intestatario: Rossi Impianti
Partita IVA 01234567890`
		})

		It("fills every field", func() {
			Expect(fields.Supplier).To(HaveValue(Equal("Rossi Impianti S.n.c.")))
			Expect(fields.SupplierVATID).To(HaveValue(Equal("01234567890")))
			Expect(fields.Number).To(HaveValue(Equal("INV-2025-007")))
			Expect(fields.Date.String()).To(Equal("2025-10-14"))
			Expect(fields.NetAmount).To(HaveValue(Equal(1000.0)))
			Expect(fields.VATAmount).To(HaveValue(Equal(220.0)))
			Expect(fields.TotalAmount).To(HaveValue(Equal(1220.0)))
			Expect(fields.Currency).To(HaveValue(Equal("EUR")))
			Expect(fields.AccountHolder).To(HaveValue(Equal("Rossi Impianti")))
			Expect(fields.Confidence).To(Equal(1.0))
		})
	})

	When("the text is the OCR output of a short invoice", func() {
		BeforeEach(func() {
			text = "Fattura n. INV-2025-007\nTotale € 122,00\nIVA 22%"
		})

		It("extracts number, total, derived VAT and currency", func() {
			Expect(fields.Number).To(HaveValue(Equal("INV-2025-007")))
			Expect(fields.TotalAmount).To(HaveValue(Equal(122.0)))
			Expect(fields.VATAmount).To(HaveValue(Equal(22.0)))
			Expect(fields.Currency).To(HaveValue(Equal("EUR")))
			Expect(fields.Confidence).To(Equal(0.5))
		})
	})

	When("a VAT registration number sits above the VAT amount", func() {
		BeforeEach(func() {
			text = "P.IVA 01234567890\nImponibile 100,00\nIVA 22,00\nTotale 122,00"
		})

		It("drops the mis-read VAT amount", func() {
			Expect(fields.SupplierVATID).To(HaveValue(Equal("01234567890")))
			Expect(fields.VATAmount).To(BeNil())
			Expect(fields.NetAmount).To(HaveValue(Equal(100.0)))
		})
	})

	When("nothing is recognisable", func() {
		BeforeEach(func() {
			text = ""
		})

		It("returns an empty record instead of failing", func() {
			Expect(fields).NotTo(BeNil())
			Expect(fields.Confidence).To(BeZero())
		})
	})
})
