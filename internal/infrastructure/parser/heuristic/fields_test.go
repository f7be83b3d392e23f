package heuristic_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kirillkom/document-intake/internal/infrastructure/parser/heuristic"
)

var _ = Describe("ParseAmount", func() {
	DescribeTable("normalises Italian and plain decimals",
		func(raw string, want float64) {
			v, ok := heuristic.ParseAmount(raw)
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(want))
		},
		Entry("thousands dot, decimal comma", "1.234,56", 1234.56),
		Entry("decimal comma", "1234,56", 1234.56),
		Entry("decimal point", "1234.56", 1234.56),
		Entry("integer", "122", 122.0),
		Entry("millions", "1.234.567,00", 1234567.0),
	)

	It("rejects malformed input", func() {
		_, ok := heuristic.ParseAmount("12,34,56")
		Expect(ok).To(BeFalse())
		_, ok = heuristic.ParseAmount("")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("FindDate", func() {
	DescribeTable("recognises supported layouts",
		func(text, want string) {
			d := heuristic.FindDate(text)
			Expect(d).NotTo(BeNil())
			Expect(d.String()).To(Equal(want))
		},
		Entry("dd/mm/yyyy", "Data: 14/10/2025", "2025-10-14"),
		Entry("dd/mm/yy recent", "del 14/10/25", "2025-10-14"),
		Entry("dd/mm/yy last century", "del 14/10/76", "1976-10-14"),
		Entry("iso", "emessa il 2025-10-14", "2025-10-14"),
		Entry("month name", "Milano, 14 ottobre 2025", "2025-10-14"),
		Entry("abbreviated month", "14 ott. 2025", "2025-10-14"),
		Entry("dotted", "14.10.2025", "2025-10-14"),
	)

	It("ignores template placeholders", func() {
		Expect(heuristic.FindDate("Data: dd/mm/yyyy")).To(BeNil())
	})

	It("falls through to the next layout when a date is not on the calendar", func() {
		d := heuristic.FindDate("scadenza 31/02/2025, emessa 2025-03-01")
		Expect(d).NotTo(BeNil())
		Expect(d.String()).To(Equal("2025-03-01"))
	})

	It("returns nil without a date", func() {
		Expect(heuristic.FindDate("nessuna data qui")).To(BeNil())
	})
})

var _ = Describe("GuessSupplier", func() {
	It("prefers a line with a legal form", func() {
		text := "FATTURA\nStudio Grafico Bianchi\nACME Servizi S.r.l.\nVia Roma 10, Milano\nP.IVA 01234567890"
		Expect(heuristic.GuessSupplier(text)).To(HaveValue(Equal("ACME Servizi S.r.l.")))
	})

	It("falls back to a mostly alphabetic line", func() {
		text := "Fattura\n12/34\nAB 1234567\nStudio Grafico Bianchi\n"
		Expect(heuristic.GuessSupplier(text)).To(HaveValue(Equal("Studio Grafico Bianchi")))
	})

	It("returns nil when every line is a label", func() {
		Expect(heuristic.GuessSupplier("Fattura\nTotale 10,00\nIBAN IT00X\n")).To(BeNil())
	})
})

var _ = Describe("FindTaxIDs", func() {
	It("reads labelled VAT and fiscal code", func() {
		vat, cf := heuristic.FindTaxIDs("P.IVA: 01234567890\nCodice Fiscale: RSSMRA85T10A562S")
		Expect(vat).To(HaveValue(Equal("01234567890")))
		Expect(cf).To(HaveValue(Equal("RSSMRA85T10A562S")))
	})

	It("falls back to a free-standing 11-digit run", func() {
		vat, _ := heuristic.FindTaxIDs("Rif. 12345678901 del mese")
		Expect(vat).To(HaveValue(Equal("12345678901")))
	})

	It("never takes an unlabelled fiscal code", func() {
		_, cf := heuristic.FindTaxIDs("RSSMRA85T10A562S")
		Expect(cf).To(BeNil())
	})
})

var _ = Describe("FindInvoiceNumber", func() {
	It("prefers compact tokens", func() {
		Expect(heuristic.FindInvoiceNumber("Fattura n. INV-2025-007")).To(HaveValue(Equal("INV-2025-007")))
	})

	It("reads labelled numbers", func() {
		Expect(heuristic.FindInvoiceNumber("Fattura numero: 2025/15")).To(HaveValue(Equal("2025/15")))
	})

	It("rejects captures shorter than three characters", func() {
		Expect(heuristic.FindInvoiceNumber("Fattura n. 12")).To(BeNil())
	})
})

var _ = Describe("FindAccountHolder", func() {
	It("reads the name after the label", func() {
		Expect(heuristic.FindAccountHolder("IBAN IT60X\nIntestatario: Mario Rossi")).To(HaveValue(Equal("Mario Rossi")))
	})

	It("skips names that are too short", func() {
		Expect(heuristic.FindAccountHolder("Beneficiario: ab")).To(BeNil())
	})
})

var _ = Describe("line finders", func() {
	It("skips percentage lines when asked", func() {
		text := "IVA 22% su imponibile\nIVA 22,00"
		Expect(heuristic.FindAmountOnLine("iva", text, true)).To(HaveValue(Equal(22.0)))
		Expect(heuristic.FindAmountOnLine("iva", text, false)).To(HaveValue(Equal(22.0)))
	})

	It("reads VAT percentages with a decimal comma", func() {
		Expect(heuristic.FindVATPercent("I.V.A. 10 %\nIVA 10 %")).To(HaveValue(BeNumerically("~", 0.10, 1e-9)))
		Expect(heuristic.FindVATPercent("IVA 5,5%")).To(HaveValue(BeNumerically("~", 0.055, 1e-9)))
	})

	It("detects euro", func() {
		Expect(heuristic.DetectCurrency("Totale € 10")).To(HaveValue(Equal("EUR")))
		Expect(heuristic.DetectCurrency("Totale 10 EUR")).To(HaveValue(Equal("EUR")))
		Expect(heuristic.DetectCurrency("Total 10 USD")).To(BeNil())
	})
})
