package heuristic

import "github.com/kirillkom/document-intake/internal/core/domain"

const (
	// VATImplausibleRatio is the largest share of the total a VAT amount may take.
	VATImplausibleRatio = 0.6
	// VATTotalEpsilon rejects VAT amounts that are really the total read twice.
	VATTotalEpsilon = 0.01
)

var (
	netLabels   = []string{"imponibile", "subtotale", "imponib."}
	totalLabels = []string{"totale", "totale da pagare", "importo totale", "da pagare"}
)

// ParseInvoice extracts invoice fields and reconciles net, VAT and total.
func ParseInvoice(text string) *domain.InvoiceFields {
	f := &domain.InvoiceFields{
		Supplier:      GuessSupplier(text),
		AccountHolder: FindAccountHolder(text),
		Number:        FindInvoiceNumber(text),
		Date:          FindDate(text),
		Currency:      DetectCurrency(text),
	}
	f.SupplierVATID, f.SupplierTaxCode = FindTaxIDs(text)

	net := firstAmountOnLines(text, true, netLabels...)
	total := firstAmountOnLines(text, false, totalLabels...)
	vat := FindAmountOnLine("iva", text, true)
	pct := FindVATPercent(text)

	if vat == nil && pct != nil && net != nil {
		vat = ptr(Round2(*net * *pct))
	}
	if total == nil && net != nil && vat != nil {
		total = ptr(Round2(*net + *vat))
	}
	if vat == nil && total != nil && net != nil {
		if diff := Round2(*total - *net); diff >= 0 {
			vat = ptr(diff)
		}
	}
	if vat != nil && total != nil && implausibleVAT(*vat, *total) {
		vat = nil
	}
	if net == nil && total != nil && pct != nil {
		base := Round2(*total / (1 + *pct))
		net = ptr(base)
		vat = ptr(Round2(*total - base))
	}

	f.NetAmount, f.VATAmount, f.TotalAmount = net, vat, total
	f.Confidence = presence(4, f.Supplier != nil, f.Number != nil, f.Date != nil, f.TotalAmount != nil)
	return f
}

func implausibleVAT(vat, total float64) bool {
	return vat >= total-VATTotalEpsilon || vat > total*VATImplausibleRatio
}

// presence is the share of found fields out of n, rounded to two decimals.
func presence(n int, found ...bool) float64 {
	hits := 0
	for _, ok := range found {
		if ok {
			hits++
		}
	}
	return Round2(float64(hits) / float64(n))
}
