package reports

import (
	"sort"

	"github.com/FAb114/factusystem-reports/internal/core/types"
)

// Bucket holds the aggregate totals for one grouping dimension value.
// Produced fresh on every aggregation pass; never mutated after creation.
type Bucket struct {
	Key     string      `json:"key"`
	Ingress types.Money `json:"ingress"`
	Egress  types.Money `json:"egress"`
	Count   int         `json:"count"`
}

// Balance is always recomputed from ingress and egress, never stored.
func (b Bucket) Balance() types.Money {
	return b.Ingress.Sub(b.Egress)
}

// Summary is the result of one aggregation pass over a single dimension.
type Summary struct {
	Dimension  string   `json:"dimension"`
	Buckets    []Bucket `json:"buckets"`
	GrandTotal Bucket   `json:"grandTotal"`
	// Unclassified counts transactions whose type matched neither flow table.
	Unclassified int `json:"unclassified,omitempty"`
}

// KeyFunc extracts the grouping dimension value from a transaction.
type KeyFunc func(t Transaction) string

// Common key extractors.
var (
	ByPaymentMethod KeyFunc = func(t Transaction) string { return t.PaymentMethod }
	ByType          KeyFunc = func(t Transaction) string { return t.Type }
	ByUser          KeyFunc = func(t Transaction) string {
		if t.UserName != "" {
			return t.UserName
		}
		return t.UserID.String()
	}
	ByBranch KeyFunc = func(t Transaction) string {
		if t.BranchName != "" {
			return t.BranchName
		}
		return t.BranchID.String()
	}
	ByCategory KeyFunc = func(t Transaction) string {
		if t.CategoryName != "" {
			return t.CategoryName
		}
		return "sin_categoria"
	}
	ByParty KeyFunc = func(t Transaction) string {
		if t.PartyName != "" {
			return t.PartyName
		}
		return "sin_proveedor"
	}
	ByDay   KeyFunc = func(t Transaction) string { return t.Date.Format("2006-01-02") }
	ByMonth KeyFunc = func(t Transaction) string { return t.Date.Format("2006-01") }
)

// Aggregate reduces transactions into one bucket per dimension value plus a
// grand total, in a single linear pass. Each transaction lands in exactly one
// bucket. Voided transactions are skipped unless includeVoided is set.
//
// Buckets are returned sorted by key so repeated runs over the same input
// yield identical output.
func Aggregate(txs []Transaction, dimension string, key KeyFunc, classify Classifier, includeVoided bool) Summary {
	buckets := make(map[string]Bucket)
	grand := Bucket{Key: "total", Ingress: types.Zero(), Egress: types.Zero()}
	unclassified := 0

	for _, t := range txs {
		if t.Voided && !includeVoided {
			continue
		}

		k := key(t)
		b, ok := buckets[k]
		if !ok {
			b = Bucket{Key: k, Ingress: types.Zero(), Egress: types.Zero()}
		}

		switch classify(t) {
		case FlowIngress:
			b.Ingress = b.Ingress.Add(t.Amount)
			grand.Ingress = grand.Ingress.Add(t.Amount)
		case FlowEgress:
			b.Egress = b.Egress.Add(t.Amount)
			grand.Egress = grand.Egress.Add(t.Amount)
		default:
			unclassified++
		}

		b.Count++
		grand.Count++
		buckets[k] = b
	}

	out := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return Summary{
		Dimension:    dimension,
		Buckets:      out,
		GrandTotal:   grand,
		Unclassified: unclassified,
	}
}

// TaxBucket aggregates VAT amounts for one tax rate.
type TaxBucket struct {
	Rate   types.Rate  `json:"rate"`
	Base   types.Money `json:"base"`
	Amount types.Money `json:"amount"`
	Count  int         `json:"count"`
}

// TaxTotals reduces per-transaction VAT breakdowns into one bucket per rate,
// sorted ascending by rate. Voided transactions are skipped unless
// includeVoided is set.
func TaxTotals(txs []Transaction, includeVoided bool) []TaxBucket {
	byRate := make(map[string]TaxBucket)

	for _, t := range txs {
		if t.Voided && !includeVoided {
			continue
		}
		for _, tl := range t.Taxes {
			k := tl.Rate.String()
			b, ok := byRate[k]
			if !ok {
				b = TaxBucket{Rate: tl.Rate, Base: types.Zero(), Amount: types.Zero()}
			}
			b.Base = b.Base.Add(tl.Base)
			b.Amount = b.Amount.Add(tl.Amount)
			b.Count++
			byRate[k] = b
		}
	}

	out := make([]TaxBucket, 0, len(byRate))
	for _, b := range byRate {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rate.LessThan(out[j].Rate) })
	return out
}
