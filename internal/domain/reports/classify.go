package reports

// Flow classifies a transaction as money-in, money-out, or neither.
type Flow int

const (
	// FlowNone means the transaction type matched neither table.
	FlowNone Flow = iota
	FlowIngress
	FlowEgress
)

// Classifier decides the flow direction of a transaction.
type Classifier func(t Transaction) Flow

// Cash movement type tables. A type absent from both tables contributes to
// neither total; the aggregator counts it as unclassified and the service
// logs a data-quality warning.
var (
	cashIngressTypes = map[string]struct{}{
		"apertura":        {},
		"venta":           {},
		"ingreso_extra":   {},
		"ajuste_positivo": {},
	}
	cashEgressTypes = map[string]struct{}{
		"cierre":          {},
		"gasto":           {},
		"retiro":          {},
		"ajuste_negativo": {},
	}
)

// ClassifyCashMovement classifies a cash-register movement by its type.
func ClassifyCashMovement(t Transaction) Flow {
	if _, ok := cashIngressTypes[t.Type]; ok {
		return FlowIngress
	}
	if _, ok := cashEgressTypes[t.Type]; ok {
		return FlowEgress
	}
	return FlowNone
}

// ClassifyIngress treats every transaction as money-in (sales, Libro IVA ventas).
func ClassifyIngress(Transaction) Flow { return FlowIngress }

// ClassifyEgress treats every transaction as money-out (purchases, Libro IVA compras).
func ClassifyEgress(Transaction) Flow { return FlowEgress }
