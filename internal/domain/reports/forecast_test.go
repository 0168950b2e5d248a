package reports

import (
	"testing"
)

func stockItem(name string, current, min, sold30, sold90 float64) StockItem {
	return StockItem{
		ProductID:    newTestID(),
		ProductName:  name,
		CurrentStock: current,
		MinStock:     min,
		SoldLast30:   sold30,
		SoldLast90:   sold90,
	}
}

func TestForecast_Basic(t *testing.T) {
	// 60 units in 30 days: 2/day. 10 units left: 5 days.
	items := []StockItem{stockItem("yerba", 10, 8, 60, 150)}

	got := Forecast(items, testNow)
	if len(got) != 1 {
		t.Fatalf("want 1 suggestion, got %d", len(got))
	}

	s := got[0]
	if s.AvgDailyRate != 2 {
		t.Errorf("daily rate: want 2, got %v", s.AvgDailyRate)
	}
	if s.DaysRemaining != 5 {
		t.Errorf("days remaining: want 5, got %d", s.DaysRemaining)
	}
	if !s.EstimatedDate.Equal(testNow.AddDate(0, 0, 5)) {
		t.Errorf("estimated date: got %v", s.EstimatedDate)
	}
	// Monthly avg 50, padded 20% = 60, minus 10 on hand = 50.
	if s.SuggestedQty != 50 {
		t.Errorf("suggested qty: want 50, got %v", s.SuggestedQty)
	}
}

func TestForecast_AboveThresholdSkipped(t *testing.T) {
	// Threshold is 1.5x minimum: stock 16 with min 10 is safe.
	items := []StockItem{
		stockItem("safe", 16, 10, 60, 180),
		stockItem("boundary", 15, 10, 60, 180),
	}

	got := Forecast(items, testNow)
	if len(got) != 1 {
		t.Fatalf("want 1 suggestion, got %d", len(got))
	}
	if got[0].ProductName != "boundary" {
		t.Errorf("wrong product selected: %s", got[0].ProductName)
	}
}

func TestForecast_SlowMoverRateFloor(t *testing.T) {
	// No sales in 30 days: the rate floor keeps days finite.
	items := []StockItem{stockItem("slow", 3, 5, 0, 0)}

	got := Forecast(items, testNow)
	if len(got) != 1 {
		t.Fatalf("want 1 suggestion, got %d", len(got))
	}
	if got[0].AvgDailyRate != minDailyRate {
		t.Errorf("rate floor not applied: %v", got[0].AvgDailyRate)
	}
	// 3 / 0.1 in float64 lands just under 30, so the floor gives 29.
	if got[0].DaysRemaining != 29 {
		t.Errorf("days remaining: want 29, got %d", got[0].DaysRemaining)
	}
	if got[0].SuggestedQty != 0 {
		t.Errorf("suggested qty: want 0, got %v", got[0].SuggestedQty)
	}
}

func TestForecast_SortedAndCapped(t *testing.T) {
	var items []StockItem
	for i := 0; i < 15; i++ {
		// Increasing stock means increasing days remaining.
		items = append(items, stockItem("p", float64(i+1), 100, 30, 90))
	}

	got := Forecast(items, testNow)
	if len(got) != maxSuggestions {
		t.Fatalf("want %d suggestions, got %d", maxSuggestions, len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].DaysRemaining > got[i].DaysRemaining {
			t.Fatalf("not sorted by urgency at %d: %d > %d", i, got[i-1].DaysRemaining, got[i].DaysRemaining)
		}
	}
}

func TestClassifyCashMovement(t *testing.T) {
	tests := []struct {
		typ  string
		want Flow
	}{
		{"apertura", FlowIngress},
		{"venta", FlowIngress},
		{"ingreso_extra", FlowIngress},
		{"ajuste_positivo", FlowIngress},
		{"cierre", FlowEgress},
		{"gasto", FlowEgress},
		{"retiro", FlowEgress},
		{"ajuste_negativo", FlowEgress},
		{"transferencia", FlowNone},
		{"", FlowNone},
	}

	for _, tt := range tests {
		if got := ClassifyCashMovement(Transaction{Type: tt.typ}); got != tt.want {
			t.Errorf("ClassifyCashMovement(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}
