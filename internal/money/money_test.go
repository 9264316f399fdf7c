package money

import "testing"

func TestLine(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice float64
		quantity  float64
		want      float64
	}{
		{name: "halfPortion", unitPrice: 10.00, quantity: 0.5, want: 5.00},
		{name: "wholeUnits", unitPrice: 12.50, quantity: 3, want: 37.50},
		{name: "binaryUnfriendly", unitPrice: 0.1, quantity: 3, want: 0.3},
		{name: "oddCentHalf", unitPrice: 0.99, quantity: 0.5, want: 0.495},
		{name: "quarterPortion", unitPrice: 9.99, quantity: 0.75, want: 7.4925},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Line(tt.unitPrice, tt.quantity); got != tt.want {
				t.Errorf("Line(%v, %v) = %v, want %v", tt.unitPrice, tt.quantity, got, tt.want)
			}
		})
	}
}

func TestSum(t *testing.T) {
	if got := Sum(0.1, 0.2); got != 0.3 {
		t.Errorf("Sum(0.1, 0.2) = %v, want 0.3", got)
	}
	if got := Sum(0.495, 0.495); got != 0.99 {
		t.Errorf("Sum(0.495, 0.495) = %v, want 0.99", got)
	}
	if got := Sum(); got != 0 {
		t.Errorf("Sum() = %v, want 0", got)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   float64
	}{
		{name: "halfCentUp", amount: 0.495, want: 0.5},
		{name: "exact", amount: 24.5, want: 24.5},
		{name: "truncates", amount: 7.4925, want: 7.49},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round(tt.amount); got != tt.want {
				t.Errorf("Round(%v) = %v, want %v", tt.amount, got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	if !Equal(Sum(0.1, 0.2), 0.3) {
		t.Error("Equal(0.1+0.2, 0.3) should hold")
	}
	if Equal(0.495, 0.5) {
		t.Error("Equal should not round to cents")
	}
}
