package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusFailed, true},
		{OrderStatusPaid, OrderStatusPending, false},
		{OrderStatusPaid, OrderStatusFailed, false},
		{OrderStatusFailed, OrderStatusPaid, false},
		{OrderStatusPending, OrderStatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Fatalf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.allowed, got)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	if _, err := ParseOrderStatus("refunded"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	status, err := ParseOrderStatus("paid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != OrderStatusPaid {
		t.Fatalf("expected paid, got %s", status)
	}
}

func TestParseProductFamily(t *testing.T) {
	if _, err := ParseProductFamily("stickers"); err == nil {
		t.Fatal("expected error for unknown family")
	}
	family, err := ParseProductFamily("receipts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if family != ProductFamilyReceipts {
		t.Fatalf("expected receipts, got %s", family)
	}
}
