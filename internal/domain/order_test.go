package domain

import (
	"errors"
	"testing"
	"time"
)

func validOrder() Order {
	now := time.Now().UTC()
	return Order{
		ID:            "order-1",
		StaffID:       "staff-1",
		CustomerID:    "cust-1",
		SubtotalMinor: 300,
		TotalMinor:    300,
		Active:        true,
		CreatedAt:     now,
		Items: []OrderItem{
			{ID: "item-1", BookID: "book-1", Qty: 2, PriceMinor: 100, CreatedAt: now},
			{ID: "item-2", BookID: "book-2", Qty: 1, PriceMinor: 100, CreatedAt: now},
		},
	}
}

func TestOrder_ValidateInvariants_OK(t *testing.T) {
	order := validOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestOrder_ValidateInvariants_WithPromotion(t *testing.T) {
	order := validOrder()
	order.PromotionID = "promo-1"
	order.PromotionMinor = 30
	order.TotalMinor = 270

	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestOrder_ValidateInvariants_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Order)
		want   error
	}{
		{"без сотрудника", func(o *Order) { o.StaffID = "" }, ErrStaffRequired},
		{"без клиента", func(o *Order) { o.CustomerID = "" }, ErrCustomerRequired},
		{"без позиций", func(o *Order) { o.Items = nil; o.SubtotalMinor = 0; o.TotalMinor = 0 }, ErrEmptyOrder},
		{"отрицательная скидка", func(o *Order) { o.PromotionMinor = -1 }, ErrAmountNegative},
		{"subtotal не сходится", func(o *Order) { o.SubtotalMinor = 999; o.TotalMinor = 999 }, ErrAmountMismatch},
		{"total не сходится", func(o *Order) { o.TotalMinor = 1 }, ErrAmountMismatch},
		{"нулевое количество в позиции", func(o *Order) { o.Items[0].Qty = 0 }, ErrItemQtyInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := validOrder()
			tt.mutate(&order)

			errs := order.ValidateInvariants()
			if len(errs) == 0 {
				t.Fatal("expected validation errors")
			}
			found := false
			for _, err := range errs {
				if errors.Is(err, tt.want) {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %v among %v", tt.want, errs)
			}
		})
	}
}

func TestCustomer_Active(t *testing.T) {
	if (&Customer{ID: "c1"}).Active() != true {
		t.Fatal("expected existing customer to be active")
	}
	if (&Customer{ID: "c1", Deleted: true}).Active() {
		t.Fatal("expected deleted customer to be inactive")
	}
	var nilCustomer *Customer
	if nilCustomer.Active() {
		t.Fatal("expected nil customer to be inactive")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(ErrCommitConflict) {
		t.Fatal("commit conflict must be retryable")
	}
	if !IsRetryable(ErrStorageUnavailable) {
		t.Fatal("storage unavailable must be retryable")
	}
	if IsRetryable(ErrEmptyOrder) {
		t.Fatal("validation errors are not retryable")
	}
	if IsRetryable(ErrInsufficientStock) {
		t.Fatal("insufficient stock is deterministic, not retryable")
	}
}
