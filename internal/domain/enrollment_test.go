package domain

import "testing"

func TestPaymentStatusGrantsContentAccess(t *testing.T) {
	tests := []struct {
		status PaymentStatus
		want   bool
	}{
		{PaymentStatusPending, false},
		{PaymentStatusFree, true},
		{PaymentStatusPaid, true},
		{PaymentStatusRefund, false},
		{PaymentStatus("UNKNOWN"), false},
	}
	for _, tc := range tests {
		if got := tc.status.GrantsContentAccess(); got != tc.want {
			t.Errorf("GrantsContentAccess(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestEnrollmentCanViewContent(t *testing.T) {
	paid := Enrollment{PaymentStatus: PaymentStatusPaid}
	if !paid.CanViewContent() {
		t.Error("paid enrollment should view content")
	}
	refunded := Enrollment{PaymentStatus: PaymentStatusRefund}
	if refunded.CanViewContent() {
		t.Error("refunded enrollment should not view content")
	}
}

func TestPaymentStatusValid(t *testing.T) {
	for _, status := range []PaymentStatus{PaymentStatusPending, PaymentStatusFree, PaymentStatusPaid, PaymentStatusRefund} {
		if !status.Valid() {
			t.Errorf("%s should be valid", status)
		}
	}
	if PaymentStatus("paid").Valid() {
		t.Error("lowercase value should not be valid")
	}
}
