package domain

import "testing"

func TestStatusBands(t *testing.T) {
	cases := []struct {
		status OrderStatus
		band   StatusBand
	}{
		{StatusDraft, BandOMS},
		{StatusOpen, BandOMS},
		{StatusCancelledPendingRefund, BandOMS},
		{StatusWMSSynced, BandWMS},
		{StatusWMSCanceled, BandWMS},
		{StatusTMSSynced, BandTMS},
		{StatusTMSReturned, BandTMS},
	}
	for _, c := range cases {
		if got := c.status.Band(); got != c.band {
			t.Errorf("Band(%d) = %s, want %s", c.status, got, c.band)
		}
	}
}

func TestCanCancelStopsAtPicking(t *testing.T) {
	cancellable := []OrderStatus{StatusDraft, StatusOpen, StatusWMSSynced, StatusWMSSyncFailed, StatusWMSOpen, StatusWMSInProgress}
	for _, s := range cancellable {
		if !s.CanCancel() {
			t.Errorf("status %d should be cancellable", s)
		}
	}
	locked := []OrderStatus{StatusWMSPicked, StatusWMSFulfilled, StatusWMSInvoiced, StatusTMSSynced, StatusTMSOutForDelivery, StatusTMSDelivered, StatusFulfilled}
	for _, s := range locked {
		if s.CanCancel() {
			t.Errorf("status %d should not be cancellable", s)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allow := [][2]OrderStatus{
		{StatusDraft, StatusOpen},
		{StatusOpen, StatusWMSSynced},
		{StatusOpen, StatusWMSSyncFailed},
		{StatusWMSSyncFailed, StatusWMSSynced},
		{StatusWMSInvoiced, StatusTMSSynced},
		{StatusTMSDelivered, StatusFulfilled},
		{StatusOpen, StatusCanceled},
		{StatusWMSInProgress, StatusCancelledPendingRefund},
		{StatusCancelledPendingRefund, StatusCanceled},
		{StatusTMSOutForDelivery, StatusTMSReturnInitiated},
		{StatusTMSReturned, StatusReturned},
	}
	for _, p := range allow {
		if !CanTransition(p[0], p[1]) {
			t.Errorf("transition %d -> %d should be allowed", p[0], p[1])
		}
	}
	deny := [][2]OrderStatus{
		{StatusOpen, StatusWMSPicked},
		{StatusWMSPicked, StatusCanceled},
		{StatusFulfilled, StatusReturn},
		{StatusCanceled, StatusOpen},
		{StatusWMSSynced, StatusOpen},
		{StatusTMSDelivered, StatusCanceled},
	}
	for _, p := range deny {
		if CanTransition(p[0], p[1]) {
			t.Errorf("transition %d -> %d should be rejected", p[0], p[1])
		}
	}
}

func TestCustomerLabelCollapsesInternalStates(t *testing.T) {
	if got := StatusWMSSyncFailed.CustomerLabel(); got != StatusOpen.CustomerLabel() {
		t.Errorf("sync-failed label = %q, want the placed label %q", got, StatusOpen.CustomerLabel())
	}
	if got := StatusCancelledPendingRefund.CustomerLabel(); got != StatusCanceled.CustomerLabel() {
		t.Errorf("pending-refund label = %q, want cancelled label", got)
	}
}
