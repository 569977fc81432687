package domain

// OrderStatus is an integer-coded order lifecycle status. The numeric value
// places a status in one of three bands: 0-19 order management, 20-29
// warehouse (WMS), 30-39 transport (TMS).
type OrderStatus int

const (
	StatusDraft                  OrderStatus = 0
	StatusOpen                   OrderStatus = 10
	StatusFulfilled              OrderStatus = 11
	StatusPartiallyFulfilled     OrderStatus = 12
	StatusUnfulfilled            OrderStatus = 13
	StatusCanceled               OrderStatus = 14
	StatusReturn                 OrderStatus = 15
	StatusCancelledPendingRefund OrderStatus = 16
	StatusReturned               OrderStatus = 17

	StatusWMSSynced     OrderStatus = 21
	StatusWMSSyncFailed OrderStatus = 22
	StatusWMSOpen       OrderStatus = 23
	StatusWMSInProgress OrderStatus = 24
	StatusWMSPicked     OrderStatus = 25
	StatusWMSFulfilled  OrderStatus = 26
	StatusWMSInvoiced   OrderStatus = 27
	StatusWMSCanceled   OrderStatus = 28

	StatusTMSSynced          OrderStatus = 31
	StatusTMSSyncFailed      OrderStatus = 32
	StatusRiderAssigned      OrderStatus = 33
	StatusTMSOutForDelivery  OrderStatus = 34
	StatusTMSDelivered       OrderStatus = 35
	StatusTMSReturnInitiated OrderStatus = 36
	StatusTMSReturned        OrderStatus = 37
)

type StatusBand string

const (
	BandOMS StatusBand = "oms"
	BandWMS StatusBand = "wms"
	BandTMS StatusBand = "tms"
)

func (s OrderStatus) Band() StatusBand {
	switch {
	case s >= 30:
		return BandTMS
	case s >= 20:
		return BandWMS
	}
	return BandOMS
}

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusFulfilled || s == StatusCanceled || s == StatusReturned
}

// CanCancel reports whether the order can still be cancelled: only before
// physical picking has started in the warehouse.
func (s OrderStatus) CanCancel() bool {
	switch s {
	case StatusDraft, StatusOpen, StatusWMSSynced, StatusWMSSyncFailed,
		StatusWMSOpen, StatusWMSInProgress:
		return true
	}
	return false
}

// transitions is the forward sequence through the three bands plus the
// sync-failure retry loops and the return side-branch. Cancellation targets
// are handled separately in CanTransition via CanCancel.
var transitions = map[OrderStatus][]OrderStatus{
	StatusDraft:                  {StatusOpen},
	StatusOpen:                   {StatusWMSSynced, StatusWMSSyncFailed},
	StatusWMSSyncFailed:          {StatusWMSSynced, StatusWMSSyncFailed},
	StatusWMSSynced:              {StatusWMSOpen},
	StatusWMSOpen:                {StatusWMSInProgress},
	StatusWMSInProgress:          {StatusWMSPicked},
	StatusWMSPicked:              {StatusWMSFulfilled},
	StatusWMSFulfilled:           {StatusWMSInvoiced},
	StatusWMSInvoiced:            {StatusTMSSynced, StatusTMSSyncFailed},
	StatusTMSSyncFailed:          {StatusTMSSynced, StatusTMSSyncFailed},
	StatusTMSSynced:              {StatusRiderAssigned},
	StatusRiderAssigned:          {StatusTMSOutForDelivery},
	StatusTMSOutForDelivery:      {StatusTMSDelivered, StatusTMSReturnInitiated},
	StatusTMSDelivered:           {StatusFulfilled, StatusPartiallyFulfilled, StatusReturn},
	StatusTMSReturnInitiated:     {StatusTMSReturned},
	StatusTMSReturned:            {StatusReturned, StatusUnfulfilled},
	StatusPartiallyFulfilled:     {StatusReturn},
	StatusReturn:                 {StatusReturned},
	StatusCancelledPendingRefund: {StatusCanceled},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusCanceled || to == StatusCancelledPendingRefund {
		return from.CanCancel() || from == StatusCancelledPendingRefund && to == StatusCanceled
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CustomerLabel maps an internal status to the customer-facing display string.
func (s OrderStatus) CustomerLabel() string {
	switch s {
	case StatusDraft:
		return "Payment Pending"
	case StatusOpen, StatusWMSSyncFailed:
		return "Processing"
	case StatusFulfilled, StatusPartiallyFulfilled, StatusTMSDelivered:
		return "Delivered"
	case StatusUnfulfilled, StatusTMSReturned:
		return "Delivery Failed"
	case StatusCanceled, StatusCancelledPendingRefund, StatusWMSCanceled:
		return "Cancelled"
	case StatusReturn, StatusTMSReturnInitiated:
		return "Return Initiated"
	case StatusReturned:
		return "Returned"
	case StatusWMSSynced, StatusWMSOpen:
		return "Confirmed"
	case StatusWMSInProgress, StatusWMSPicked:
		return "Packing Your Order"
	case StatusWMSFulfilled:
		return "Packed"
	case StatusWMSInvoiced, StatusTMSSyncFailed:
		return "Ready For Dispatch"
	case StatusTMSSynced:
		return "Finding Rider"
	case StatusRiderAssigned:
		return "Rider Assigned"
	case StatusTMSOutForDelivery:
		return "Out For Delivery"
	}
	return "Processing"
}
