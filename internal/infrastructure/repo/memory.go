package repo

import (
	"sort"
	"strings"
	"sync"

	"oms-backend/internal/domain"
	"oms-backend/internal/usecase"
)

// MemoryStore backs all repositories with in-process maps. One mutex guards
// orders and legs together so CreateOrderWithLegs stays atomic.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order      // order_id -> order
	legs   map[string]*domain.PaymentLeg // leg id -> leg
	promos map[string]*domain.Promotion  // upper(code) -> promotion
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[string]*domain.Order),
		legs:   make(map[string]*domain.PaymentLeg),
		promos: make(map[string]*domain.Promotion),
	}
}

func (s *MemoryStore) CreateOrderWithLegs(orders []*domain.Order, legs []*domain.PaymentLeg) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range orders {
		if _, ok := s.orders[o.OrderID]; ok {
			return usecase.ErrConflict("order already exists")
		}
	}
	for _, o := range orders {
		cp := *o
		s.orders[o.OrderID] = &cp
	}
	for _, l := range legs {
		cp := *l
		s.legs[l.ID] = &cp
	}
	return nil
}

func (s *MemoryStore) GetOrder(orderID string) (*domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, false
	}
	cp := *o
	return &cp, true
}

func (s *MemoryStore) OrdersByParent(parentOrderID string) []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Order
	for _, o := range s.orders {
		if o.ParentOrderID == parentOrderID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}

func (s *MemoryStore) UpdateOrderStatus(orderID string, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return usecase.ErrNotFound("order")
	}
	o.Status = status
	return nil
}

func (s *MemoryStore) UpdateOrderCancel(orderID string, status domain.OrderStatus, reason, remarks string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return usecase.ErrNotFound("order")
	}
	o.Status = status
	o.CancelReason = reason
	o.CancelRemarks = remarks
	return nil
}

func (s *MemoryStore) LegsByOrder(orderID string) []*domain.PaymentLeg {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.PaymentLeg
	for _, l := range s.legs {
		if l.OrderID == orderID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentID < out[j].PaymentID })
	return out
}

func (s *MemoryStore) LegsByExternalRef(externalRef string) []*domain.PaymentLeg {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.PaymentLeg
	for _, l := range s.legs {
		if l.ExternalRef != "" && l.ExternalRef == externalRef {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}

func (s *MemoryStore) UpdateLegStatus(legID string, status domain.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.legs[legID]
	if !ok {
		return usecase.ErrNotFound("payment")
	}
	l.Status = status
	return nil
}

func (s *MemoryStore) UpdateLegGatewayPayment(legID, gatewayPaymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.legs[legID]
	if !ok {
		return usecase.ErrNotFound("payment")
	}
	l.GatewayPaymentID = gatewayPaymentID
	return nil
}

func (s *MemoryStore) ByCode(code string) (*domain.Promotion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.promos[strings.ToUpper(code)]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

func (s *MemoryStore) SeedPromotion(p *domain.Promotion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.promos[strings.ToUpper(p.Code)] = &cp
}
