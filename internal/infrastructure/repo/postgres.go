package repo

import (
	"database/sql"
	"encoding/json"
	"strings"

	_ "github.com/lib/pq"

	"oms-backend/internal/domain"
	"oms-backend/internal/usecase"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		order_id TEXT UNIQUE,
		parent_order_id TEXT,
		customer_id TEXT,
		customer_name TEXT,
		customer_phone TEXT,
		origin TEXT,
		facility_name TEXT,
		items TEXT,
		total_amount NUMERIC(12,2),
		status INT,
		promotion_code TEXT,
		cancel_reason TEXT,
		cancel_remarks TEXT,
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ
	);`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS payment_details (
		id TEXT PRIMARY KEY,
		order_id TEXT,
		payment_id TEXT,
		mode TEXT,
		amount NUMERIC(12,2),
		create_payment_order BOOLEAN,
		status INT,
		external_ref TEXT,
		payment_session_id TEXT,
		payment_url TEXT,
		gateway_payment_id TEXT,
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ
	);`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS promotions (
		code TEXT PRIMARY KEY,
		offer_type TEXT,
		offer_sub_type TEXT,
		discount_amount NUMERIC(12,2),
		discount_percentage NUMERIC(5,2),
		max_discount NUMERIC(12,2),
		min_purchase NUMERIC(12,2),
		applicable_skus TEXT,
		excluded_skus TEXT,
		applicable_categories TEXT,
		excluded_categories TEXT,
		active BOOLEAN
	);`)
	return err
}

func (s *PostgresStore) CreateOrderWithLegs(orders []*domain.Order, legs []*domain.PaymentLeg) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, o := range orders {
		items, _ := json.Marshal(o.Items)
		_, err := tx.Exec(`INSERT INTO orders (id,order_id,parent_order_id,customer_id,customer_name,customer_phone,origin,facility_name,items,total_amount,status,promotion_code,cancel_reason,cancel_remarks,created_at,updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
			o.ID, o.OrderID, o.ParentOrderID, o.CustomerID, o.CustomerName, o.CustomerPhone, string(o.Origin), o.FacilityName, string(items), o.TotalAmount, int(o.Status), o.PromotionCode, o.CancelReason, o.CancelRemarks, o.CreatedAt, o.UpdatedAt)
		if err != nil {
			return err
		}
	}
	for _, l := range legs {
		_, err := tx.Exec(`INSERT INTO payment_details (id,order_id,payment_id,mode,amount,create_payment_order,status,external_ref,payment_session_id,payment_url,gateway_payment_id,created_at,updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
			l.ID, l.OrderID, l.PaymentID, string(l.Mode), l.Amount, l.CreatePaymentOrder, int(l.Status), l.ExternalRef, l.PaymentSessionID, l.PaymentURL, l.GatewayPaymentID, l.CreatedAt, l.UpdatedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

const orderCols = `id,order_id,parent_order_id,customer_id,customer_name,customer_phone,origin,facility_name,items,total_amount,status,promotion_code,cancel_reason,cancel_remarks,created_at,updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	var o domain.Order
	var items, origin string
	var status int
	err := row.Scan(&o.ID, &o.OrderID, &o.ParentOrderID, &o.CustomerID, &o.CustomerName, &o.CustomerPhone, &origin, &o.FacilityName, &items, &o.TotalAmount, &status, &o.PromotionCode, &o.CancelReason, &o.CancelRemarks, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Origin = domain.Origin(origin)
	o.Status = domain.OrderStatus(status)
	_ = json.Unmarshal([]byte(items), &o.Items)
	return &o, nil
}

func (s *PostgresStore) GetOrder(orderID string) (*domain.Order, bool) {
	row := s.db.QueryRow(`SELECT `+orderCols+` FROM orders WHERE order_id=$1`, orderID)
	o, err := scanOrder(row)
	if err != nil {
		return nil, false
	}
	return o, true
}

func (s *PostgresStore) OrdersByParent(parentOrderID string) []*domain.Order {
	rows, err := s.db.Query(`SELECT `+orderCols+` FROM orders WHERE parent_order_id=$1 ORDER BY order_id`, parentOrderID)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			continue
		}
		out = append(out, o)
	}
	return out
}

func (s *PostgresStore) UpdateOrderStatus(orderID string, status domain.OrderStatus) error {
	res, err := s.db.Exec(`UPDATE orders SET status=$2, updated_at=NOW() WHERE order_id=$1`, orderID, int(status))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return usecase.ErrNotFound("order")
	}
	return nil
}

func (s *PostgresStore) UpdateOrderCancel(orderID string, status domain.OrderStatus, reason, remarks string) error {
	res, err := s.db.Exec(`UPDATE orders SET status=$2, cancel_reason=$3, cancel_remarks=$4, updated_at=NOW() WHERE order_id=$1`,
		orderID, int(status), reason, remarks)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return usecase.ErrNotFound("order")
	}
	return nil
}

const legCols = `id,order_id,payment_id,mode,amount,create_payment_order,status,external_ref,payment_session_id,payment_url,gateway_payment_id,created_at,updated_at`

func scanLeg(row interface{ Scan(...any) error }) (*domain.PaymentLeg, error) {
	var l domain.PaymentLeg
	var mode string
	var status int
	err := row.Scan(&l.ID, &l.OrderID, &l.PaymentID, &mode, &l.Amount, &l.CreatePaymentOrder, &status, &l.ExternalRef, &l.PaymentSessionID, &l.PaymentURL, &l.GatewayPaymentID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Mode = domain.PaymentMode(mode)
	l.Status = domain.PaymentStatus(status)
	return &l, nil
}

func (s *PostgresStore) legsWhere(where string, arg any) []*domain.PaymentLeg {
	rows, err := s.db.Query(`SELECT `+legCols+` FROM payment_details WHERE `+where+` ORDER BY payment_id`, arg)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []*domain.PaymentLeg
	for rows.Next() {
		l, err := scanLeg(rows)
		if err != nil {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (s *PostgresStore) LegsByOrder(orderID string) []*domain.PaymentLeg {
	return s.legsWhere(`order_id=$1`, orderID)
}

func (s *PostgresStore) LegsByExternalRef(externalRef string) []*domain.PaymentLeg {
	if externalRef == "" {
		return nil
	}
	return s.legsWhere(`external_ref=$1`, externalRef)
}

func (s *PostgresStore) UpdateLegStatus(legID string, status domain.PaymentStatus) error {
	res, err := s.db.Exec(`UPDATE payment_details SET status=$2, updated_at=NOW() WHERE id=$1`, legID, int(status))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return usecase.ErrNotFound("payment")
	}
	return nil
}

func (s *PostgresStore) UpdateLegGatewayPayment(legID, gatewayPaymentID string) error {
	res, err := s.db.Exec(`UPDATE payment_details SET gateway_payment_id=$2, updated_at=NOW() WHERE id=$1`, legID, gatewayPaymentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return usecase.ErrNotFound("payment")
	}
	return nil
}

func (s *PostgresStore) ByCode(code string) (*domain.Promotion, bool) {
	var p domain.Promotion
	var offerType, subType string
	var appSKUs, exclSKUs, appCats, exclCats string
	err := s.db.QueryRow(`SELECT code,offer_type,offer_sub_type,discount_amount,discount_percentage,max_discount,min_purchase,applicable_skus,excluded_skus,applicable_categories,excluded_categories,active FROM promotions WHERE code=$1`,
		strings.ToUpper(code)).
		Scan(&p.Code, &offerType, &subType, &p.DiscountAmount, &p.DiscountPercentage, &p.MaxDiscount, &p.MinPurchase, &appSKUs, &exclSKUs, &appCats, &exclCats, &p.Active)
	if err != nil {
		return nil, false
	}
	p.OfferType = domain.PromotionOfferType(offerType)
	p.OfferSubType = domain.PromotionSubType(subType)
	_ = json.Unmarshal([]byte(appSKUs), &p.ApplicableSKUs)
	_ = json.Unmarshal([]byte(exclSKUs), &p.ExcludedSKUs)
	_ = json.Unmarshal([]byte(appCats), &p.ApplicableCategories)
	_ = json.Unmarshal([]byte(exclCats), &p.ExcludedCategories)
	return &p, true
}

func (s *PostgresStore) SeedPromotion(p *domain.Promotion) error {
	appSKUs, _ := json.Marshal(p.ApplicableSKUs)
	exclSKUs, _ := json.Marshal(p.ExcludedSKUs)
	appCats, _ := json.Marshal(p.ApplicableCategories)
	exclCats, _ := json.Marshal(p.ExcludedCategories)
	_, err := s.db.Exec(`INSERT INTO promotions (code,offer_type,offer_sub_type,discount_amount,discount_percentage,max_discount,min_purchase,applicable_skus,excluded_skus,applicable_categories,excluded_categories,active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (code) DO UPDATE SET offer_type=$2,offer_sub_type=$3,discount_amount=$4,discount_percentage=$5,max_discount=$6,min_purchase=$7,applicable_skus=$8,excluded_skus=$9,applicable_categories=$10,excluded_categories=$11,active=$12`,
		strings.ToUpper(p.Code), string(p.OfferType), string(p.OfferSubType), p.DiscountAmount, p.DiscountPercentage, p.MaxDiscount, p.MinPurchase, string(appSKUs), string(exclSKUs), string(appCats), string(exclCats), p.Active)
	return err
}
