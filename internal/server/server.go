package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"oms-backend/internal/config"
	"oms-backend/internal/domain"
	"oms-backend/internal/infrastructure/razorpay"
	"oms-backend/internal/usecase"
)

type Server struct {
	cfg      config.Config
	orders   *usecase.OrderService
	promos   *usecase.PromotionEngine
	razorpay *razorpay.Client
	engine   *gin.Engine
}

func New(cfg config.Config, orders *usecase.OrderService, promos *usecase.PromotionEngine, rzp *razorpay.Client) *Server {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		cfg:      cfg,
		orders:   orders,
		promos:   promos,
		razorpay: rzp,
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api", authRequired(s.cfg.JWTSecret))
	api.POST("/orders", s.handleCreateOrder)
	api.GET("/orders/cancel-reasons", s.handleCancelReasons)
	api.GET("/orders/:id", s.handleGetOrder)
	api.POST("/orders/:id/cancel", s.handleCancelOrder)
	api.GET("/orders/:id/payment-status", s.handlePaymentStatus)
	api.POST("/payments/verify", s.handleVerifyPayment)
	api.POST("/payments/refund", s.handleRefund)
	api.POST("/promotions/calculate", s.handleCalculatePromotion)

	s.engine.POST("/webhooks/razorpay", s.handleRazorpayWebhook)
	s.engine.POST("/webhooks/cashfree", s.handleCashfreeWebhook)

	internal := s.engine.Group("/internal", apiKeyRequired(s.cfg.PotionsAPIKey))
	internal.POST("/orders/:id/status", s.handleStatusCallback)
}

// fail maps usecase errors onto HTTP status codes with a stable error shape.
func fail(c *gin.Context, err error) {
	var verr *usecase.ValidationError
	var serr *usecase.SettlementError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Code, "message": verr.Message})
	case errors.As(err, &serr):
		status := http.StatusBadGateway
		if serr.Code == usecase.CodeWalletInsufficientBalance {
			status = http.StatusPaymentRequired
		}
		c.JSON(status, gin.H{"error": serr.Code, "message": serr.Error()})
	default:
		var nf usecase.ErrNotFound
		var cf usecase.ErrConflict
		var br usecase.ErrBadRequest
		switch {
		case errors.As(err, &nf):
			c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND", "message": nf.Error()})
		case errors.As(err, &cf):
			c.JSON(http.StatusConflict, gin.H{"error": "CONFLICT", "message": cf.Error()})
		case errors.As(err, &br):
			c.JSON(http.StatusBadRequest, gin.H{"error": "BAD_REQUEST", "message": br.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL", "message": err.Error()})
		}
	}
}

type createOrderReq struct {
	Origin        string             `json:"origin"`
	CustomerID    string             `json:"customerId"`
	CustomerName  string             `json:"customerName"`
	CustomerPhone string             `json:"customerPhone"`
	Items         []domain.OrderItem `json:"items"`
	TotalAmount   decimal.Decimal    `json:"totalAmount"`
	PromotionCode string             `json:"promotionCode"`
	Payments      []paymentLegReq    `json:"payments"`
}

type paymentLegReq struct {
	Mode   string          `json:"paymentMode"`
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleCreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "BAD_REQUEST", "message": "invalid json"})
		return
	}
	if req.CustomerID == "" {
		req.CustomerID = customerID(c)
	}
	legs := make([]usecase.ProposedLeg, 0, len(req.Payments))
	for _, p := range req.Payments {
		mode, ok := domain.ParsePaymentMode(p.Mode)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": usecase.CodeModeNotAllowed, "message": "unknown payment mode " + p.Mode})
			return
		}
		legs = append(legs, usecase.ProposedLeg{Mode: mode, Amount: p.Amount})
	}
	res, err := s.orders.CreateOrder(c.Request.Context(), usecase.CreateOrderRequest{
		Origin:        domain.Origin(req.Origin),
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Items:         req.Items,
		TotalAmount:   req.TotalAmount,
		Payment:       legs,
		PromotionCode: req.PromotionCode,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) handleGetOrder(c *gin.Context) {
	view, err := s.orders.GetOrder(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type cancelReq struct {
	Reason  string `json:"reason"`
	Remarks string `json:"remarks"`
}

func (s *Server) handleCancelOrder(c *gin.Context) {
	var req cancelReq
	_ = c.ShouldBindJSON(&req)
	if _, ok := usecase.CancelReasons()[req.Reason]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "BAD_REQUEST", "message": "unknown cancel reason"})
		return
	}
	status, err := s.orders.CancelOrder(c.Param("id"), req.Reason, req.Remarks)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orderId":     c.Param("id"),
		"status":      int(status),
		"statusLabel": status.CustomerLabel(),
	})
}

func (s *Server) handleCancelReasons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reasons": usecase.CancelReasons()})
}

func (s *Server) handlePaymentStatus(c *gin.Context) {
	sum, err := s.orders.PaymentStatus(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

type verifyReq struct {
	ExternalRef string `json:"externalRef"`
	PaymentID   string `json:"gatewayPaymentId"`
	Signature   string `json:"signature"`
}

func (s *Server) handleVerifyPayment(c *gin.Context) {
	var req verifyReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ExternalRef == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "BAD_REQUEST", "message": "externalRef required"})
		return
	}
	err := s.orders.VerifyGatewayPayment(c.Request.Context(), req.ExternalRef, usecase.GatewayProof{
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}

type refundReq struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
}

func (s *Server) handleRefund(c *gin.Context) {
	var req refundReq
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" || req.PaymentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "BAD_REQUEST", "message": "orderId and paymentId required"})
		return
	}
	if err := s.orders.RefundLeg(req.OrderID, req.PaymentID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refunded": true})
}

type promotionReq struct {
	Code  string            `json:"code"`
	Items []domain.CartItem `json:"items"`
}

func (s *Server) handleCalculatePromotion(c *gin.Context) {
	var req promotionReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "BAD_REQUEST", "message": "code and items required"})
		return
	}
	res, err := s.promos.Calculate(req.Code, req.Items)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type razorpayWebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

func (s *Server) handleRazorpayWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "BAD_REQUEST"})
		return
	}
	if err := s.razorpay.VerifyWebhook(body, c.GetHeader("X-Razorpay-Signature")); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "INVALID_SIGNATURE"})
		return
	}
	var ev razorpayWebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "BAD_REQUEST"})
		return
	}
	entity := ev.Payload.Payment.Entity
	if entity.OrderID == "" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	status := domain.PaymentPending
	switch ev.Event {
	case "payment.captured":
		status = domain.PaymentCompleted
	case "payment.failed":
		status = domain.PaymentFailed
	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if err := s.orders.ApplyGatewayWebhook(c.Request.Context(), entity.OrderID, entity.ID, status); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

type cashfreeWebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Order struct {
			OrderID string `json:"order_id"`
		} `json:"order"`
		Payment struct {
			CFPaymentID json.Number `json:"cf_payment_id"`
		} `json:"payment"`
	} `json:"data"`
}

// handleCashfreeWebhook trusts nothing in the payload: the event only names
// the order, and settlement re-verifies the status against the Cashfree API.
func (s *Server) handleCashfreeWebhook(c *gin.Context) {
	var ev cashfreeWebhookEvent
	if err := c.ShouldBindJSON(&ev); err != nil || ev.Data.Order.OrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "BAD_REQUEST"})
		return
	}
	if ev.Type != "PAYMENT_SUCCESS_WEBHOOK" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	err := s.orders.VerifyGatewayPayment(c.Request.Context(), ev.Data.Order.OrderID, usecase.GatewayProof{
		PaymentID: ev.Data.Payment.CFPaymentID.String(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

type statusCallbackReq struct {
	Status int `json:"status"`
}

func (s *Server) handleStatusCallback(c *gin.Context) {
	var req statusCallbackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "BAD_REQUEST", "message": "status required"})
		return
	}
	if err := s.orders.AdvanceStatus(c.Param("id"), domain.OrderStatus(req.Status)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": c.Param("id"), "status": req.Status})
}
