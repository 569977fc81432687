package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/shopspring/decimal"

	"oms-backend/internal/config"
	"oms-backend/internal/domain"
	"oms-backend/internal/env"
	"oms-backend/internal/infrastructure/cashfree"
	"oms-backend/internal/infrastructure/potions"
	"oms-backend/internal/infrastructure/razorpay"
	"oms-backend/internal/infrastructure/repo"
	"oms-backend/internal/infrastructure/wallet"
	"oms-backend/internal/server"
	"oms-backend/internal/usecase"
)

// Store is the persistence surface the service needs; both the in-memory
// and the postgres implementation satisfy it.
type Store interface {
	usecase.OrderRepo
	usecase.PaymentRepo
	usecase.PromotionRepo
}

func main() {
	env.Load(".env", ".env.local")
	envDefaults := config.EnvDefaults()

	envName := flag.String("env", envDefaults.Env, "")
	port := flag.Int("port", envDefaults.Port, "")
	dsn := flag.String("postgres-dsn", envDefaults.PostgresDSN, "")
	jwtSecret := flag.String("jwt-secret", envDefaults.JWTSecret, "")
	logJSON := flag.Bool("log-json", envDefaults.LogJSON, "")
	flag.Parse()

	cfg := envDefaults
	cfg.Env = *envName
	cfg.Port = *port
	cfg.PostgresDSN = *dsn
	cfg.JWTSecret = *jwtSecret
	cfg.LogJSON = *logJSON

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, nil)
	if cfg.LogJSON {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	log := slog.New(handler)
	slog.SetDefault(log)

	var store Store
	if cfg.PostgresDSN != "" {
		pg, err := repo.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		store = pg
	} else {
		mem := repo.NewMemoryStore()
		seedDemoPromotions(mem)
		store = mem
	}

	rzp := &razorpay.Client{
		BaseURL:       cfg.RazorpayBaseURL,
		KeyID:         cfg.RazorpayKeyID,
		KeySecret:     cfg.RazorpayKeySecret,
		WebhookSecret: cfg.RazorpayWebhookSecret,
	}
	cf := &cashfree.Client{
		BaseURL:   cfg.CashfreeBaseURL,
		AppID:     cfg.CashfreeAppID,
		SecretKey: cfg.CashfreeSecretKey,
	}
	wal := &wallet.Client{BaseURL: cfg.WalletURL, APIKey: cfg.WalletAPIKey}

	orders := &usecase.OrderService{
		Orders:   store,
		Payments: store,
		Gateways: map[domain.PaymentMode]usecase.GatewayAdapter{
			domain.ModeRazorpay: rzp,
			domain.ModeCashfree: cf,
		},
		Wallet: wal,
		Log:    log,
	}
	orders.Sync = &potions.Syncer{
		BaseURL: cfg.PotionsURL,
		APIKey:  cfg.PotionsAPIKey,
		Source:  store,
		Status:  orders,
		Log:     log,
	}
	promos := &usecase.PromotionEngine{Promotions: store}

	srv := server.New(cfg, orders, promos, rzp)
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info("oms backend listening", "addr", addr, "env", cfg.Env, "store", storeKind(cfg))
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func storeKind(cfg config.Config) string {
	if cfg.PostgresDSN != "" {
		return "postgres"
	}
	return "memory"
}

func seedDemoPromotions(mem *repo.MemoryStore) {
	mem.SeedPromotion(&domain.Promotion{
		Code:                 "GROCERY50",
		OfferType:            domain.OfferCoupon,
		OfferSubType:         domain.SubTypeFlat,
		DiscountAmount:       decimal.NewFromInt(50),
		MinPurchase:          decimal.NewFromInt(200),
		ApplicableCategories: []string{"Grocery"},
		Active:               true,
	})
	mem.SeedPromotion(&domain.Promotion{
		Code:               "SAVE10",
		OfferType:          domain.OfferCoupon,
		OfferSubType:       domain.SubTypePercentage,
		DiscountPercentage: decimal.NewFromInt(10),
		MaxDiscount:        decimal.NewFromInt(100),
		MinPurchase:        decimal.NewFromInt(500),
		Active:             true,
	})
}
