package config

import (
	"os"
	"strconv"
)

type Config struct {
	Env     string
	Port    int
	LogJSON bool

	// Empty DSN selects the in-memory store.
	PostgresDSN string

	JWTSecret string

	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string
	RazorpayBaseURL       string

	CashfreeAppID     string
	CashfreeSecretKey string
	CashfreeBaseURL   string

	WalletURL    string
	WalletAPIKey string

	PotionsURL    string
	PotionsAPIKey string
}

func Default() Config {
	return Config{
		Env:        "dev",
		Port:       8000,
		LogJSON:    true,
		WalletURL:  "http://127.0.0.1:8100",
		PotionsURL: "http://127.0.0.1:8200",
	}
}

func EnvDefaults() Config {
	return fromEnv(Default())
}

func fromEnv(c Config) Config {
	if v := os.Getenv("OMS_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("OMS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("OMS_LOG_JSON"); v != "" {
		switch v {
		case "1", "true", "TRUE":
			c.LogJSON = true
		case "0", "false", "FALSE":
			c.LogJSON = false
		}
	}
	if v := os.Getenv("OMS_POSTGRES_DSN"); v != "" {
		c.PostgresDSN = v
	}
	if v := os.Getenv("OMS_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("OMS_RAZORPAY_KEY_ID"); v != "" {
		c.RazorpayKeyID = v
	}
	if v := os.Getenv("OMS_RAZORPAY_KEY_SECRET"); v != "" {
		c.RazorpayKeySecret = v
	}
	if v := os.Getenv("OMS_RAZORPAY_WEBHOOK_SECRET"); v != "" {
		c.RazorpayWebhookSecret = v
	}
	if v := os.Getenv("OMS_RAZORPAY_BASE_URL"); v != "" {
		c.RazorpayBaseURL = v
	}
	if v := os.Getenv("OMS_CASHFREE_APP_ID"); v != "" {
		c.CashfreeAppID = v
	}
	if v := os.Getenv("OMS_CASHFREE_SECRET_KEY"); v != "" {
		c.CashfreeSecretKey = v
	}
	if v := os.Getenv("OMS_CASHFREE_BASE_URL"); v != "" {
		c.CashfreeBaseURL = v
	}
	if v := os.Getenv("OMS_WALLET_URL"); v != "" {
		c.WalletURL = v
	}
	if v := os.Getenv("OMS_WALLET_API_KEY"); v != "" {
		c.WalletAPIKey = v
	}
	if v := os.Getenv("OMS_POTIONS_URL"); v != "" {
		c.PotionsURL = v
	}
	if v := os.Getenv("OMS_POTIONS_API_KEY"); v != "" {
		c.PotionsAPIKey = v
	}
	return c
}
