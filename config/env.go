package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppEnv    string
	Port      string
	OriginURL string

	APIBaseURL     string
	RequestTimeout time.Duration
	SaveDebounce   time.Duration

	PaymentKeyID     string
	PaymentKeySecret string
	Currency         string
	ShippingFee      decimal.Decimal

	TokenStore string
	TokenFile  string
	RedisURL   string
	RedisAddr  string

	DatabaseURL string
	JWTSecret   string
	JWTExpiry   time.Duration

	UploadDir     string
	MaxUploadSize int64

	CloudinaryURL       string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	AdminEmail     string
	AdminPassword  string
	SeedMenu       bool
	LegacyCartOnly bool
}

var AppConfig *Config

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	maxUploadSize, _ := strconv.ParseInt(os.Getenv("MAX_UPLOAD_SIZE"), 10, 64)
	if maxUploadSize == 0 {
		maxUploadSize = 5242880
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		smtpPort = 587
	}

	shippingFee, err := decimal.NewFromString(getEnv("SHIPPING_FEE", "10"))
	if err != nil {
		log.Printf("Warning: invalid SHIPPING_FEE, using 10: %v", err)
		shippingFee = decimal.NewFromInt(10)
	}

	AppConfig = &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		Port:      getEnv("APP_PORT", getEnv("PORT", "4000")),
		OriginURL: os.Getenv("ORIGIN_URL"),

		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:4000"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 15*time.Second),
		SaveDebounce:   getDuration("SAVE_DEBOUNCE", 300*time.Millisecond),

		PaymentKeyID:     getEnv("PAYMENT_KEY_ID", "rzp_test_sandbox"),
		PaymentKeySecret: getEnv("PAYMENT_KEY_SECRET", "sandbox-secret"),
		Currency:         getEnv("CURRENCY", "INR"),
		ShippingFee:      shippingFee,

		TokenStore: getEnv("TOKEN_STORE", "file"),
		TokenFile:  getEnv("TOKEN_FILE", defaultTokenFile()),
		RedisURL:   os.Getenv("REDIS_URL"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		JWTExpiry:   getDuration("JWT_EXPIRY", 24*time.Hour),

		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadSize: maxUploadSize,

		CloudinaryURL:       os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: smtpPort,
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: getEnv("SMTP_FROM", "orders@food-ordering.local"),

		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		SeedMenu:       getBool("SEED_MENU", true),
		LegacyCartOnly: getBool("LEGACY_CART_ONLY", false),
	}

	return AppConfig
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid %s %q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid %s %q, using %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".food-ordering-token"
	}
	return dir + string(os.PathSeparator) + "food-ordering" + string(os.PathSeparator) + "token"
}
