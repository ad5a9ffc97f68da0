package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	JWTSecret string

	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppNumber string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ No .env file found, using system ENV")
		} else {
			log.Println("✅ .env file loaded")
		}
	} else {
		log.Println("🚀 Running on Railway, using system ENV")
	}

	JWTSecret = GetEnv("JWT_SECRET")

	TwilioAccountSID = GetEnv("TWILIO_ACCOUNT_SID")
	TwilioAuthToken = GetEnv("TWILIO_AUTH_TOKEN")
	TwilioWhatsAppNumber = GetEnv("TWILIO_WHATSAPP_NUMBER")

	VAPIDPublicKey = GetEnv("VAPID_PUBLIC_KEY")
	VAPIDPrivateKey = GetEnv("VAPID_PRIVATE_KEY")
	VAPIDSubscriber = GetEnv("VAPID_SUBSCRIBER", "mailto:admin@msec.edu.in")

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET is not set!")
	}
	if TwilioAccountSID == "" || TwilioAuthToken == "" {
		log.Println("⚠️ Twilio credentials missing, WhatsApp dispatch will fail")
	}
	if VAPIDPublicKey == "" || VAPIDPrivateKey == "" {
		log.Println("⚠️ VAPID keys missing, web push disabled")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func GetEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	default:
		return false
	}
}

func GetEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
