package main

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/edushare/auth/adapters/directory"
	"github.com/edushare/auth/adapters/email"
	"github.com/edushare/auth/adapters/events"
	"github.com/edushare/auth/adapters/hasher"
	"github.com/edushare/auth/adapters/store"
	"github.com/edushare/auth/adapters/tokenizer"
	"github.com/edushare/auth/internal/config"
	"github.com/edushare/auth/ports"
	"github.com/edushare/auth/service"
	transport "github.com/edushare/auth/transport/http"
)

func main() {
	cfg := config.Load()

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to parse redis URL: %v", err)
	}
	redisClient := redis.NewClient(opts)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: redisClient},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		log.Fatalf("failed to create event publisher: %v", err)
	}

	jwtTokenizer, err := tokenizer.NewJWTTokenizer([]byte(cfg.JWTSecret), cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		log.Fatalf("failed to create tokenizer: %v", err)
	}

	passwordHasher, err := hasher.NewBcrypt(cfg.BcryptCost, cfg.HasherWorkers)
	if err != nil {
		log.Fatalf("failed to create password hasher: %v", err)
	}

	var sender ports.EmailSender
	if cfg.SMTPHost != "" {
		sender = email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		log.Println("SMTP_HOST not set, OTP codes will be written to the log")
		sender = email.NewLogSender()
	}

	kv := store.NewRedisStore(redisClient)
	sessions := service.NewSessionService(kv, jwtTokenizer, cfg.AccessTTL, cfg.RefreshTTL)
	otp := service.NewOtpService(kv, cfg.OtpTTL)
	limiter := service.NewRateLimiter(kv, cfg.CooldownWindow)

	auth := service.NewAuthService(
		directory.NewMemoryDirectory(),
		passwordHasher,
		jwtTokenizer,
		sessions,
		otp,
		sender,
		events.NewWatermillPublisher(publisher),
	)

	router := transport.SetupRouter(auth, sessions, limiter, cfg.RateLimits)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
