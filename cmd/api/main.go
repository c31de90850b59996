package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-auth-gate/internal/config"
	"github.com/go-auth-gate/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-auth-gate/internal/infrastructure/jwt"
	s3infra "github.com/go-auth-gate/internal/infrastructure/s3"
	"github.com/go-auth-gate/internal/infrastructure/smtp"
	"github.com/go-auth-gate/internal/infrastructure/sns"
	transporthttp "github.com/go-auth-gate/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Token signing is load-bearing for every authenticated flow; a server
	// without it would accept verifications it cannot finish, so refuse to start.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	// S3 store for audit exports.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3AuditBucket)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS security alerter (optional — promotions just go unalerted without it).
	var alerter sns.SecurityAlerter
	if cfg.SNSAlertTopicARN != "" {
		if a, err := sns.NewAlerter(cfg); err == nil {
			alerter = a
		} else {
			log.Printf("WARN: SNS alerter not available: %v", err)
		}
	}

	deps := &transporthttp.Deps{
		ProfileRepo: dynamo.NewProfileRepo(dynamoClient, cfg.DynamoTables.Profiles),
		SessionRepo: dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		CodeRepo:    dynamo.NewCodeRepo(dynamoClient, cfg.DynamoTables.VerificationCodes),
		PendingRepo: dynamo.NewPendingAuthRepo(dynamoClient, cfg.DynamoTables.PendingAuth),
		BanRepo:     dynamo.NewBanRepo(dynamoClient, cfg.DynamoTables.BannedIPs, cfg.DynamoTables.BannedEmails),
		RoleRepo:    dynamo.NewRoleRepo(dynamoClient, cfg.DynamoTables.UserRoles),
		AuditRepo:   dynamo.NewAuditRepo(dynamoClient, cfg.DynamoTables.AuditLogs),
		S3Store:     s3Store,
		Mailer:      mailer,
		Alerter:     alerter,
		JWTProvider: jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
