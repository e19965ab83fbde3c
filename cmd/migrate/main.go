package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"chat-messages/internal/config"
	"chat-messages/internal/domain/message"
	"chat-messages/internal/redis"
	"chat-messages/internal/repository"
	"chat-messages/internal/services"
	"chat-messages/internal/store"
	"chat-messages/pkg/database"
)

const usage = `
Chat Messages - Store CLI Tool

Usage:
  migrate [flags] [command]

Commands:
  up          Create indexes (mongo) or the messages table (postgres)
  status      Show store connection status
  seed-dev    Seed with development data
  truncate    Remove every message (DANGEROUS)
  token       Print an access token for -user
  reset-limit Clear the message rate limit window of -user

Flags:
  -user string            Object id for token and reset-limit
  -conversations int      Conversations to seed (default 3)
  -messages int           Messages per seeded conversation (default 10)

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed-dev
  go run cmd/migrate/main.go -user 5fe0cce861c8ea54018385af token
  go run cmd/migrate/main.go -user 5fe0cce861c8ea54018385af reset-limit
`

func main() {
	userHex := flag.String("user", "", "Object id for token and reset-limit")
	conversations := flag.Int("conversations", 3, "Conversations to seed")
	messages := flag.Int("messages", 10, "Messages per seeded conversation")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	cfg := config.LoadConfig()

	switch command {
	case "token":
		runToken(cfg, *userHex)
		return
	case "reset-limit":
		runResetLimit(cfg, *userHex)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	handle, err := store.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to open %s store: %v", cfg.Database.Driver, err)
	}
	defer func() { _ = handle.Close(context.Background()) }()

	data := repository.NewMessageData(handle.Collection)

	switch command {
	case "up":
		runUp(ctx, handle)
	case "status":
		showStatus(ctx, handle, data)
	case "seed-dev":
		runSeedDevelopment(ctx, data, &database.SeedConfig{
			Conversations:           *conversations,
			MessagesPerConversation: *messages,
			Senders:                 database.DefaultSeedConfig().Senders,
		})
	case "truncate":
		runTruncate(ctx, data)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runUp(ctx context.Context, handle *store.Handle) {
	log.Printf("🚀 Preparing %s store...", handle.Driver)

	if err := handle.Migrate(ctx); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ Store ready!")
}

func showStatus(ctx context.Context, handle *store.Handle, data *repository.MessageData) {
	log.Printf("🔍 Checking %s store status...", handle.Driver)

	if err := data.Ping(ctx); err != nil {
		log.Fatalf("❌ Store connection failed: %v", err)
	}
	log.Println("✅ Store connection: OK")
}

func runSeedDevelopment(ctx context.Context, data *repository.MessageData, seedCfg *database.SeedConfig) {
	log.Println("🌱 Seeding store (development mode)...")

	result, err := database.Seed(ctx, data, seedCfg)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("📊 Seed Summary:")
	log.Printf("   - Senders: %d", len(result.SenderIDs))
	log.Printf("   - Conversations: %d", len(result.ConversationIDs))
	log.Printf("   - Messages: %d", len(result.Messages))
	for _, id := range result.ConversationIDs {
		log.Printf("   - Conversation %s", id.Hex())
	}
	log.Println("✅ Development seeding completed!")
}

func runTruncate(ctx context.Context, data *repository.MessageData) {
	log.Println("⚠️  WARNING: This will remove ALL messages!")

	n, err := data.DeleteMany(ctx)
	if err != nil {
		log.Fatalf("❌ Truncate failed: %v", err)
	}

	log.Printf("✅ Removed %d messages!", n)
}

func runToken(cfg *config.Config, userHex string) {
	userID, err := message.ParseID(userHex)
	if err != nil {
		log.Fatalf("❌ -user must be an object id: %v", err)
	}

	token, err := services.NewAuthService(cfg.Auth.JWTSecret).IssueAccessToken(userID)
	if err != nil {
		log.Fatalf("❌ Failed to sign token: %v", err)
	}
	fmt.Println(token)
}

func runResetLimit(cfg *config.Config, userHex string) {
	userID, err := message.ParseID(userHex)
	if err != nil {
		log.Fatalf("❌ -user must be an object id: %v", err)
	}

	client := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	limiter := redis.NewRateLimiter(client, redis.RateLimitConfig{
		MessageLimit:  cfg.Redis.RateLimitMessages,
		MessageWindow: cfg.Redis.RateLimitWindow,
	})
	if err := limiter.ResetUser(ctx, userID.Hex()); err != nil {
		log.Fatalf("❌ Failed to reset rate limit: %v", err)
	}
	log.Printf("✅ Rate limit window cleared for %s", userID.Hex())
}
