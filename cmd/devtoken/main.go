package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/lumiforge/mediavault-backend/internal/config"
	"github.com/lumiforge/mediavault-backend/internal/jwt"
)

// devtoken выпускает bearer токен тем же секретом, что и сервер (AUTH_JWT_SECRET)
func main() {
	userID := flag.String("user", "dev-user", "subject (user id) of the token")
	email := flag.String("email", "", "optional email claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	manager := jwt.NewManager(config.Load())
	if manager == nil {
		log.Fatal("AUTH_JWT_SECRET is not set")
	}

	token, err := manager.GenerateToken(*userID, *email, *ttl)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Println(token)
}
