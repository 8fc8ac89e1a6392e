package main

import (
	"chat-relay/auth"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	AuthSecret string `env:"AUTH_SECRET,required=true"`
}

// Prints a relay token for the given username, signed with AUTH_SECRET.
func main() {
	username := flag.String("username", "", "Name carried by the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if *username == "" {
		log.Fatal("-username is required")
	}

	token, err := auth.GenerateToken([]byte(config.AuthSecret), *username, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
