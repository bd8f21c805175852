// Command boxtoken prints a fresh Box access token for the configured JWT
// app, for poking at the Box API with curl while debugging roster issues.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/oncallrota/rota-api-go/pkg/boxstore"
)

func main() {
	// Load .env from project root
	_ = godotenv.Load("../.env")
	_ = godotenv.Load(".env")

	cfgPath := os.Getenv("BOX_CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "box_config.json"
	}

	cfg, err := boxstore.LoadConfig(cfgPath)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	fileID := os.Getenv("BOX_FILE_ID")
	if fileID == "" {
		fileID = "unused"
	}

	client, err := boxstore.NewClient(cfg, fileID, zerolog.Nop())
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	token, err := client.AccessToken(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	fmt.Printf("Access token for client %s:\n%s\n", cfg.BoxAppSettings.ClientID, token)
}
