package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"folio"
)

func main() {
	// .env.local wins over .env; real environment variables win over both
	// because godotenv never overwrites what is already set.
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "folio.yaml"
	}
	cfg, err := folio.LoadConfig(path)
	if err != nil {
		log.Fatal(err)
	}

	app := folio.New(cfg)
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
