// Command server runs the board-game catalog API.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/simp-lee/bglist/internal/app"
	"github.com/simp-lee/bglist/internal/config"
)

func main() {
	defaultPath := "configs/config.yaml"
	if p := os.Getenv("BGLIST_CONFIG"); p != "" {
		defaultPath = p
	}
	configPath := flag.String("config", defaultPath, "path to configuration file (env BGLIST_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config %s: %v", *configPath, err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("create app: %v", err)
	}

	if err := a.Run(); err != nil {
		log.Fatalf("run: %v", err)
	}
}
