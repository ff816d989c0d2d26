package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/mrjaketay/timeApp-sub001/internal/config"
	"github.com/mrjaketay/timeApp-sub001/internal/database"
	"github.com/mrjaketay/timeApp-sub001/internal/migrate"
)

func main() {
	log.SetFlags(0)
	envFile := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|down|status]")
	}

	config.LoadDotEnv(*envFile)
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	mgr := migrate.NewManager(db, migrate.Files())

	switch flag.Arg(0) {
	case "up":
		var applied []string
		applied, err = mgr.Up(ctx)
		for _, name := range applied {
			fmt.Println("applied", name)
		}
	case "down":
		var name string
		name, err = mgr.Down(ctx)
		if err == nil {
			fmt.Println("rolled back", name)
		}
	case "status":
		var history []string
		history, err = mgr.Status(ctx)
		if err == nil {
			for _, item := range history {
				fmt.Println(item)
			}
		}
	default:
		log.Fatalf("unknown command %q", flag.Arg(0))
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}
