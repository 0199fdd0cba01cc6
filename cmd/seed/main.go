package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mambaservices/storefront-backend/internal/accesscodes"
	"github.com/mambaservices/storefront-backend/pkg/config"
	"github.com/mambaservices/storefront-backend/pkg/db"
	"github.com/mambaservices/storefront-backend/pkg/logger"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	file := flag.String("file", "", "path to a file with one access code per line")
	obywatelCount := flag.Int("obywatel", 200, "number of leading codes assigned to the obywatel pool; the rest go to receipts")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "missing -file with access codes")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	codes, err := readCodes(*file)
	if err != nil {
		logg.Error(ctx, "failed to read codes file", err)
		os.Exit(1)
	}
	if len(codes) == 0 {
		fmt.Fprintln(os.Stderr, "codes file is empty")
		os.Exit(1)
	}

	var repo accesscodes.Repository
	if cfg.DB.UseMemory() {
		logg.Warn(ctx, "seeding in-memory storage, data will not survive restarts")
		repo = accesscodes.NewMemoryRepository()
	} else {
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to connect to database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(ctx, "error closing database", err)
			}
		}()
		repo = accesscodes.NewGormRepository(dbClient.DB())
	}

	service, err := accesscodes.NewService(accesscodes.ServiceParams{
		Repo:          repo,
		Logger:        logg,
		GeneratorLink: cfg.Fulfillment.GeneratorLink,
	})
	if err != nil {
		logg.Error(ctx, "failed to create access codes service", err)
		os.Exit(1)
	}

	inserted, err := service.Seed(ctx, codes, *obywatelCount)
	if err != nil {
		logg.Error(ctx, "seeding failed", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"total":    len(codes),
		"inserted": inserted,
		"obywatel": *obywatelCount,
	})
	logg.Info(ctx, "access code pool seeded")
	fmt.Printf("seeded %d of %d codes\n", inserted, len(codes))
}

// readCodes loads one code per line, skipping blanks and # comments.
func readCodes(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var codes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		codes = append(codes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}
