package main

import (
	"context"
	"fmt"

	"mealbridge/internal/db"
	"mealbridge/internal/seed"
	"mealbridge/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with sample listings",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c.String("env-prefix"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		listingRepo := store.NewListingRepository(pool)

		logrus.Info("Seeding listings...")
		listings, err := seed.SeedListings(ctx, listingRepo)
		if err != nil {
			return fmt.Errorf("failed to seed listings: %w", err)
		}

		pp.Println(listings)
		logrus.WithField("count", len(listings)).Info("Listings seeded successfully")

		return nil
	},
}
