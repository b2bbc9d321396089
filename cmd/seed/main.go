// Command main runs the database seeder for the food sharing backend.
package main

import (
	"flag"
	"log"

	"foodshare/internal/config"
	"foodshare/internal/database"
	"foodshare/internal/seed"
)

func main() {
	numDonors := flag.Int("donors", 10, "Number of donors to create")
	numItems := flag.Int("items", 40, "Number of food items to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d donors, %d items, clean=%v\n", *numDonors, *numItems, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)
	if err := s.Run(seed.Options{
		NumDonors:   *numDonors,
		NumItems:    *numItems,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
