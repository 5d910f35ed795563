// Command main fills the database with demo users and posts.
package main

import (
	"flag"
	"log"

	"github.com/ureca-react-blog/Backend/internal/config"
	"github.com/ureca-react-blog/Backend/internal/database"
	"github.com/ureca-react-blog/Backend/internal/middleware"
	"github.com/ureca-react-blog/Backend/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create besides the demo user")
	postsPerUser := flag.Int("posts", 3, "Number of posts per user")
	shouldClean := flag.Bool("clean", false, "Delete all users and posts before seeding")
	password := flag.String("password", "password123", "Password shared by every seeded user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}
	middleware.ConfigureLogger(false)

	db, err := database.Connect(cfg, middleware.Logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	s := seed.NewSeeder(db, seed.Options{
		Users:        *numUsers,
		PostsPerUser: *postsPerUser,
		Password:     *password,
		BcryptCost:   cfg.BcryptCost,
	})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	users, posts, err := s.Run()
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users and %d posts", len(users), len(posts))
	log.Printf("Log in as %q with password %q", seed.DemoUsername, *password)
}
