// Package seed creates demo data for local development and tests.
package seed

import (
	"fmt"
	"time"

	"github.com/ureca-react-blog/Backend/internal/models"
	"github.com/ureca-react-blog/Backend/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoUsername is always created so there is a known account to log in with.
const DemoUsername = "demo"

// Options controls how much data Run creates.
type Options struct {
	Users        int
	PostsPerUser int
	Password     string
	BcryptCost   int
	// MaxDays spreads post creation times over this many past days.
	MaxDays int
}

// Seeder writes fake users and posts.
type Seeder struct {
	db   *gorm.DB
	opts Options
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.Password == "" {
		opts.Password = "password123"
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}
	return &Seeder{db: db, opts: opts}
}

// ClearAll deletes every post and user.
func (s *Seeder) ClearAll() error {
	tx := s.db.Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := tx.Delete(&models.Post{}).Error; err != nil {
		return fmt.Errorf("clear posts: %w", err)
	}
	if err := tx.Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	return nil
}

// Run creates the demo user plus opts.Users random users, each with
// opts.PostsPerUser posts. All users share opts.Password.
func (s *Seeder) Run() ([]models.User, []models.Post, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(s.opts.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash seed password: %w", err)
	}

	users := make([]models.User, 0, s.opts.Users+1)
	users = append(users, models.User{Username: DemoUsername, Password: string(hash)})
	for i := 0; i < s.opts.Users; i++ {
		users = append(users, models.User{Username: fakeUsername(i), Password: string(hash)})
	}
	if err := s.db.CreateInBatches(&users, 100).Error; err != nil {
		return nil, nil, fmt.Errorf("create users: %w", err)
	}

	posts := make([]models.Post, 0, len(users)*s.opts.PostsPerUser)
	for _, u := range users {
		for j := 0; j < s.opts.PostsPerUser; j++ {
			posts = append(posts, s.buildPost(u.Username))
		}
	}
	if len(posts) > 0 {
		if err := s.db.CreateInBatches(&posts, 100).Error; err != nil {
			return nil, nil, fmt.Errorf("create posts: %w", err)
		}
	}

	return users, posts, nil
}

func (s *Seeder) buildPost(author string) models.Post {
	age := time.Duration(gofakeit.Number(0, s.opts.MaxDays*24*60)) * time.Minute
	return models.Post{
		Title:     gofakeit.Sentence(5),
		Summary:   gofakeit.Sentence(12),
		Content:   fmt.Sprintf("<p>%s</p>", gofakeit.Paragraph(2, 4, 10, "</p><p>")),
		Author:    author,
		CreatedAt: time.Now().Add(-age),
	}
}

// fakeUsername is unique per index and always passes ValidateUsername.
func fakeUsername(i int) string {
	suffix := fmt.Sprintf("%d", i)
	name := gofakeit.Username()
	if limit := validation.MaxUsernameLength - len(suffix); len(name) > limit {
		name = name[:limit]
	}
	return name + suffix
}
