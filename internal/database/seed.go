package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"folio/internal/models"
	"folio/internal/slug"
)

// Admin describes the account created when the users table is empty.
type Admin struct {
	Email    string
	Password string
	Name     string
}

type seedTag struct {
	ID, Name, Color string
}

type seedPost struct {
	Title, Slug, Excerpt, Content, Category, HeroImage string
	Featured                                           bool
	PublishedAt                                        string
	ReadingTime                                        string
	Views                                              int
	Tags                                               []seedTag
}

type seedProject struct {
	ID, Name, Description, Link, Image string
	TechStack                          []string
	SortOrder                          int
}

var seedCategories = []string{"Mobile", "Apple", "Projects", "Reflections"}

var seedPosts = []seedPost{
	{
		Title:       "Designing VenueVent: an iOS-first experience for seamless venue discovery",
		Slug:        "designing-venuevent-ios-experience",
		Excerpt:     "How Apple-inspired interaction design and pragmatic engineering shaped VenueVent, a venue finder tailored for event planners.",
		Content:     "# VenueVent\n\nA deep dive into product thinking, architecture decisions, and launch lessons.",
		Category:    "Projects",
		HeroImage:   "https://images.unsplash.com/photo-1618005198919-d3d4b5a92eee?auto=format&fit=crop&w=1200&q=80",
		Featured:    true,
		PublishedAt: "2025-01-15T08:00:00.000Z",
		ReadingTime: "6 min read",
		Views:       1250,
		Tags: []seedTag{
			{"swiftui", "SwiftUI", "#D8B4FE"},
			{"ios-design", "iOS Design", "#F9A8D4"},
		},
	},
	{
		Title:       "Refining CI/CD for multi-platform mobile apps",
		Slug:        "refining-ci-cd-mobile-apps",
		Excerpt:     "Lessons from orchestrating pipelines across iOS, Android, and Flutter using fastlane and GitHub Actions.",
		Content:     "# CI/CD\n\nA playbook for multi-platform automation.",
		Category:    "Reflections",
		HeroImage:   "https://images.unsplash.com/photo-1498050108023-c5249f4df085?auto=format&fit=crop&w=1200&q=80",
		PublishedAt: "2024-12-05T08:00:00.000Z",
		ReadingTime: "8 min read",
		Views:       980,
		Tags: []seedTag{
			{"ci-cd", "CI/CD", "#C7D2FE"},
			{"mobile-devops", "Mobile DevOps", "#BBF7D0"},
		},
	},
	{
		Title:       "Aztlan: scaling a React Native booking app",
		Slug:        "aztlan-scaling-react-native-booking-app",
		Excerpt:     "Architecting an offline-capable booking experience for cultural venues with React Native.",
		Content:     "# Aztlan\n\nArchitecture patterns, offline sync, and design decisions.",
		Category:    "Projects",
		HeroImage:   "https://images.unsplash.com/photo-1489515217757-5fd1be406fef?auto=format&fit=crop&w=1200&q=80",
		PublishedAt: "2024-11-20T08:00:00.000Z",
		ReadingTime: "5 min read",
		Views:       860,
		Tags: []seedTag{
			{"react-native", "React Native", "#BFDBFE"},
			{"architecture", "Architecture", "#FDE68A"},
		},
	},
	{
		Title:       "Inside my iOS testing stack",
		Slug:        "inside-ios-testing-stack",
		Excerpt:     "Snapshot testing, dependency injection, and guardrails that keep Apple platform releases calm.",
		Content:     "# Testing\n\nTooling and guardrails for confident releases.",
		Category:    "Apple",
		HeroImage:   "https://images.unsplash.com/photo-1580894894513-541e068a3e2b?auto=format&fit=crop&w=1200&q=80",
		PublishedAt: "2024-09-22T08:00:00.000Z",
		ReadingTime: "9 min read",
		Views:       1120,
		Tags: []seedTag{
			{"testing", "Testing", "#FEF9C3"},
			{"swift", "Swift", "#FECACA"},
		},
	},
}

var seedProjects = []seedProject{
	{
		ID:          "venuevent",
		Name:        "VenueVent iOS",
		Description: "A polished venue discovery app with intelligent recommendations and map-first exploration.",
		Link:        "https://apps.apple.com/us/app/",
		Image:       "https://images.unsplash.com/photo-1580894894513-541e068a3e2b?auto=format&fit=crop&w=900&q=80",
		TechStack:   []string{"SwiftUI", "MapKit", "CloudKit"},
		SortOrder:   0,
	},
	{
		ID:          "aztlan",
		Name:        "Aztlan Booking",
		Description: "React Native booking platform with offline access and multi-tenant admin tooling.",
		Link:        "https://github.com/alananaya",
		Image:       "https://images.unsplash.com/photo-1556740749-887f6717d7e4?auto=format&fit=crop&w=900&q=80",
		TechStack:   []string{"React Native", "TypeScript", "GraphQL"},
		SortOrder:   1,
	},
	{
		ID:          "terraza",
		Name:        "Terraza Los Palomos",
		Description: "Responsive marketing site with immersive imagery and refined booking funnels.",
		Link:        "https://terraza-los-palomos.com",
		Image:       "https://images.unsplash.com/photo-1521737604893-d14cc237f11d?auto=format&fit=crop&w=900&q=80",
		TechStack:   []string{"Next.js", "Tailwind", "SEO"},
		SortOrder:   2,
	},
}

// Seed populates an empty database with the admin account, the default
// categories, and sample posts and projects. Each group is only inserted
// when its table is empty, so Seed is safe to run on every boot.
func Seed(ctx context.Context, db *sql.DB, admin Admin) error {
	if err := seedAdmin(ctx, db, admin); err != nil {
		return err
	}
	if err := seedCategoryRows(ctx, db); err != nil {
		return err
	}
	return seedContent(ctx, db)
}

func count(ctx context.Context, db *sql.DB, table string) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("seed count %s: %w", table, err)
	}
	return n, nil
}

func seedAdmin(ctx context.Context, db *sql.DB, admin Admin) error {
	n, err := count(ctx, db, "users")
	if err != nil || n > 0 {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash) VALUES (?, ?, ?, ?)
	`, uuid.NewString(), admin.Name, admin.Email, string(hash))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with admin user", "email", admin.Email)
	return nil
}

func seedCategoryRows(ctx context.Context, db *sql.DB) error {
	n, err := count(ctx, db, "categories")
	if err != nil || n > 0 {
		return err
	}
	for _, name := range seedCategories {
		if _, err := db.ExecContext(ctx, `INSERT INTO categories (id, name) VALUES (?, ?)`,
			slug.Key(name), name); err != nil {
			return fmt.Errorf("seed insert category: %w", err)
		}
	}
	return nil
}

// seedContent inserts sample posts, their tags and the sample projects in a
// single transaction, and only when there are no posts yet.
func seedContent(ctx context.Context, db *sql.DB) error {
	n, err := count(ctx, db, "posts")
	if err != nil || n > 0 {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	stamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	for _, p := range seedPosts {
		id := models.NewID()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO posts (id, title, slug, excerpt, content, category, hero_image,
				is_published, featured, published_at, created_at, updated_at, reading_time, views)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?, ?, ?)
		`, id, p.Title, p.Slug, p.Excerpt, p.Content, p.Category, p.HeroImage,
			p.Featured, p.PublishedAt, stamp, stamp, p.ReadingTime, p.Views)
		if err != nil {
			return fmt.Errorf("seed insert post %s: %w", p.Slug, err)
		}

		for _, t := range p.Tags {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO tags (id, name, color) VALUES (?, ?, ?) ON CONFLICT DO NOTHING
			`, t.ID, t.Name, t.Color); err != nil {
				return fmt.Errorf("seed insert tag: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)
			`, id, t.ID); err != nil {
				return fmt.Errorf("seed link tag: %w", err)
			}
		}
	}

	for _, p := range seedProjects {
		stack, _ := json.Marshal(p.TechStack)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projects (id, name, description, link, image, tech_stack, status, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, 'active', ?) ON CONFLICT DO NOTHING
		`, p.ID, p.Name, p.Description, p.Link, p.Image, string(stack), p.SortOrder)
		if err != nil {
			return fmt.Errorf("seed insert project: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with sample content",
		"posts", len(seedPosts),
		"projects", len(seedProjects),
	)
	return nil
}
