package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"swarajdesk/backend/internal/api/handler"
	"swarajdesk/backend/internal/complaint"
	"swarajdesk/backend/internal/config"
	"swarajdesk/backend/internal/database"
	"swarajdesk/backend/internal/logging"
	"swarajdesk/backend/internal/models"
	"swarajdesk/backend/internal/storage"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const usage = `Usage: admin <command> [args]

Commands:
  migrate
  seed-categories
  create-admin <email> <name> <password> <accessLevel> [municipality]
  create-user <email> <name> <password> [district] [city]
  issue-token <id> <accessLevel> [hours]
  assign <complaintId>
  status <complaintId> <STATUS|escalate>
  recount-upvotes <complaintId>`

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func need(n int, form string) {
	if len(os.Args) < n {
		fail("Usage: admin %s", form)
	}
}

func arg(i int) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return ""
}

func main() {
	if len(os.Args) < 2 {
		fail("%s", usage)
	}

	cfg, err := config.Load()
	if err != nil {
		fail("invalid configuration: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.Environment)

	if os.Args[1] == "issue-token" {
		need(4, "issue-token <id> <accessLevel> [hours]")
		issueToken(cfg)
		return
	}

	db, err := database.Connect(cfg, log)
	if err != nil {
		fail("failed to connect database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	// No Redis: the CLI neither relays live updates nor shares the token cache.
	svc := complaint.NewService(storage.NewStorageService(db, nil),
		complaint.WithWorkloadCap(cfg.AssignmentWorkloadCap),
		complaint.WithLogger(log.Level(zerolog.WarnLevel)),
	)
	ctx := context.Background()

	switch os.Args[1] {
	case "migrate":
		migrate(db)
	case "seed-categories":
		seedCategories(ctx, svc)
	case "create-admin":
		need(6, "create-admin <email> <name> <password> <accessLevel> [municipality]")
		admin, err := svc.CreateAdmin(ctx, complaint.AdminInput{
			Email:        arg(2),
			FullName:     arg(3),
			Password:     arg(4),
			AccessLevel:  models.AccessLevel(strings.ToUpper(arg(5))),
			Municipality: arg(6),
		})
		if err != nil {
			fail("Error creating admin: %v", describe(err))
		}
		fmt.Printf("Admin %s created with id %s.\n", admin.Email, admin.ID)
	case "create-user":
		need(5, "create-user <email> <name> <password> [district] [city]")
		user, err := svc.CreateUser(ctx, complaint.UserInput{
			Email:    arg(2),
			Name:     arg(3),
			Password: arg(4),
			District: arg(5),
			City:     arg(6),
		})
		if err != nil {
			fail("Error creating user: %v", describe(err))
		}
		fmt.Printf("User %s created with id %s.\n", user.Email, user.ID)
	case "assign":
		need(3, "assign <complaintId>")
		res, err := svc.AssignAgent(ctx, arg(2), models.Actor{})
		if err != nil {
			fail("Error assigning complaint: %v", describe(err))
		}
		fmt.Printf("Complaint %s assigned to %s (%s), workload %d/%d.\n",
			res.Complaint.ID, res.Agent.FullName, res.Agent.ID, res.Agent.CurrentWorkload, res.Agent.WorkloadLimit)
	case "status":
		need(4, "status <complaintId> <STATUS|escalate>")
		req := complaint.StatusRequest{Status: models.ComplaintStatus(strings.ToUpper(arg(3)))}
		if strings.EqualFold(arg(3), "escalate") {
			req = complaint.StatusRequest{Escalate: true}
		}
		change, err := svc.UpdateStatus(ctx, arg(2), req, models.Actor{})
		if err != nil {
			fail("Error updating status: %v", describe(err))
		}
		fmt.Printf("Complaint %s moved from %s to %s.\n", change.Complaint.ID, change.Previous, change.Complaint.Status)
	case "recount-upvotes":
		need(3, "recount-upvotes <complaintId>")
		n, err := svc.RecountUpvotes(ctx, arg(2))
		if err != nil {
			fail("Error recounting upvotes: %v", describe(err))
		}
		fmt.Printf("Complaint %s has %d upvotes.\n", arg(2), n)
	default:
		fail("Unknown command %q\n\n%s", os.Args[1], usage)
	}
}

func migrate(db *gorm.DB) {
	if err := database.AutoMigrate(db); err != nil {
		fail("Error running migrations: %v", err)
	}
	fmt.Println("Migrations complete.")
}

func seedCategories(ctx context.Context, svc *complaint.Service) {
	names := make([]string, 0, len(config.DefaultCategories))
	for name := range config.DefaultCategories {
		names = append(names, name)
	}
	sort.Strings(names)

	created := 0
	for _, name := range names {
		_, err := svc.CreateCategory(ctx, complaint.CategoryInput{Name: name, AssignedDepartment: config.DefaultCategories[name]})
		if err != nil {
			if complaint.KindOf(err) == complaint.KindConflict {
				continue
			}
			fail("Error seeding %s: %v", name, describe(err))
		}
		created++
	}
	fmt.Printf("Seeded %d of %d categories.\n", created, len(names))
}

func issueToken(cfg *config.Config) {
	ttl := config.DefaultTokenTTL
	if raw := arg(4); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			fail("Invalid duration. Please provide a positive number of hours.")
		}
		ttl = time.Duration(hours) * time.Hour
	}

	tok, err := handler.NewAuthenticator(cfg.JWTSecret, ttl).
		IssueToken(arg(2), models.AccessLevel(strings.ToUpper(arg(3))))
	if err != nil {
		fail("Error issuing token: %v", err)
	}
	fmt.Println(tok)
}

// describe appends field details of validation errors.
func describe(err error) string {
	var derr *complaint.Error
	if !errors.As(err, &derr) {
		return err.Error()
	}
	details, ok := derr.Details.([]complaint.FieldError)
	if !ok || len(details) == 0 {
		return derr.Error()
	}
	parts := make([]string, len(details))
	for i, d := range details {
		parts[i] = d.Field + " " + d.Message
	}
	return derr.Error() + " (" + strings.Join(parts, "; ") + ")"
}
