//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/hugh/team-hub/internal/access"
	"github.com/hugh/team-hub/internal/auth"
	"github.com/hugh/team-hub/internal/board"
	"github.com/hugh/team-hub/internal/database"
	"github.com/hugh/team-hub/internal/database/models"
	"github.com/hugh/team-hub/internal/project"
	"github.com/hugh/team-hub/internal/workspace"
	"github.com/hugh/team-hub/pkg/config"
	"github.com/hugh/team-hub/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService)

	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	name := os.Getenv("SEED_NAME")

	if email == "" {
		email = "demo@example.com"
	}
	if password == "" {
		password = "demo1234!"
	}
	if name == "" {
		name = "Demo User"
	}

	ctx := context.Background()

	resp, err := authService.Register(ctx, auth.RegisterInput{
		Email:       email,
		Password:    password,
		DisplayName: name,
	})
	if err != nil {
		if err == auth.ErrUserExists {
			fmt.Printf("Demo user already exists: %s\n", email)
			return
		}
		log.Fatalf("failed to create demo user: %v", err)
	}

	resolver := access.NewResolver(db)
	workspaceService := workspace.NewService(db, resolver)
	projectService := project.NewService(db, resolver)
	boardService := board.NewService(db, resolver)

	ws, err := workspaceService.Create(ctx, resp.User.ID, workspace.CreateInput{
		Name:        "Demo Workspace",
		Description: "A workspace to explore Team Hub",
	})
	if err != nil {
		log.Fatalf("failed to create demo workspace: %v", err)
	}

	proj, err := projectService.Create(ctx, resp.User.ID, project.CreateInput{
		WorkspaceID: ws.ID,
		Name:        "Getting Started",
		Description: "Sample project with a few tasks",
	})
	if err != nil {
		log.Fatalf("failed to create demo project: %v", err)
	}

	tasks := []board.CreateTaskInput{
		{ProjectID: proj.ID, Title: "Invite your team", Status: models.TaskStatusTodo, Priority: models.TaskPriorityHigh},
		{ProjectID: proj.ID, Title: "Create your first project", Status: models.TaskStatusInProgress, Priority: models.TaskPriorityMedium},
		{ProjectID: proj.ID, Title: "Explore the dashboard", Status: models.TaskStatusDone, Priority: models.TaskPriorityLow},
	}
	for _, input := range tasks {
		if _, err := boardService.CreateTask(ctx, resp.User.ID, input); err != nil {
			log.Fatalf("failed to create demo task: %v", err)
		}
	}

	fmt.Printf("Demo user created successfully!\n")
	fmt.Printf("Email: %s\n", resp.User.Email)
	fmt.Printf("Workspace: %s\n", ws.Name)
	fmt.Printf("Token: %s\n", resp.Token)
}
