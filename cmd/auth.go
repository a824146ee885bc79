package main

import (
	"context"
	"fmt"

	"github.com/teimsafety/ppectl/internal/models"
	"github.com/teimsafety/ppectl/internal/repositories"
	"github.com/teimsafety/ppectl/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin checks credentials against the service and stores the session
// locally on success.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.StringArg("email")
	if email == "" {
		return fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}

	message, err := r.auth.Login(ctx, email, cmd.String("password"))
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewSessionRepository(db)
	if err := repo.DeleteAll(); err != nil {
		return err
	}

	session := models.NewSession(0, email, "")
	if err := repo.Create(session); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	r.logger.Infof("logged in as %s", email)
	return r.writePlain("✓ %s\n", message)
}

// AuthSignup registers a new operator account.
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	email := cmd.StringArg("email")
	if email == "" {
		return fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}

	message, err := r.auth.Signup(ctx, cmd.String("name"), email, cmd.String("password"))
	if err != nil {
		return err
	}

	return r.writePlain("✓ %s\n", message)
}

// AuthLogout clears every stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewSessionRepository(db)
	if err := repo.DeleteAll(); err != nil {
		return err
	}

	return r.writePlain("✓ Logged out\n")
}

// AuthStatus shows who is currently logged in.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewSessionRepository(db)
	session, err := repo.Current()
	if err != nil {
		return r.writePlain("Not logged in\n")
	}

	return r.writePlain("Logged in as %s (since %s)\n", session.Email(), session.CreatedAt().Format("2006-01-02 15:04"))
}
