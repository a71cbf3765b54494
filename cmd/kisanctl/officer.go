package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kisansense/internal/config"
	"kisansense/internal/db"
	"kisansense/internal/models"
)

type officerStore interface {
	ListOfficers(ctx context.Context) ([]models.Officer, error)
	UpdateOfficerRole(ctx context.Context, id uuid.UUID, role string) error
}

// openOfficerStore connects to the configured database. Tests replace it.
var openOfficerStore = func(ctx context.Context) (officerStore, func(), error) {
	cfg := config.Load()
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, database.Close, nil
}

func newOfficerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "officer",
		Short: "Manage officer console accounts",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List officers",
			Args:  cobra.NoArgs,
			RunE:  runOfficerList,
		},
		&cobra.Command{
			Use:   "promote <email|sub> <viewer|officer|admin>",
			Short: "Set an officer's role",
			Long:  "Officers sign in once through OIDC as viewers. Promote them here to let them resolve messages or receive admin mail.",
			Args:  cobra.ExactArgs(2),
			RunE:  runOfficerPromote,
		},
	)
	return cmd
}

func runOfficerList(cmd *cobra.Command, _ []string) error {
	store, closeStore, err := openOfficerStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	officers, err := store.ListOfficers(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEMAIL\tROLE\tSUB")
	for _, o := range officers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.Name, o.Email, o.Role, o.Sub)
	}
	return w.Flush()
}

func runOfficerPromote(cmd *cobra.Command, args []string) error {
	who, role := args[0], strings.ToLower(args[1])
	switch role {
	case models.RoleViewer, models.RoleOfficer, models.RoleAdmin:
	default:
		return fmt.Errorf("unknown role %q", args[1])
	}

	store, closeStore, err := openOfficerStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	officers, err := store.ListOfficers(cmd.Context())
	if err != nil {
		return err
	}

	var match *models.Officer
	for i := range officers {
		if strings.EqualFold(officers[i].Email, who) || officers[i].Sub == who {
			if match != nil {
				return fmt.Errorf("%q matches more than one officer, use the subject", who)
			}
			match = &officers[i]
		}
	}
	if match == nil {
		return fmt.Errorf("%w: %s (officers must sign in once before they can be promoted)", db.ErrOfficerNotFound, who)
	}

	if err := store.UpdateOfficerRole(cmd.Context(), match.ID, role); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", match.Email, role)
	return nil
}
