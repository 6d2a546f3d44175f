package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sagarc03/helloapi"
	"github.com/sagarc03/helloapi/config"
	"github.com/sagarc03/helloapi/database"
)

var errNoDatabase = errors.New("no incident database configured (database.type is none)")

var incidentsCmd = &cobra.Command{
	Use:   "incidents",
	Short: "Inspect recorded request failures",
	Long: `Inspect unhandled request failures recorded by the server.

Incidents are only recorded when a database is configured.`,
}

var incidentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List incidents, newest first",
	Long: `List incidents, newest first.

Examples:
  helloapi incidents list
  helloapi incidents list --limit 10
  helloapi incidents list --cursor "MjAyNi0wMy0wNFQwNTowNjowNy4xMjM0NTZafDAxOTJmNmE0LTdjMWUtN2IxYS05YzFkLTNlNGY1YTZiN2M4ZA=="`,
	Args: cobra.NoArgs,
	RunE: runIncidentsList,
}

var incidentsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one incident",
	Args:  cobra.ExactArgs(1),
	RunE:  runIncidentsShow,
}

var incidentsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the incident table",
	Args:  cobra.NoArgs,
	RunE:  runIncidentsMigrate,
}

var (
	incidentsLimit  int
	incidentsCursor string
	jsonOutput      bool
)

func init() {
	incidentsListCmd.Flags().IntVarP(&incidentsLimit, "limit", "l", 100, "max results per page (max: 1000)")
	incidentsListCmd.Flags().StringVar(&incidentsCursor, "cursor", "", "pagination cursor")

	incidentsCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	incidentsCmd.AddCommand(incidentsListCmd)
	incidentsCmd.AddCommand(incidentsShowCmd)
	incidentsCmd.AddCommand(incidentsMigrateCmd)
}

// openIncidents opens the configured database and returns a service over it
// with a function that closes the connection.
func openIncidents(ctx context.Context) (*helloapi.IncidentService, func(), error) {
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Database.Enabled() {
		return nil, nil, errNoDatabase
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	return helloapi.NewIncidentService(db.GetRepo(), cfg.Environment()), func() { _ = db.Close() }, nil
}

func runIncidentsList(cmd *cobra.Command, _ []string) error {
	service, closeDB, err := openIncidents(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	result, err := service.List(cmd.Context(), helloapi.ListQuery{
		Limit:  incidentsLimit,
		Cursor: incidentsCursor,
	})
	if err != nil {
		return err
	}

	return newFormatter(jsonOutput).FormatList(os.Stdout, result)
}

func runIncidentsShow(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid incident id %q: %w", args[0], err)
	}

	service, closeDB, err := openIncidents(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	incident, err := service.Get(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, helloapi.ErrNotFound) {
			return fmt.Errorf("incident %s not found", id)
		}
		return err
	}

	return newFormatter(jsonOutput).FormatShow(os.Stdout, incident)
}

func runIncidentsMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled() {
		return errNoDatabase
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	if err := db.Validate(ctx); err != nil {
		return fmt.Errorf("validate database schema: %w", err)
	}

	slog.Info("database migration complete",
		"type", cfg.Database.Type,
		"table", cfg.Database.Tables.Incidents,
	)
	return nil
}
