package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danhmatthews/crewdesk/internal/config"
	"github.com/danhmatthews/crewdesk/pkg/core/eligibility"
	"github.com/danhmatthews/crewdesk/pkg/core/model"
	"github.com/danhmatthews/crewdesk/pkg/core/services"
	"github.com/danhmatthews/crewdesk/pkg/db"
	"github.com/danhmatthews/crewdesk/pkg/postgres"
	"github.com/danhmatthews/crewdesk/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg      *config.Config
	location *time.Location
	database *postgres.DB
	logger   *zap.Logger
	ctx      context.Context
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Crewdesk CLI - Classify worker eligibility for open jobs",
		Long:  `A CLI tool for posting open jobs and classifying which workers may be assigned to them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.database != nil {
					app.database.Close()
				}
				if app.logger != nil {
					app.logger.Sync()
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(listWorkersCmd())
	rootCmd.AddCommand(createJobCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(addUnavailabilityCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, and database
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	app.cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.location, err = app.cfg.Location()
	if err != nil {
		return err
	}
	app.logger.Debug("Configuration loaded",
		zap.String("reference_timezone", app.cfg.ReferenceTimezone))

	app.database, err = postgres.NewDB(app.ctx, app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.logger.Info("Database connected")

	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.database.RunMigrations(app.ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			fmt.Println("Migrations applied.")
			return nil
		},
	}
}

func listWorkersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listWorkers",
		Short: "List all workers in the directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, err := app.database.GetWorkers(app.ctx)
			if err != nil {
				return fmt.Errorf("failed to list workers: %w", err)
			}

			app.logger.Info("Workers fetched", zap.Int("count", len(workers)))

			fmt.Printf("\nFound %d workers:\n\n", len(workers))
			for _, w := range workers {
				certs := certSummary(w)
				fmt.Printf("- %s (%s) - %s%s\n", w.FullName(), w.ID, w.Role, certs)
			}
			return nil
		},
	}
}

func certSummary(w model.Worker) string {
	var parts []string
	if w.TCPCertificationExpiry != nil {
		parts = append(parts, "tcp cert exp "+w.TCPCertificationExpiry.Format("2006-01-02"))
	}
	if w.DriverLicenseExpiry != nil {
		parts = append(parts, "driver licence exp "+w.DriverLicenseExpiry.Format("2006-01-02"))
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

func createJobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createJob <number> <start> <end> <company_id> <site_id> <client_id>",
		Short: "Post an open job with the given time window (RFC 3339 instants)",
		Args:  cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse(time.RFC3339, args[1])
			if err != nil {
				return fmt.Errorf("invalid start: %w", err)
			}
			end, err := time.Parse(time.RFC3339, args[2])
			if err != nil {
				return fmt.Errorf("invalid end: %w", err)
			}

			positionFlags, _ := cmd.Flags().GetStringSlice("position")
			required, err := parsePositions(positionFlags)
			if err != nil {
				return err
			}

			job, err := services.CreateOpenJob(app.ctx, app.database, app.logger, services.CreateOpenJobInput{
				Number:    args[0],
				Start:     start,
				End:       end,
				CompanyID: args[3],
				SiteID:    args[4],
				ClientID:  args[5],
				Required:  required,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\nJob %s created (%s), %d slots.\n", job.Number, job.ID, len(job.Slots))
			return nil
		},
	}

	cmd.Flags().StringSlice("position", nil, "Required position as tag=count (repeatable), e.g. --position tcp=2")
	cmd.MarkFlagRequired("position")

	return cmd
}

// parsePositions parses repeated tag=count flags into position requirements.
func parsePositions(flags []string) ([]model.PositionRequirement, error) {
	var required []model.PositionRequirement
	for _, f := range flags {
		tag, countStr, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid position %q: expected tag=count", f)
		}
		count, err := strconv.Atoi(countStr)
		if err != nil {
			return nil, fmt.Errorf("invalid position count in %q: %w", f, err)
		}
		required = append(required, model.PositionRequirement{
			Position: model.PositionTag(tag),
			Count:    count,
		})
	}
	return required, nil
}

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <job_id>",
		Short: "Classify worker eligibility for a job and print the ranked candidate list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := app.database.GetJob(app.ctx, args[0])
			if err != nil {
				return err
			}

			showAll, _ := cmd.Flags().GetBool("all")

			input := services.ClassifyJobInput{
				Window: model.JobWindow{
					Start:     job.Start,
					End:       job.End,
					CompanyID: job.CompanyID,
					SiteID:    job.SiteID,
					ClientID:  job.ClientID,
					JobID:     job.ID,
				},
				Required: requirementsFromSlots(job.Slots),
				Assigned: assignedWorkers(job.Slots),
				Location: app.location,
			}

			result, err := services.ClassifyOpenJob(app.ctx, app.database, app.logger, input)
			if err != nil {
				return err
			}

			verdicts := result.Visible
			if showAll {
				verdicts = result.Verdicts
			}

			fmt.Printf("\nJob %s: %s to %s, %d candidates\n\n",
				job.Number,
				job.Start.In(app.location).Format("2006-01-02 15:04"),
				job.End.In(app.location).Format("2006-01-02 15:04"),
				len(verdicts))

			for i, v := range verdicts {
				fmt.Printf("%3d. %-24s %-16s %s\n",
					i+1, v.WorkerName, eligibility.PositionLabel(v.MatchedPositions), verdictNote(v))
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Bool("all", false, "Show all workers, not just the default-visible candidates")

	return cmd
}

// requirementsFromSlots derives the distinct required positions from a job's
// worker slots.
func requirementsFromSlots(slots []db.JobSlot) []model.PositionRequirement {
	counts := make(map[string]int)
	var order []string
	for _, slot := range slots {
		if counts[slot.Position] == 0 {
			order = append(order, slot.Position)
		}
		counts[slot.Position]++
	}

	required := make([]model.PositionRequirement, 0, len(order))
	for _, pos := range order {
		required = append(required, model.PositionRequirement{
			Position: model.PositionTag(pos),
			Count:    counts[pos],
		})
	}
	return required
}

// assignedWorkers lists workers already holding a slot on the job.
func assignedWorkers(slots []db.JobSlot) []string {
	var assigned []string
	for _, slot := range slots {
		if slot.WorkerID != "" {
			assigned = append(assigned, slot.WorkerID)
		}
	}
	return assigned
}

// verdictNote renders a short status column for the candidate list.
func verdictNote(v eligibility.Verdict) string {
	switch {
	case v.HasTimeOffConflict:
		return "BLOCKED: time off"
	case v.HasBlockingConflict:
		return "BLOCKED: schedule conflict"
	case v.HasMandatoryNotPreferred:
		return "BLOCKED: not preferred (mandatory)"
	case v.HasScheduleConflict:
		return "WARN: shift gap"
	case v.HasNonMandatoryNotPreferred:
		return "WARN: not preferred"
	case v.PreferredCount > 0:
		return fmt.Sprintf("preferred (%d)", v.PreferredCount)
	case !v.QualifiesForJob:
		return "not qualified"
	default:
		return ""
	}
}

func addUnavailabilityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addUnavailability <worker_id> <rrule> <duration_minutes>",
		Short: "Mark recurring unavailability for a worker",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[2])
			if err != nil || minutes < 1 {
				return fmt.Errorf("duration_minutes must be a positive number")
			}
			note, _ := cmd.Flags().GetString("note")

			rule := &db.UnavailabilityRule{
				ID:       uuid.New().String(),
				WorkerID: args[0],
				Rule:     args[1],
				Duration: time.Duration(minutes) * time.Minute,
				Note:     note,
			}

			if err := app.database.InsertUnavailabilityRule(app.ctx, rule); err != nil {
				return err
			}

			app.logger.Info("Unavailability rule added",
				zap.String("worker_id", rule.WorkerID),
				zap.String("rule", rule.Rule))

			fmt.Printf("Unavailability rule %s added for worker %s.\n", rule.ID, rule.WorkerID)
			return nil
		},
	}

	cmd.Flags().String("note", "", "Free-text note shown in conflict explanations")

	return cmd
}
