package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/ntsvetkov/campus-manager/internal/api"
	"github.com/ntsvetkov/campus-manager/internal/config"
	"github.com/ntsvetkov/campus-manager/internal/csvio"
	"github.com/ntsvetkov/campus-manager/pkg/clients/sheetsclient"
	"github.com/ntsvetkov/campus-manager/pkg/core/services"
	"github.com/ntsvetkov/campus-manager/pkg/db"
	"github.com/ntsvetkov/campus-manager/pkg/metrics"
	"github.com/ntsvetkov/campus-manager/pkg/postgres"
	"github.com/ntsvetkov/campus-manager/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg          *config.Config
	sheetsClient *sheetsclient.Client
	database     *db.DB
	history      *postgres.DB
	logger       *zap.Logger
	ctx          context.Context
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Campus Manager CLI - Manage housing priority rankings",
		Long:  `A CLI tool for managing student housing applications, priority scores, and campus distribution rankings.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.history != nil {
				app.history.Close()
			}
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
		},
	}

	// Add persistent environment flag
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	// Add all commands
	rootCmd.AddCommand(calculateCmd())
	rootCmd.AddCommand(listStudentsCmd())
	rootCmd.AddCommand(addStudentCmd())
	rootCmd.AddCommand(importStudentsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(interactiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, clients, and database
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	// Initialize logger
	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.logger.Info("Loading configuration")
	app.cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	// Initialize sheets client with the service account credentials
	app.logger.Info("Initializing sheets client")
	app.sheetsClient, err = sheetsclient.NewClient(app.ctx, app.cfg.ServiceAccountFile)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.logger.Debug("Sheets client initialized successfully")

	// Initialize DB layer over the campus spreadsheet
	app.logger.Info("Connecting to spreadsheet", zap.String("spreadsheet_id", app.cfg.SpreadsheetID))
	app.database = db.NewDB(app.sheetsClient, app.cfg.SpreadsheetID, db.Tabs{
		Students: app.cfg.StudentsTab,
		Weights:  app.cfg.WeightsTab,
		Results:  app.cfg.ResultsTab,
	})
	app.logger.Info("Database initialized successfully")

	// Initialize the optional run history store
	if app.cfg.HistoryDSN != "" {
		app.logger.Info("Connecting to run history store")
		app.history, err = postgres.NewDB(app.ctx, app.cfg.HistoryDSN)
		if err != nil {
			return fmt.Errorf("failed to connect to run history store: %w", err)
		}
		if err := app.history.RunMigrations(app.ctx); err != nil {
			return fmt.Errorf("failed to migrate run history store: %w", err)
		}
		app.logger.Info("Run history store initialized successfully")
	}

	return nil
}

// Command definitions

func calculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Score and rank all students, writing the ranking to the results tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			exportPath, _ := cmd.Flags().GetString("export")

			result, err := services.CalculateDistribution(app.ctx, app.database, app.cfg, app.logger, dryRun)
			if err != nil {
				return err
			}

			if app.history != nil {
				if err := services.RecordRun(app.ctx, app.history, app.logger, result); err != nil {
					app.logger.Warn("Failed to record run history", zap.Error(err))
				}
			}

			if exportPath != "" {
				if err := csvio.WriteRankingFile(exportPath, result.Distribution.Students); err != nil {
					return err
				}
			}

			// Display results
			fmt.Printf("\n✓ Distribution calculated!\n\n")
			fmt.Printf("Run ID:   %s\n", result.Distribution.RunID)
			fmt.Printf("Students: %d\n", result.Distribution.Count)

			if len(result.Distribution.Skipped) > 0 {
				fmt.Printf("\n⚠️  Skipped %d invalid rows:\n", len(result.Distribution.Skipped))
				for _, row := range result.Distribution.Skipped {
					fmt.Printf("  ✗ row %d (%s): %s %s\n", row.Index, row.Name, row.Field, row.Reason)
				}
			}

			if len(result.UnknownInstitutes) > 0 {
				fmt.Printf("\n⚠️  Institutes not in the weight table (default profile used):\n")
				for _, name := range result.UnknownInstitutes {
					fmt.Printf("  - %s\n", name)
				}
			}

			fmt.Println()
			if dryRun {
				fmt.Println("Dry run - ranking not saved.")
			} else {
				fmt.Println("Ranking saved to the results tab.")
			}
			if exportPath != "" {
				fmt.Printf("Ranking exported to %s\n", exportPath)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Compute the ranking without saving it")
	cmd.Flags().String("export", "", "Also write the ranking to a CSV file")

	return cmd
}

func listStudentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listStudents",
		Short: "List all students from the students tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			students, err := services.ListStudents(app.ctx, app.database, app.logger)
			if err != nil {
				return err
			}

			// Print students
			fmt.Printf("\nFound %d students:\n\n", len(students))
			for _, s := range students {
				flags := []string{}
				if s.SVO == 1 {
					flags = append(flags, "СВО")
				}
				if s.ChAES == 1 {
					flags = append(flags, "ЧАЭС")
				}
				if s.Disability == 1 {
					flags = append(flags, "инвалидность")
				}
				if s.LargeFamily == 1 {
					flags = append(flags, "многодетная семья")
				}

				flagInfo := ""
				if len(flags) > 0 {
					flagInfo = fmt.Sprintf(" [%s]", strings.Join(flags, ", "))
				}
				fmt.Printf("- %s (%s) - %s - %.1f км%s\n",
					s.Name,
					s.Gender,
					s.Institute,
					s.Distance,
					flagInfo,
				)
			}

			return nil
		},
	}
}

func addStudentCmd() *cobra.Command {
	var submission services.Submission

	cmd := &cobra.Command{
		Use:   "addStudent",
		Short: "Add a single student to the students tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			submissionID, err := services.SubmitStudent(app.ctx, app.database, app.logger, submission)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Student added!\n\n")
			fmt.Printf("Submission ID: %s\n", submissionID)
			fmt.Printf("Name:          %s\n\n", submission.Name)

			return nil
		},
	}

	cmd.Flags().StringVar(&submission.Name, "name", "", "Full name (required)")
	cmd.Flags().StringVar(&submission.Gender, "gender", "", "Gender, М or Ж (required)")
	cmd.Flags().StringVar(&submission.Institute, "institute", "", "Institute name (required)")
	cmd.Flags().IntVar(&submission.SVO, "svo", 0, "SVO participant family flag (0 or 1)")
	cmd.Flags().IntVar(&submission.ChAES, "chaes", 0, "ChAES liquidator family flag (0 or 1)")
	cmd.Flags().IntVar(&submission.Disability, "disability", 0, "Disability flag (0 or 1)")
	cmd.Flags().IntVar(&submission.Smoking, "smoking", 0, "Smoking flag (0 or 1)")
	cmd.Flags().Float64Var(&submission.Distance, "distance", 0, "Distance from home to campus in km")
	cmd.Flags().IntVar(&submission.LargeFamily, "large-family", 0, "Large family flag (0 or 1)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("gender")
	cmd.MarkFlagRequired("institute")

	return cmd
}

func importStudentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "importStudents <roster.csv>",
		Short: "Import students from a CSV roster into the students tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := csvio.ReadStudentsFile(args[0])
			if err != nil {
				return err
			}

			imported := 0
			var failed []string
			for _, row := range rows {
				submission := services.Submission{
					Name:        row.Name,
					Gender:      row.Gender,
					Institute:   row.Institute,
					SVO:         row.SVO,
					ChAES:       row.ChAES,
					Disability:  row.Disability,
					Smoking:     row.Smoking,
					Distance:    row.Distance,
					LargeFamily: row.LargeFamily,
				}

				if _, err := services.SubmitStudent(app.ctx, app.database, app.logger, submission); err != nil {
					failed = append(failed, fmt.Sprintf("%s: %v", row.Name, err))
					continue
				}
				imported++
			}

			// Display results
			fmt.Printf("\n✓ Import completed!\n\n")
			fmt.Printf("Imported: %d of %d\n", imported, len(rows))

			if len(failed) > 0 {
				fmt.Printf("\n⚠️  Failed rows:\n")
				for _, message := range failed {
					fmt.Printf("  ✗ %s\n", message)
				}
			}
			fmt.Println()

			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <ranking.csv>",
		Short: "Compute the current ranking and write it to a CSV file, without touching the results tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.CalculateDistribution(app.ctx, app.database, app.cfg, app.logger, true)
			if err != nil {
				return err
			}

			if err := csvio.WriteRankingFile(args[0], result.Distribution.Students); err != nil {
				return err
			}

			fmt.Printf("\n✓ Ranking exported!\n\n")
			fmt.Printf("Students: %d\n", result.Distribution.Count)
			fmt.Printf("File:     %s\n\n", args[0])

			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent distribution runs from the run history store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.history == nil {
				return fmt.Errorf("run history store not configured, set historyDSN in the config")
			}

			limit, _ := cmd.Flags().GetInt("limit")
			runs, err := app.history.GetRuns(app.ctx, limit)
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d runs:\n\n", len(runs))
			for _, run := range runs {
				saved := "saved"
				if !run.Saved {
					saved = "dry run"
				}
				fmt.Printf("- %s  %s  students=%d priority=%d skipped=%d (%s)\n",
					run.ComputedAt.Format("2006-01-02 15:04:05"),
					run.RunID,
					run.Students,
					run.Priority,
					run.Skipped,
					saved,
				)
			}

			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to list")

	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (form webhook intake, distribution runs, metrics)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(app.ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			// A nil *postgres.DB must not reach the interface field
			var recorder services.RunRecorder
			if app.history != nil {
				recorder = app.history
			}

			manager := metrics.New()
			server := api.NewServer(app.cfg, app.database, recorder, app.logger, manager)

			if app.cfg.Server.RecalcRule != "" {
				rule, err := rrule.StrToRRule(app.cfg.Server.RecalcRule)
				if err != nil {
					return fmt.Errorf("invalid recalcRule: %w", err)
				}
				app.logger.Info("Scheduled recalculation enabled",
					zap.String("rule", app.cfg.Server.RecalcRule))
				go server.RunScheduledRecalc(ctx, rule)
			}

			return server.Run(ctx)
		},
	}
}

func interactiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (authenticate once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands without re-authenticating.
The session will keep running until you type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("\n🚀 Starting interactive session...")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			// Get all sibling commands (excluding interactive itself)
			rootCmd := cmd.Parent()
			commands := make(map[string]*cobra.Command)
			for _, subCmd := range rootCmd.Commands() {
				if subCmd.Name() != "interactive" && subCmd.Name() != "completion" && subCmd.Name() != "help" {
					commands[subCmd.Name()] = subCmd
				}
			}

			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")

				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				// Parse command, respecting quotes so names with spaces survive
				parts, err := parseCommandLine(line)
				if err != nil {
					fmt.Printf("❌ Error parsing command: %v\n\n", err)
					continue
				}
				if len(parts) == 0 {
					continue
				}
				cmdName := parts[0]
				cmdArgs := parts[1:]

				// Handle exit
				if cmdName == "exit" || cmdName == "quit" {
					fmt.Println("👋 Goodbye!")
					return nil
				}

				// Handle help
				if cmdName == "help" {
					printInteractiveHelp(commands)
					continue
				}

				// Execute command via Cobra
				targetCmd, exists := commands[cmdName]
				if !exists {
					fmt.Printf("❌ Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
					continue
				}

				// Reset command flags and args
				targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
					flag.Changed = false
					flag.Value.Set(flag.DefValue)
				})

				// Execute the command's RunE directly, bypassing the full Execute() flow
				// This avoids re-running PersistentPreRunE which would call initApp() again
				if err := targetCmd.ParseFlags(cmdArgs); err != nil {
					fmt.Printf("❌ Error parsing flags: %v\n\n", err)
					continue
				}

				// Get non-flag args after parsing flags
				cmdArgs = targetCmd.Flags().Args()

				// Validate args
				if err := targetCmd.Args(targetCmd, cmdArgs); err != nil {
					fmt.Printf("❌ Error: %v\n\n", err)
					continue
				}

				// Execute the RunE function directly
				if targetCmd.RunE != nil {
					if err := targetCmd.RunE(targetCmd, cmdArgs); err != nil {
						fmt.Printf("❌ Error: %v\n\n", err)
					}
				} else if targetCmd.Run != nil {
					targetCmd.Run(targetCmd, cmdArgs)
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}

			return nil
		},
	}

	return cmd
}

// parseCommandLine splits a command line into arguments, respecting quoted strings
// Supports both single and double quotes
func parseCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var inQuote rune // 0 if not in quote, '"' or '\'' if in quote

	for _, r := range line {
		switch {
		case inQuote != 0:
			// Inside a quote
			if r == inQuote {
				// End quote
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			// Start quote
			inQuote = r
		case unicode.IsSpace(r):
			// Whitespace outside quotes - end current argument
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			// Regular character
			current.WriteRune(r)
		}
	}

	if inQuote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", inQuote)
	}

	// Add final argument if present
	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args, nil
}

func printInteractiveHelp(commands map[string]*cobra.Command) {
	fmt.Println("\nAvailable commands:")

	// Get command names and sort them
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}

	// Print each command with its short description
	for _, name := range names {
		cmd := commands[name]
		fmt.Printf("  %-30s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Println("\n  help                           Show this help message")
	fmt.Println("  exit, quit                     Exit the interactive session")
}
