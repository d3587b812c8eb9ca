package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"nutri-go/internal/app"
	"nutri-go/internal/config"
	"nutri-go/internal/encryption"
	"nutri-go/internal/nutri"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// closeApp closes a and reports its error through err unless err is already set.
func closeApp(a io.Closer, err *error) {
	if cerr := a.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("closing app: %w", cerr)
	}
}

// changedFlags returns the flags set on the command line as --name=value,
// for recording in the operation journal.
func changedFlags(cmd *cobra.Command) []string {
	var params []string
	cmd.Flags().Visit(func(f *pflag.Flag) {
		params = append(params, fmt.Sprintf("--%s=%s", f.Name, f.Value.String()))
	})
	return params
}

// loadConfig reads the config file from the default location.
func loadConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults["config_path"], nil
}

// newApp reads the config and creates a NutriApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "LogFood", "Dashboard").
func newApp(ctx context.Context, operation string, args []string) (*app.NutriApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewNutriApp(ctx, cfg, operation, strings.Join(args, " "))
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "nutri",
	Short:        "Food log and medication interaction checker",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return app.LoadDotEnv(".env")
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		encType, _ := cmd.Flags().GetString("encryption")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults["base_dir"])
		cfg.Encryption.Type = encType

		generated, err := app.InitConfig(defaults["config_path"], cfg, readNewPassphrase)
		if err != nil {
			return err
		}
		if generated {
			fmt.Printf("Encryption keys written to %s\n", cfg.Encryption.PublicKeyPath)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Host ID:    %s\n", cfg.HostID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Database:   %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:      %s (%s)\n", v.Name, v.Type)
		}
		if cfg.Reference.Path != "" {
			fmt.Printf("Reference:  %s\n", cfg.Reference.Path)
		}
		fmt.Printf("Analyzer:   %s delay\n", cfg.Analyzer.Delay())
		return nil
	},
}

// profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the active profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active profile",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "ShowProfile", args)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		p, err := a.Profile()
		if err != nil {
			return err
		}
		printProfile(p)
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields and recompute TDEE",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "SaveProfile", changedFlags(cmd))
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		p, err := a.Profile()
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("name") {
			p.Name, _ = flags.GetString("name")
		}
		if flags.Changed("age") {
			p.Age, _ = flags.GetInt("age")
		}
		if flags.Changed("height") {
			p.HeightCM, _ = flags.GetFloat64("height")
		}
		if flags.Changed("weight") {
			p.WeightKG, _ = flags.GetFloat64("weight")
		}
		if flags.Changed("disease") {
			p.Diseases, _ = flags.GetStringSlice("disease")
		}
		if flags.Changed("restriction") {
			p.DietaryRestrictions, _ = flags.GetStringSlice("restriction")
		}

		saved, err := a.SaveProfile(p)
		if err != nil {
			return fmt.Errorf("saving profile: %w", err)
		}
		fmt.Println("Profile saved.")
		printProfile(saved)
		return nil
	},
}

var profileDemoCmd = &cobra.Command{
	Use:   "demo [INDEX]",
	Short: "List demo profiles, or switch to one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "LoadDemoProfile", args)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		if len(args) == 0 {
			for i, p := range a.DemoProfiles() {
				fmt.Printf("%d  %-20s  %d kcal  %s\n", i, p.Name, p.TDEE, strings.Join(p.Diseases, ","))
			}
			return nil
		}

		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid profile index %q", args[0])
		}
		p, err := a.LoadDemoProfile(index)
		if err != nil {
			return err
		}
		fmt.Printf("Switched to %s\n", p.Name)
		return nil
	},
}

// food command
var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Search, analyze and log food",
}

var foodSearchCmd = &cobra.Command{
	Use:   "search [QUERY]",
	Short: "Search the food table",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "SearchFoods", args)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		foods := a.SearchFoods(query)
		if len(foods) == 0 {
			fmt.Println("No matching foods.")
			return nil
		}
		for _, f := range foods {
			fmt.Printf("%-16s %s  [%s]\n", f.Name, formatNutrients(f.Nutrients), strings.Join(f.Ingredients, ", "))
		}
		return nil
	},
}

var foodAnalyzeCmd = &cobra.Command{
	Use:   "analyze [IMAGE]",
	Short: "Identify a food from a photo",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		meal, _ := cmd.Flags().GetString("meal")
		save, _ := cmd.Flags().GetBool("save")
		yes, _ := cmd.Flags().GetBool("yes")

		operation := "Analyze"
		if save {
			operation = "LogFood"
		}
		a, err := newApp(cmd.Context(), operation, args)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		fmt.Println("Analyzing image...")
		det, entry, warnings, err := a.Analyze(cmd.Context(), meal)
		if err != nil {
			return err
		}
		fmt.Printf("Detected %s (%d%% confidence)\n", det.Name, det.Confidence)
		fmt.Printf("  %s\n", formatNutrients(entry.Nutrients))
		printWarnings(warnings)

		if !save {
			return nil
		}
		return logFood(a, entry.Name, entry.Portion, meal, yes)
	},
}

var foodAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Log a food for today",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		portion, _ := cmd.Flags().GetFloat64("portion")
		meal, _ := cmd.Flags().GetString("meal")
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp(cmd.Context(), "LogFood", args)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		return logFood(a, args[0], portion, meal, yes)
	},
}

// logFood saves a food entry, asking for confirmation on interaction warnings
// unless yes is set.
func logFood(a *app.NutriApp, name string, portion float64, meal string, yes bool) error {
	confirm := func(warnings []nutri.Warning) bool {
		printWarnings(warnings)
		if yes {
			return true
		}
		return confirmPrompt("Log this food anyway?")
	}

	entry, _, err := a.LogFood(name, portion, meal, confirm)
	if errors.Is(err, nutri.ErrLogCancelled) {
		fmt.Println("Not logged.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("logging food: %w", err)
	}
	fmt.Printf("Logged %s %gg (%s): %s\n", entry.Name, entry.Portion, entry.Meal, formatNutrients(entry.Nutrients))
	return nil
}

var foodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged food",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		date, _ := cmd.Flags().GetString("date")
		all, _ := cmd.Flags().GetBool("all")

		a, err := newApp(cmd.Context(), "ListFood", args)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		if all {
			date = ""
		} else if date == "" {
			if date, err = a.Today(); err != nil {
				return err
			}
		}

		entries, err := a.Entries(date)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No food logged.")
			return nil
		}
		for _, e := range entries {
			printEntry(e)
		}
		return nil
	},
}

// med command
var medCmd = &cobra.Command{
	Use:   "med",
	Short: "Manage medications",
}

var medAddCmd = &cobra.Command{
	Use:   "add NAME [DOSE...]",
	Short: "Add a medication",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "AddMedication", args)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		med, err := a.AddMedication(args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("Added #%d %s\n", med.ID, med.Name)

		conflicts, err := a.MedicationConflicts()
		if err != nil {
			return err
		}
		printWarnings(conflicts)
		return nil
	},
}

var medRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove a medication",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "RemoveMedication", args)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		if err := a.RemoveMedication(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed #%s\n", args[0])
		return nil
	},
}

var medListCmd = &cobra.Command{
	Use:   "list",
	Short: "List medications",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "ListMedications", args)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		meds, err := a.Medications()
		if err != nil {
			return err
		}
		if len(meds) == 0 {
			fmt.Println("No medications.")
			return nil
		}
		for _, m := range meds {
			fmt.Printf("#%d  %-16s  %s\n", m.ID, m.Name, m.Dose)
		}
		return nil
	},
}

var medCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check medications against each other",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "CheckMedications", args)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		conflicts, err := a.MedicationConflicts()
		if err != nil {
			return err
		}
		if len(conflicts) == 0 {
			fmt.Println("No drug conflicts found.")
			return nil
		}
		printWarnings(conflicts)
		return nil
	},
}

// overview commands
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show today's totals, recent meals and risks",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "Dashboard", args)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		d, err := a.Dashboard()
		if err != nil {
			return err
		}

		fmt.Printf("Today (%s): %.0f / %d kcal\n", d.Day.Date, d.Day.Totals.Calories, d.TargetKcal)
		fmt.Printf("  %s\n\n", formatNutrients(d.Day.Totals))

		fmt.Println("Recent:")
		for _, e := range d.Recent {
			printEntry(e)
		}

		fmt.Println()
		if len(d.Risks) == 0 {
			fmt.Println("No risks detected.")
			return nil
		}
		for _, r := range d.Risks {
			fmt.Printf("! %s\n", r.Message)
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the daily nutrient report",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		date, _ := cmd.Flags().GetString("date")
		export, _ := cmd.Flags().GetBool("export")
		fetch, _ := cmd.Flags().GetString("fetch")

		a, err := newApp(cmd.Context(), "Report", args)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		var (
			r        nutri.Report
			checksum string
		)
		switch {
		case fetch != "":
			r, err = a.FetchReport(fetch)
		case export:
			checksum, r, err = a.ExportReport(date)
		default:
			r, err = a.Report(date)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Report for %s (%s)\n", r.Date, r.Profile)
		for _, row := range r.Rows {
			mark := ""
			if row.Over {
				mark = "  over"
			}
			fmt.Printf("  %-9s %7.0f / %-5.0f %-4s %3.0f%%%s\n", row.Nutrient, row.Value, row.Target, row.Unit, row.Percent, mark)
		}
		if checksum != "" {
			fmt.Printf("\nExported report %s\n", checksum)
		}
		return nil
	},
}

var adviceCmd = &cobra.Command{
	Use:   "advice",
	Short: "Show today's advice",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		refresh, _ := cmd.Flags().GetBool("refresh")

		a, err := newApp(cmd.Context(), "Advice", args)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		advice, err := a.Advice(refresh)
		if err != nil {
			return err
		}
		for _, ad := range advice {
			fmt.Printf("- %s\n", ad.Text)
		}
		return nil
	},
}

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show calorie trends",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		days, _ := cmd.Flags().GetInt("days")

		a, err := newApp(cmd.Context(), "Trend", args)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		tr, err := a.Trend(days)
		if err != nil {
			return err
		}

		scale := max(tr.Max, float64(tr.Target))
		for _, p := range tr.Points {
			bar := 0
			if scale > 0 {
				bar = int(p.Calories / scale * 40)
			}
			fmt.Printf("%s %5.0f %s\n", p.Date[5:], p.Calories, strings.Repeat("#", bar))
		}
		fmt.Printf("\nTarget %d kcal, average %.0f, min %.0f, max %.0f, %d day(s) over\n",
			tr.Target, tr.Average, tr.Min, tr.Max, tr.OverDays)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context(), "GetHistory", args)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		ops, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				d := op.FinishedAt.Time.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-16s  %s  %-10s  %-8s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard all data and reload the demo data",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt("Delete all logged food, medications and profile changes?") {
			return nil
		}

		a, err := newApp(cmd.Context(), "Reset", args)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		if err := a.Reset(); err != nil {
			return err
		}
		fmt.Println("Data reset to demo state.")
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the local database with the latest vault backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		var passphrase string
		if encryption.RequiresPassphrase(cfg.Encryption) {
			passphrase, err = readPassphrase("Passphrase: ")
			if err != nil {
				return err
			}
		}

		version, err := app.Restore(cmd.Context(), cfg, passphrase)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Printf("Restored database at version %d\n", version)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().String("encryption", "none", "Backup encryption: none or age")
	configCmd.AddCommand(configListCmd)

	// profile subcommands
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileSetCmd.Flags().String("name", "", "Display name")
	profileSetCmd.Flags().Int("age", 0, "Age in years")
	profileSetCmd.Flags().Float64("height", 0, "Height in cm")
	profileSetCmd.Flags().Float64("weight", 0, "Weight in kg")
	profileSetCmd.Flags().StringSlice("disease", nil, "Condition tags, e.g. hypertension,diabetes")
	profileSetCmd.Flags().StringSlice("restriction", nil, "Dietary restriction tags")
	profileCmd.AddCommand(profileDemoCmd)

	// food subcommands
	foodCmd.AddCommand(foodSearchCmd)
	foodCmd.AddCommand(foodAnalyzeCmd)
	foodAnalyzeCmd.Flags().StringP("meal", "m", string(nutri.Lunch), "Meal: breakfast, lunch or dinner")
	foodAnalyzeCmd.Flags().Bool("save", false, "Log the detected food")
	foodAnalyzeCmd.Flags().BoolP("yes", "y", false, "Log without confirming interaction warnings")
	foodCmd.AddCommand(foodAddCmd)
	foodAddCmd.Flags().Float64P("portion", "p", nutri.BaselinePortion, "Portion in grams")
	foodAddCmd.Flags().StringP("meal", "m", string(nutri.Lunch), "Meal: breakfast, lunch or dinner")
	foodAddCmd.Flags().BoolP("yes", "y", false, "Log without confirming interaction warnings")
	foodCmd.AddCommand(foodListCmd)
	foodListCmd.Flags().String("date", "", "Day to list (YYYY-MM-DD), default today")
	foodListCmd.Flags().Bool("all", false, "List every entry")

	// med subcommands
	medCmd.AddCommand(medAddCmd)
	medCmd.AddCommand(medRmCmd)
	medCmd.AddCommand(medListCmd)
	medCmd.AddCommand(medCheckCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(foodCmd)
	rootCmd.AddCommand(medCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().String("date", "", "Day to report (YYYY-MM-DD), default today")
	reportCmd.Flags().Bool("export", false, "Store the report in the vault")
	reportCmd.Flags().String("fetch", "", "Show a previously exported report by checksum")
	rootCmd.AddCommand(adviceCmd)
	adviceCmd.Flags().Bool("refresh", false, "Evaluate the rules even when nothing is logged")
	rootCmd.AddCommand(trendsCmd)
	trendsCmd.Flags().IntP("days", "d", nutri.DefaultTrendDays, "Number of days")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", nutri.DefaultHistoryLimit, "Maximum number of operations to show")
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(restoreCmd)
}
