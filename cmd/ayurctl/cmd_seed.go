package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayurwell/portal/internal/infrastructure/container"
	"github.com/ayurwell/portal/internal/infrastructure/persistence/sqlite"
)

var (
	seedPassword      string
	seedExtraPatients int
	seedRandom        int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo accounts, patients and the food catalog",
	Long: `Creates an admin, a verified practitioner, a linked patient with a sent
diet plan, extra generated patients and the food catalog. Does nothing when
the database already has users.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "password", "password of every demo account")
	seedCmd.Flags().IntVar(&seedExtraPatients, "extra-patients", 8, "number of generated patients")
	seedCmd.Flags().Int64Var(&seedRandom, "random-seed", 0, "seed for generated data (0 picks one)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Database.Seed = false

	db, err := container.OpenDatabase(cfg, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	report, err := sqlite.SeedDatabase(db, sqlite.SeedOptions{
		AdminEmail:    cfg.Auth.AdminEmail,
		Password:      seedPassword,
		BCryptCost:    cfg.Auth.BCryptCost,
		ExtraPatients: seedExtraPatients,
		Seed:          seedRandom,
	})
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	out := cmd.OutOrStdout()
	if report.Skipped {
		fmt.Fprintln(out, "Database already has users, nothing seeded")
		return nil
	}
	fmt.Fprintf(out, "Admin:        %s\n", report.AdminEmail)
	fmt.Fprintf(out, "Practitioner: %s\n", report.PractitionerEmail)
	fmt.Fprintf(out, "Patient:      %s\n", report.PatientEmail)
	fmt.Fprintf(out, "Patients:     %d\n", report.Patients)
	fmt.Fprintf(out, "Foods:        %d\n", report.Foods)
	return nil
}
