package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coursehub/exam-service/internal/essay"
	"github.com/coursehub/exam-service/internal/events"
	"github.com/coursehub/exam-service/internal/repositories/casdoor"
	pgrepo "github.com/coursehub/exam-service/internal/repositories/postgres"
	"github.com/coursehub/exam-service/internal/services"
	"github.com/coursehub/exam-service/internal/validator"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every result of an exam to an xlsx workbook",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.Uint("exam-id", 0, "Exam identifier (required)")
	f.StringP("out", "o", "", "Output xlsx path (default exam-<id>-results.xlsx)")
	f.String("database-url", "", "PostgreSQL DSN (or set EXAMCTL_DATABASE_URL)")
	f.String("casdoor-endpoint", "", "Casdoor endpoint used to resolve learner names")
	f.String("casdoor-client-id", "", "Casdoor client id")
	f.String("casdoor-client-secret", "", "Casdoor client secret")
	f.String("casdoor-organization", "", "Casdoor organization")
	f.String("casdoor-application", "", "Casdoor application")
	f.Duration("timeout", time.Minute, "Overall export timeout")

	_ = cmd.MarkFlagRequired("exam-id")
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	log := newLogger(v)

	examID := v.GetUint("exam-id")
	if examID == 0 {
		return fmt.Errorf("--exam-id must be positive")
	}
	dsn := v.GetString("database-url")
	if dsn == "" {
		return fmt.Errorf("--database-url or EXAMCTL_DATABASE_URL is required")
	}
	out := v.GetString("out")
	if out == "" {
		out = fmt.Sprintf("exam-%d-results.xlsx", examID)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), v.GetDuration("timeout"))
	defer cancel()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	repo := pgrepo.NewPostgreSQLRepository(pgrepo.RepositoryConfig{
		DB: db,
		CasdoorConfig: casdoor.CasdoorConfig{
			Endpoint:         v.GetString("casdoor-endpoint"),
			ClientID:         v.GetString("casdoor-client-id"),
			ClientSecret:     v.GetString("casdoor-client-secret"),
			OrganizationName: v.GetString("casdoor-organization"),
			ApplicationName:  v.GetString("casdoor-application"),
		},
	})
	defer repo.Close()

	publisher, _ := events.NewInProcessPublisher("exam-events", log)
	defer publisher.Close()

	grading := services.NewGradingService(repo, essay.Disabled{}, log, 0)
	results := services.NewResultService(repo, grading, publisher, log, validator.New())
	data, err := services.NewExportService(repo, results, log).ExportResults(ctx, examID)
	if err != nil {
		return fmt.Errorf("export exam %d: %w", examID, err)
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, len(data))
	return nil
}
