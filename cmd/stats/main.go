package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/alexivanou/communes-api/internal/config"
	"github.com/alexivanou/communes-api/internal/database"
	"github.com/alexivanou/communes-api/internal/stats"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	format := os.Getenv("OUTPUT_FORMAT")
	if format == "" {
		format = "json"
	}
	var migrationsDir string

	root := &cobra.Command{
		Use:           "stats",
		Short:         "Report row counts, cache coverage and runtime figures",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := collect(cmd.Context(), migrationsDir, logger)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, report)
		},
	}
	root.Flags().StringVarP(&format, "format", "f", format, "output format: json or text")
	root.Flags().StringVar(&migrationsDir, "dir", "migrations", "migrations root, used for in-memory databases")

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Fatal("Stats failed", zap.Error(err))
	}
}

func collect(ctx context.Context, migrationsDir string, logger *zap.Logger) (*stats.Stats, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	// An in-memory database starts without a schema
	if cfg.DB.IsMemory() {
		if err := database.MigrateUp(db, cfg.DB, migrationsDir); err != nil {
			return nil, err
		}
	}

	logger.Info("Collecting statistics", zap.String("db_type", string(cfg.DB.Type)))
	return stats.NewCollector(db, cfg.DB).Collect(ctx)
}

func render(w io.Writer, format string, s *stats.Stats) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "text", "human":
		return printReport(w, s)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func printReport(w io.Writer, s *stats.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Collected\t%s\n", s.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(tw, "Database\t%s\n", s.Database.Type)
	if s.Database.SizeBytes > 0 {
		fmt.Fprintf(tw, "Size\t%s\n", formatBytes(uint64(s.Database.SizeBytes)))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "TABLE\tROWS\tSIZE")
	for _, ts := range s.Database.TableStats {
		size := "-"
		if ts.SizeBytes > 0 {
			size = formatBytes(uint64(ts.SizeBytes))
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", ts.Name, ts.RowCount, size)
	}
	fmt.Fprintf(tw, "total\t%d\t\n", s.Database.TotalRecords)
	fmt.Fprintln(tw)

	langs := make([]string, 0, len(s.Database.DescriptionsByLanguage))
	for lang := range s.Database.DescriptionsByLanguage {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	for _, lang := range langs {
		fmt.Fprintf(tw, "Descriptions (%s)\t%d\n", lang, s.Database.DescriptionsByLanguage[lang])
	}
	fmt.Fprintf(tw, "Rated cities\t%d\n", s.Database.RatedCities)
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Heap in use\t%s\n", formatBytes(s.Memory.HeapInuse))
	fmt.Fprintf(tw, "GC cycles\t%d\n", s.Memory.NumGC)
	fmt.Fprintf(tw, "Goroutines\t%d\n", s.Runtime.NumGoroutines)
	fmt.Fprintf(tw, "Uptime\t%ds\n", s.Runtime.UptimeSeconds)

	return tw.Flush()
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
