package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/recall-postcards/internal/address"
	"github.com/recall-postcards/internal/config"
	"github.com/recall-postcards/internal/db"
	"github.com/recall-postcards/internal/fakeroster"
	"github.com/recall-postcards/internal/gazetteer"
	"github.com/recall-postcards/internal/metrics"
	"github.com/recall-postcards/internal/nglist"
	"github.com/recall-postcards/internal/period"
	"github.com/recall-postcards/internal/pipeline"
	"github.com/recall-postcards/internal/postal"
	"github.com/recall-postcards/internal/roster"
	"github.com/recall-postcards/internal/sheet"
	"github.com/recall-postcards/internal/web"
	"github.com/recall-postcards/internal/web/handlers"
	"github.com/recall-postcards/internal/webpost"
)

var (
	// Loaded once before any subcommand runs
	cfg *config.Config
)

const metricsFile = "metrics.prom"

func main() {
	rootCmd := &cobra.Command{
		Use:   "recall",
		Short: "Dental recall postcard mailing lists",
		Long: `Builds the postcard upload files for patients due a recall visit: filters the
clinic roster by last visit date, splits children from adults and rewrites
each home address into the vendor's prefecture / city / street layout.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			return cfg.Validate()
		},
	}

	rootCmd.AddCommand(createRunCmd())
	rootCmd.AddCommand(createWindowCmd())
	rootCmd.AddCommand(createResolveCmd())
	rootCmd.AddCommand(createServeCmd())
	rootCmd.AddCommand(createFakeCmd())
	rootCmd.AddCommand(createGazetteerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func createRunCmd() *cobra.Command {
	var offset int
	var format string

	cmd := &cobra.Command{
		Use:   "run [roster-file]",
		Short: "Build the upload files for a roster export",
		Long: `Reads a roster (Shift_JIS CSV by default, or .xlsx), drops NG-listed patients,
keeps those whose last visit falls in the recall window and writes one upload
file per cohort plus debug.csv under OUTPUT_DIR.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cycle, err := period.ParseOffset(offset)
			if err != nil {
				return err
			}
			if format != "" {
				cfg.OutputFormat = format
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return runRoster(cmd.Context(), args[0], cycle)
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Mailing cycle offset: -1 previous, 0 current, 1 next")
	cmd.Flags().StringVar(&format, "format", "", "Output format: csv or xlsx (default from OUTPUT_FORMAT)")

	return cmd
}

func runRoster(ctx context.Context, inputPath string, cycle period.CycleOffset) error {
	enc := sheet.Encoding(cfg.InputEncoding)

	r, err := roster.Load(inputPath, enc, cfg.Columns)
	if err != nil {
		return err
	}
	log.Printf("Read %d records from %s", len(r.Records), inputPath)

	ng, err := nglist.Load(cfg.NGListPath, cfg.Columns.PatientID, enc)
	if err != nil {
		return err
	}

	g, err := gazetteer.Open(ctx, cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	now := time.Now()
	res, err := pipeline.Run(ctx, r, address.NewResolver(g), pipeline.Options{
		Now:                     now,
		Offset:                  cycle,
		PediatricThreshold:      cfg.PediatricThreshold,
		AdultIntervalMonths:     cfg.RecallIntervalMonths,
		PediatricIntervalMonths: cfg.PediatricRecallIntervalMonths,
		Workers:                 cfg.Workers,
		Debug:                   cfg.Debug,
		NG:                      ng,
		Metrics:                 metrics.New(reg),
	})
	if err != nil {
		return err
	}

	dir, err := webpost.OutputDir(cfg.OutputDir, inputPath, now)
	if err != nil {
		return err
	}
	if _, err := pipeline.Write(res, r, pipeline.WriteOptions{
		Dir:       dir,
		Format:    cfg.OutputFormat,
		Honorific: cfg.NameHonorific,
		Columns:   cfg.Columns,
	}); err != nil {
		return err
	}

	// Textfile collector format, same names as the server's /metrics.
	if err := prometheus.WriteToTextfile(filepath.Join(dir, metricsFile), reg); err != nil {
		return fmt.Errorf("failed to write run metrics: %w", err)
	}

	for _, line := range res.Summary() {
		fmt.Println(line)
	}
	return nil
}

func createWindowCmd() *cobra.Command {
	var offset int
	var date string

	cmd := &cobra.Command{
		Use:   "window",
		Short: "Preview the last visit windows a run would select",
		RunE: func(cmd *cobra.Command, args []string) error {
			cycle, err := period.ParseOffset(offset)
			if err != nil {
				return err
			}
			ref := time.Now()
			if date != "" {
				ref, err = time.ParseInLocation("2006-01-02", date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
			}

			spans := handlers.Windows(ref, cycle, &handlers.Config{
				AdultIntervalMonths:     cfg.RecallIntervalMonths,
				PediatricIntervalMonths: cfg.PediatricRecallIntervalMonths,
			})
			for _, s := range spans {
				fmt.Printf("%-10s %s (%d months)\n", s.Cohort, s.Label, s.IntervalMonths)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Mailing cycle offset: -1 previous, 0 current, 1 next")
	cmd.Flags().StringVar(&date, "date", "", "Reference date YYYY-MM-DD (default today)")

	return cmd
}

func createResolveCmd() *cobra.Command {
	var byPostalCode bool

	cmd := &cobra.Command{
		Use:   "resolve [address or postal code]",
		Short: "Resolve one address against the gazetteer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := gazetteer.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			resolver := address.NewResolver(g)

			input := strings.Join(args, " ")
			var res address.Result
			if byPostalCode {
				res = resolver.ResolveByPostalCode(postal.Normalize(input))
			} else {
				res = resolver.Resolve(input)
			}

			fmt.Printf("Outcome:    %s\n", res.Outcome)
			fmt.Printf("Prefecture: %s\n", res.Prefecture)
			fmt.Printf("City:       %s\n", res.City)
			fmt.Printf("Remainder:  %s\n", res.Remainder)
			if res.Area != "" {
				fmt.Printf("Area:       %s\n", res.Area)
			}
			if res.DroppedNumerals > 0 {
				fmt.Printf("Dropped numerals: %d\n", res.DroppedNumerals)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&byPostalCode, "postal-code", false, "Treat the argument as a postal code")

	return cmd
}

func createServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the window and resolver preview API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if host != "" {
				cfg.HTTPHost = host
			}
			if port != 0 {
				cfg.HTTPPort = port
			}

			g, err := gazetteer.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			server := web.NewServer(web.ConfigFrom(cfg), address.NewResolver(g), g.Stats, prometheus.NewRegistry())
			return server.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (default WEB_HOST)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default WEB_PORT)")

	return cmd
}

func createFakeCmd() *cobra.Command {
	var count int
	var seed int64
	var out string
	var withGazetteer bool

	cmd := &cobra.Command{
		Use:   "fake",
		Short: "Write a synthetic roster for trying the tool",
		RunE: func(cmd *cobra.Command, args []string) error {
			var g *gazetteer.Gazetteer
			if withGazetteer {
				var err error
				g, err = gazetteer.Open(cmd.Context(), cfg)
				if err != nil {
					return err
				}
			}

			tbl := fakeroster.Generate(g, cfg.Columns, fakeroster.Options{Count: count, Seed: seed})
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create %s: %w", dir, err)
				}
			}
			if err := sheet.WriteFile(out, tbl); err != nil {
				return err
			}
			fmt.Printf("Wrote %d patients to %s\n", len(tbl.Rows), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 1000, "Number of patients")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 for random)")
	cmd.Flags().StringVar(&out, "out", "dummy_patient_data.csv", "Output file (.csv or .xlsx)")
	cmd.Flags().BoolVar(&withGazetteer, "gazetteer", false, "Sample addresses from the configured gazetteer")

	return cmd
}

func createGazetteerCmd() *cobra.Command {
	gazCmd := &cobra.Command{
		Use:   "gazetteer",
		Short: "Manage the administrative reference data",
	}

	gazCmd.AddCommand(&cobra.Command{
		Use:   "import [KEN_ALL.CSV]",
		Short: "Load a KEN_ALL file into Postgres, replacing the stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			g, err := gazetteer.LoadFile(args[0])
			if err != nil {
				return err
			}

			conn, err := db.NewConnection(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer conn.Close()

			store := gazetteer.NewStore(conn.DB)
			if err := store.InitSchema(ctx); err != nil {
				return err
			}
			n, err := store.Replace(ctx, g)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d entries from %s\n", n, args[0])
			return nil
		},
	})

	gazCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print the size of the configured gazetteer",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := gazetteer.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			p, c, a := g.Stats()
			fmt.Printf("Prefectures: %d\nCities:      %d\nAreas:       %d\n", p, c, a)
			return nil
		},
	})

	return gazCmd
}
