package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"api-test-engine/internal/config"
	"api-test-engine/internal/database"
	"api-test-engine/internal/executor"
	"api-test-engine/internal/extractor"
	"api-test-engine/internal/llm"
	"api-test-engine/internal/logger"
	"api-test-engine/internal/reporter"
	"api-test-engine/internal/synthesizer"
	"api-test-engine/internal/types"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	runSource      string
	runController  string
	runOpenAPI     bool
	runBaseURL     string
	runToken       string
	runConcurrent  bool
	runPerformance bool
	runUseDatabase bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Synthesize and execute the test battery",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if runBaseURL != "" {
			cfg.BaseURL = runBaseURL
		}
		if runToken != "" {
			cfg.Token = runToken
		}

		log, err := logger.New(cfg.LogDir)
		if err != nil {
			return err
		}
		defer log.Close()

		endpoints, err := discoverEndpoints(cfg)
		if err != nil {
			return err
		}
		if len(endpoints) == 0 {
			return fmt.Errorf("no endpoints discovered")
		}
		fmt.Printf("Discovered %d endpoints\n", len(endpoints))

		var gen synthesizer.ValueGenerator = synthesizer.NewRandomGenerator()
		if cfg.LLM.Enabled {
			log.Info("using LLM-assisted value generation")
			gen = llm.NewValueClient(cfg.LLM, log)
		}
		cases := synthesizer.WithGenerator(gen).SynthesizeAll(endpoints)
		fmt.Printf("Synthesized %d test cases\n", len(cases))

		var store database.StatementExecutor = database.NewStub()
		if runUseDatabase {
			sqlExec, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer sqlExec.Close()
			store = sqlExec
		}

		exec := executor.New(cfg, store, log)

		// Batch cancellation on interrupt takes effect between cases.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		results := exec.RunAll(ctx, cases, printProgress)

		if runConcurrent {
			results = append(results, runConcurrentBattery(ctx, exec, cases, cfg.Concurrency)...)
		}
		if runPerformance {
			results = append(results, runPerformanceBattery(ctx, exec, cases, cfg.PerformanceIterations)...)
		}

		report := reporter.Build(results, endpoints, cfg)
		dir, err := reporter.NewWriter(cfg.ReportDir).Write(report)
		if err != nil {
			return fmt.Errorf("failed to persist report: %w", err)
		}

		printSummary(report, dir)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runSource, "source", "", "Path to an annotated controller source file")
	runCmd.Flags().StringVar(&runController, "controller", "", "Controller name (defaults to the source file name)")
	runCmd.Flags().BoolVar(&runOpenAPI, "openapi", false, "Discover endpoints from the target's OpenAPI document")
	runCmd.Flags().StringVar(&runBaseURL, "base-url", "", "Target base URL (overrides configuration)")
	runCmd.Flags().StringVar(&runToken, "token", "", "Bearer token (overrides configuration)")
	runCmd.Flags().BoolVar(&runConcurrent, "concurrent", false, "Also run the concurrency battery against each endpoint")
	runCmd.Flags().BoolVar(&runPerformance, "performance", false, "Also run the performance battery against each endpoint")
	runCmd.Flags().BoolVar(&runUseDatabase, "db", false, "Execute setup/teardown statements and data assertions against the configured database")
	rootCmd.AddCommand(runCmd)
}

// discoverEndpoints picks the endpoint source: controller source text or
// the target's OpenAPI document.
func discoverEndpoints(cfg *config.Config) ([]types.EndpointDescriptor, error) {
	if runSource != "" {
		data, err := os.ReadFile(runSource)
		if err != nil {
			return nil, fmt.Errorf("failed to read source file: %w", err)
		}
		controller := runController
		if controller == "" {
			controller = strings.TrimSuffix(filepath.Base(runSource), filepath.Ext(runSource))
		}
		return extractor.New().Extract(string(data), controller), nil
	}
	if runOpenAPI {
		return extractor.NewOpenAPIExtractor(cfg.BaseURL).Extract()
	}
	return nil, fmt.Errorf("either --source or --openapi is required")
}

func runConcurrentBattery(ctx context.Context, exec *executor.Executor, cases []types.TestCase, n int) []types.TestResult {
	var results []types.TestResult
	for _, tc := range cases {
		if tc.Category != types.CategoryFunctional {
			continue
		}
		fmt.Printf("Concurrency battery: %s (%d clones)\n", tc.ID, n)
		results = append(results, exec.RunConcurrent(ctx, tc, n)...)
	}
	return results
}

func runPerformanceBattery(ctx context.Context, exec *executor.Executor, cases []types.TestCase, iterations int) []types.TestResult {
	var results []types.TestResult
	for _, tc := range cases {
		if tc.Category != types.CategoryFunctional {
			continue
		}
		fmt.Printf("Performance battery: %s (%d iterations)\n", tc.ID, iterations)
		batch, stats := exec.RunPerformance(ctx, tc, iterations)
		results = append(results, batch...)
		fmt.Printf("  min=%s max=%s mean=%s p50=%s p90=%s p99=%s\n",
			stats.Min, stats.Max, stats.Mean, stats.P50, stats.P90, stats.P99)
	}
	return results
}

func printProgress(current, total int, label string) {
	fmt.Printf("[%d/%d] %s\n", current, total, label)
}

func printSummary(report *reporter.TestReport, dir string) {
	s := report.Summary
	fmt.Println()
	color.New(color.Bold).Printf("Run complete: %d cases, pass rate %s\n", s.Total, s.PassRate)
	color.Green("  passed:  %d", s.Passed)
	if s.Failed > 0 {
		color.Red("  failed:  %d", s.Failed)
	} else {
		fmt.Printf("  failed:  %d\n", s.Failed)
	}
	if s.Skipped > 0 {
		color.Yellow("  skipped: %d", s.Skipped)
	}
	fmt.Printf("Report written to %s\n", dir)
}
