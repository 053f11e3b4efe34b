package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/linkd/internal/report"
	"github.com/fyrsmithlabs/linkd/internal/watch"
)

var watchMode bool

func init() {
	runCmd.Flags().BoolVar(&watchMode, "watch", false, "rerun the pipeline when the contracts or invoices directory changes")
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan the contracts directory and group documents into contracts",
	Long: `Scan the contracts directory, identify every document, and group the
corpus into contracts. Writes discovery.json to the output directory.

Examples:
  # Discover with config defaults
  linkd discover

  # Discover with an explicit config file
  linkd discover --config linkd.yaml`,
	RunE: withRuntime(runDiscover),
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Build per-contract rule records",
	Long: `Build the per-contract rule records for a discovered contract set.
Reuses discovery.json from the output directory when present, otherwise
runs discovery first. Writes rules.json.`,
	RunE: withRuntime(runRules),
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Classify invoices against the discovered contracts",
	Long: `Classify every invoice in the invoices directory against the
discovered contract set. Reuses discovery.json from the output directory
when present, otherwise runs discovery first. Writes linkage.json.`,
	RunE: withRuntime(runLink),
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run discovery, rule extraction, and linkage in one pass",
	Long: `Run all pipeline phases and write every report artifact. With --watch
the pipeline reruns whenever the contracts or invoices directory changes.`,
	RunE: withRuntime(runAll),
}

func runDiscover(ctx context.Context, rt *runtime) error {
	disc, err := rt.pipe.Discover(ctx)
	if err != nil {
		return err
	}

	out := filepath.Join(rt.cfg.OutputDir, "discovery.json")
	if err := report.WriteJSON(out, disc); err != nil {
		return err
	}

	fmt.Printf("Discovered %d contract(s) from %d document(s)\n", len(disc.Contracts), disc.TotalDocuments)
	fmt.Printf("Report: %s\n", out)
	return nil
}

func runRules(ctx context.Context, rt *runtime) error {
	disc, err := loadOrDiscover(ctx, rt)
	if err != nil {
		return err
	}

	ruleReport, err := rt.pipe.ExtractRules(ctx, disc)
	if err != nil {
		return err
	}

	out := filepath.Join(rt.cfg.OutputDir, "rules.json")
	if err := report.WriteJSON(out, ruleReport); err != nil {
		return err
	}

	fmt.Printf("Extracted rules for %d contract(s)\n", len(ruleReport.Contracts))
	fmt.Printf("Report: %s\n", out)
	return nil
}

func runLink(ctx context.Context, rt *runtime) error {
	disc, err := loadOrDiscover(ctx, rt)
	if err != nil {
		return err
	}

	link, err := rt.pipe.Link(ctx, disc)
	if err != nil {
		return err
	}

	out := filepath.Join(rt.cfg.OutputDir, "linkage.json")
	if err := report.WriteJSON(out, link); err != nil {
		return err
	}

	fmt.Printf("Classified %d invoice(s): %d matched, %d ambiguous, %d unmatched\n",
		link.TotalInvoices, link.Matched, link.Ambiguous, link.Unmatched)
	fmt.Printf("Report: %s\n", out)
	return nil
}

func runAll(ctx context.Context, rt *runtime) error {
	if err := rt.pipe.Run(ctx); err != nil {
		return err
	}
	if !watchMode {
		return nil
	}

	w, err := watch.NewWatcher(
		[]string{rt.cfg.ContractsDir, rt.cfg.InvoicesDir},
		rt.cfg.Watch.Debounce.Duration(),
		rt.logger.Named("watch"),
	)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changed():
			rt.logger.Info("input changed, rerunning pipeline")
			if err := rt.pipe.Run(ctx); err != nil {
				// Keep watching; the next change may fix the input.
				rt.logger.Error("pipeline rerun failed", zap.Error(err))
			}
		}
	}
}

// loadOrDiscover reuses a persisted discovery report when one exists in
// the output directory, falling back to a fresh discovery run.
func loadOrDiscover(ctx context.Context, rt *runtime) (*report.Discovery, error) {
	path := filepath.Join(rt.cfg.OutputDir, "discovery.json")
	if _, err := os.Stat(path); err == nil {
		disc, err := report.ReadDiscovery(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		rt.logger.Info("reusing persisted discovery",
			zap.String("path", path),
			zap.String("run_id", disc.RunID),
			zap.Int("contracts", len(disc.Contracts)),
		)
		return disc, nil
	}

	return rt.pipe.Discover(ctx)
}
