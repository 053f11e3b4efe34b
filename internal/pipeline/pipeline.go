// Package pipeline orchestrates the batch phases: contract discovery,
// rule extraction, and invoice linkage. The phases run strictly in
// order — the contract set is fully built and read-only before any
// invoice is classified — which lets invoice classification fan out
// across workers safely.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/linkd/internal/config"
	"github.com/fyrsmithlabs/linkd/internal/contract"
	"github.com/fyrsmithlabs/linkd/internal/docs"
	"github.com/fyrsmithlabs/linkd/internal/extraction"
	"github.com/fyrsmithlabs/linkd/internal/identify"
	"github.com/fyrsmithlabs/linkd/internal/linkage"
	"github.com/fyrsmithlabs/linkd/internal/report"
	"github.com/fyrsmithlabs/linkd/internal/rules"
)

const instrumentationName = "github.com/fyrsmithlabs/linkd/internal/pipeline"

// invoicePrefix selects invoice files from the invoices directory.
const invoicePrefix = "INV-"

// Pipeline wires the phases together.
type Pipeline struct {
	cfg        *config.Config
	readers    *docs.Registry
	identifier *identify.Extractor
	extractor  *extraction.InvoiceExtractor
	ruleSource rules.Source
	logger     *zap.Logger

	docCounter     metric.Int64Counter
	invoiceCounter metric.Int64Counter
}

// New creates a pipeline from config. logger may be nil.
func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	meter := otel.Meter(instrumentationName)
	docCounter, err := meter.Int64Counter("linkd.documents",
		metric.WithDescription("Contract documents seen during discovery, by outcome"))
	if err != nil {
		return nil, fmt.Errorf("creating document counter: %w", err)
	}
	invoiceCounter, err := meter.Int64Counter("linkd.invoices",
		metric.WithDescription("Invoices classified, by status"))
	if err != nil {
		return nil, fmt.Errorf("creating invoice counter: %w", err)
	}

	return &Pipeline{
		cfg:            cfg,
		readers:        docs.DefaultRegistry(),
		identifier:     identify.NewExtractor(cfg.Identify, logger.Named("identify")),
		extractor:      extraction.NewInvoiceExtractor(),
		ruleSource:     rules.NewFileSource(cfg.RulesFile, logger.Named("rules")),
		logger:         logger,
		docCounter:     docCounter,
		invoiceCounter: invoiceCounter,
	}, nil
}

// Discover scans the contracts directory, identifies every readable
// document, and groups the corpus into contracts. A document whose
// body text cannot be read is degraded to filename-only signal when
// the format is simply unsupported, and skipped from the corpus when
// the file itself is broken; either way the batch continues.
func (p *Pipeline) Discover(ctx context.Context) (*report.Discovery, error) {
	tracer := otel.Tracer(instrumentationName)
	ctx, span := tracer.Start(ctx, "pipeline.discover")
	defer span.End()

	p.logger.Info("scanning contracts", zap.String("dir", p.cfg.ContractsDir))

	entries, err := os.ReadDir(p.cfg.ContractsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read contracts directory: %w", err)
	}

	var identifiers []identify.DocumentIdentifier
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(p.cfg.ContractsDir, entry.Name())
		body, err := p.readers.Read(path)
		if err != nil && !errors.Is(err, docs.ErrUnsupported) {
			p.logger.Warn("skipping unreadable document",
				zap.String("filename", entry.Name()),
				zap.Error(err),
			)
			p.docCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "skipped")))
			continue
		}

		identifiers = append(identifiers, p.identifier.Identify(entry.Name(), path, body))
		p.docCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "identified")))
	}

	contracts := contract.Group(identifiers)
	for _, c := range contracts {
		p.logger.Info("grouped contract",
			zap.String("contract_id", c.ContractID),
			zap.Int("documents", len(c.Documents)),
			zap.Int("inconsistencies", len(c.Inconsistencies)),
		)
	}

	return report.NewDiscovery(p.cfg.ContractsDir, len(identifiers), contracts), nil
}

// ExtractRules builds the per-contract rule records for a discovery.
func (p *Pipeline) ExtractRules(ctx context.Context, disc *report.Discovery) (*rules.Report, error) {
	extractor, err := rules.NewExtractor(p.ruleSource, p.logger.Named("rules"))
	if err != nil {
		return nil, err
	}
	return extractor.ExtractAll(ctx, disc.Contracts), nil
}

// Link classifies every invoice in the invoices directory against the
// discovered contracts. Invoices are processed across Workers
// goroutines; a failing invoice is logged and excluded from the report
// rather than poisoning the batch.
func (p *Pipeline) Link(ctx context.Context, disc *report.Discovery) (*report.Linkage, error) {
	tracer := otel.Tracer(instrumentationName)
	ctx, span := tracer.Start(ctx, "pipeline.link")
	defer span.End()

	files, err := p.collectInvoiceFiles()
	if err != nil {
		return nil, err
	}

	p.logger.Info("classifying invoices",
		zap.String("dir", p.cfg.InvoicesDir),
		zap.Int("count", len(files)),
	)

	detector := linkage.NewDetector(disc.Contracts, p.logger.Named("linkage"))

	results := make([]*linkage.Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			fields, err := p.parseInvoice(path)
			if err != nil {
				p.logger.Warn("excluding unparseable invoice",
					zap.String("filename", filepath.Base(path)),
					zap.Error(err),
				)
				return nil
			}

			r := detector.Detect(fields)
			results[i] = &r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	collected := make([]linkage.Result, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		collected = append(collected, *r)
		p.invoiceCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("status", strings.ToLower(string(r.Status))),
		))
	}

	return report.NewLinkage(collected), nil
}

// Run executes all phases and persists the report artifacts.
func (p *Pipeline) Run(ctx context.Context) error {
	disc, err := p.Discover(ctx)
	if err != nil {
		return err
	}
	if err := report.WriteJSON(filepath.Join(p.cfg.OutputDir, "discovery.json"), disc); err != nil {
		return err
	}

	ruleReport, err := p.ExtractRules(ctx, disc)
	if err != nil {
		return err
	}
	if err := report.WriteJSON(filepath.Join(p.cfg.OutputDir, "rules.json"), ruleReport); err != nil {
		return err
	}

	link, err := p.Link(ctx, disc)
	if err != nil {
		return err
	}
	if err := report.WriteJSON(filepath.Join(p.cfg.OutputDir, "linkage.json"), link); err != nil {
		return err
	}

	p.logger.Info("pipeline complete",
		zap.Int("contracts", len(disc.Contracts)),
		zap.Int("invoices", link.TotalInvoices),
		zap.Int("matched", link.Matched),
		zap.Int("ambiguous", link.Ambiguous),
		zap.Int("unmatched", link.Unmatched),
	)
	return nil
}

// collectInvoiceFiles lists INV-* files, deduplicated by stem. When the
// same invoice exists in several formats the richer format wins, DOCX
// above all.
func (p *Pipeline) collectInvoiceFiles() ([]string, error) {
	entries, err := os.ReadDir(p.cfg.InvoicesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoices directory: %w", err)
	}

	best := make(map[string]string) // stem -> path
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), invoicePrefix) {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if formatRank(ext) == 0 {
			continue
		}

		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if current, ok := best[stem]; ok {
			if formatRank(strings.ToLower(filepath.Ext(current))) >= formatRank(ext) {
				continue
			}
		}
		best[stem] = filepath.Join(p.cfg.InvoicesDir, entry.Name())
	}

	stems := make([]string, 0, len(best))
	for stem := range best {
		stems = append(stems, stem)
	}
	sort.Strings(stems)

	files := make([]string, len(stems))
	for i, stem := range stems {
		files[i] = best[stem]
	}
	return files, nil
}

// formatRank orders invoice formats by extraction reliability; zero
// means unsupported.
func formatRank(ext string) int {
	switch ext {
	case ".docx":
		return 3
	case ".json":
		return 2
	case ".txt", ".md":
		return 1
	default:
		return 0
	}
}

// parseInvoice produces the InvoiceFields for one invoice file. JSON
// invoices are pre-extracted records; text formats go through the
// extraction engine.
func (p *Pipeline) parseInvoice(path string) (extraction.InvoiceFields, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return extraction.InvoiceFields{}, fmt.Errorf("failed to read invoice: %w", err)
		}
		var fields extraction.InvoiceFields
		if err := json.Unmarshal(data, &fields); err != nil {
			return extraction.InvoiceFields{}, fmt.Errorf("failed to parse invoice json: %w", err)
		}
		if fields.Currency == "" {
			fields.Currency = extraction.DefaultCurrency
		}
		return fields, nil
	}

	text, err := p.readers.Read(path)
	if err != nil {
		return extraction.InvoiceFields{}, err
	}
	return p.extractor.Extract(text), nil
}
