package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/upgraded-notifs/notifs/internal/classifier"
	"github.com/upgraded-notifs/notifs/internal/config"
	"github.com/upgraded-notifs/notifs/internal/crawler"
	"github.com/upgraded-notifs/notifs/internal/domain"
	"github.com/upgraded-notifs/notifs/internal/logger"
	"github.com/upgraded-notifs/notifs/internal/notifier"
	"github.com/upgraded-notifs/notifs/internal/storage"
	"github.com/upgraded-notifs/notifs/pkg/httpclient"
	"github.com/upgraded-notifs/notifs/pkg/providers"
	"github.com/upgraded-notifs/notifs/pkg/publishers"
)

// ErrUnknownSource is returned when --source names a source that is not registered.
var ErrUnknownSource = errors.New("unknown source")

// RunOptions are the per-invocation switches from the command line.
type RunOptions struct {
	DryRun bool
	Source string
}

// Result describes what a run did.
type Result struct {
	Sources   []string
	Reports   []crawler.Report
	Matches   []domain.Listing
	SeenCount int
	Published int
	Emailed   bool
}

// Crawler processes sources and records classified listings in the seen set.
type Crawler interface {
	Run(ctx context.Context, cfgs []providers.Provider, seen domain.SeenSet, roles []string) ([]domain.Listing, []crawler.Report, error)
}

// Notifier delivers the digest of matches.
type Notifier interface {
	Send(ctx context.Context, matches []domain.Listing, digest config.Digest) error
}

// Components are the collaborators a Runner drives. Sinks may be nil.
type Components struct {
	Digest   config.Digest
	Sources  *providers.Registry
	Store    storage.Store
	Crawler  Crawler
	Notifier Notifier
	Sinks    *publishers.Fanout
}

// Runner executes one fetch, classify, persist and notify pass.
type Runner struct {
	digest   config.Digest
	sources  *providers.Registry
	store    storage.Store
	crawler  Crawler
	notifier Notifier
	sinks    *publishers.Fanout
	log      logger.Logger
}

// NewRunner builds a runner and all production dependencies from cfg.
func NewRunner(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)

	digest, err := config.LoadDigest(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load digest config: %w", err)
	}
	log.InfoObj("digest config loaded", "digest_meta", map[string]any{
		"path":      cfg.ConfigPath,
		"roles":     digest.Roles,
		"recipient": digest.RecipientEmail,
	})

	sourceReg, err := providers.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	log.InfoObj("sources registry loaded", "sources_meta", map[string]any{
		"count": len(sourceReg.All()),
		"ids":   sourceReg.IDs(),
	})

	gen, err := classifier.NewGenerator(ctx, classifier.Settings{
		Provider:        cfg.ClassifierType,
		Model:           cfg.ClassifierModel,
		MaxTokens:       cfg.ClassifierTokens,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		AnthropicURL:    cfg.AnthropicURL,
		GeminiAPIKey:    cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("init classifier: %w", err)
	}
	log.InfoObj("classifier initialized", "classifier_meta", map[string]any{
		"provider": cfg.ClassifierType,
		"model":    gen.Model(),
	})

	sinks, err := buildSinks(ctx, cfg.SinksFile, log)
	if err != nil {
		return nil, err
	}

	storePath := cfg.SeenPath
	if cfg.StorageType == storage.TypeBBolt {
		storePath = cfg.BBoltPath
	}
	store, err := storage.NewStore(cfg.StorageType, storePath, storage.Options{LegacySourceID: cfg.LegacySourceID})
	if err != nil {
		sinks.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": storePath,
	})

	fetchers := providers.DefaultFetcherRegistry(nil, os.Getenv)
	resend := notifier.NewResendClient(httpclient.NewRestyClient(cfg.HTTPTimeout), cfg.ResendURL, cfg.ResendAPIKey)

	return Assemble(Components{
		Digest:   *digest,
		Sources:  sourceReg,
		Store:    store,
		Crawler:  crawler.NewService(fetchers, classifier.New(gen, log), log),
		Notifier: notifier.New(resend, cfg.FromEmail, log),
		Sinks:    sinks,
	}, log)
}

// Assemble builds a runner from already constructed components.
func Assemble(c Components, log logger.Logger) (*Runner, error) {
	if c.Sources == nil || c.Store == nil || c.Crawler == nil || c.Notifier == nil {
		return nil, errors.New("runner requires sources, store, crawler and notifier")
	}
	if err := c.Digest.Validate(); err != nil {
		return nil, err
	}
	return &Runner{
		digest:   c.Digest,
		sources:  c.Sources,
		store:    c.Store,
		crawler:  c.Crawler,
		notifier: c.Notifier,
		sinks:    c.Sinks,
		log:      logger.Ensure(log),
	}, nil
}

func buildSinks(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// SelectSources returns every registered source, or only the one named.
func SelectSources(reg *providers.Registry, name string) ([]providers.Provider, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return reg.All(), nil
	}
	if p, ok := reg.ByID(name); ok {
		return []providers.Provider{p}, nil
	}
	return nil, fmt.Errorf("%w %q; valid: %s", ErrUnknownSource, name, strings.Join(reg.IDs(), ", "))
}

// Run performs one pass. The seen set is saved whenever it was loaded,
// including after source failures or cancellation.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if r == nil || r.crawler == nil {
		return nil, fmt.Errorf("runner is not initialized")
	}

	cfgs, err := SelectSources(r.sources, opts.Source)
	if err != nil {
		return nil, err
	}
	res := &Result{Sources: make([]string, 0, len(cfgs))}
	for _, c := range cfgs {
		res.Sources = append(res.Sources, c.ID)
	}

	seen, err := r.store.Load()
	if err != nil {
		return res, fmt.Errorf("load seen set: %w", err)
	}
	r.log.InfoObj("seen set loaded", "seen_meta", map[string]any{"count": seen.Len()})

	matches, reports, crawlErr := r.crawler.Run(ctx, cfgs, seen, r.digest.Roles)
	res.Matches = matches
	res.Reports = reports

	if err := r.store.Save(seen); err != nil {
		return res, errors.Join(crawlErr, fmt.Errorf("save seen set: %w", err))
	}
	res.SeenCount = seen.Len()
	r.log.InfoObj("seen set saved", "seen_meta", map[string]any{"count": res.SeenCount})

	if crawlErr != nil {
		return res, fmt.Errorf("crawl: %w", crawlErr)
	}

	if len(matches) == 0 {
		r.log.InfoObj("no new matching listings", "run_result", map[string]any{"sources": res.Sources})
		return res, nil
	}

	if opts.DryRun {
		r.log.InfoObj(fmt.Sprintf("[dry-run] would email %d matching listing(s)", len(matches)), "dry_run", map[string]any{
			"matches": len(matches),
		})
		return res, nil
	}

	res.Published = r.publish(ctx, matches)

	if err := r.notifier.Send(ctx, matches, r.digest); err != nil {
		return res, fmt.Errorf("notify: %w", err)
	}
	res.Emailed = true
	return res, nil
}

// publish forwards matches to sinks. Sink failures are logged only.
func (r *Runner) publish(ctx context.Context, matches []domain.Listing) int {
	if r.sinks.Size() == 0 {
		return 0
	}
	delivered := 0
	for _, m := range matches {
		sourceID, _, _ := strings.Cut(m.ID, domain.IDDelimiter)
		n, err := r.sinks.Publish(ctx, publishers.NewEvent(sourceID, m.Source, m))
		delivered += n
		if err != nil {
			r.log.WarnObj("sink publish failed", "sink_error", map[string]any{
				"listing_id": m.ID,
				"error":      err.Error(),
			})
		}
	}
	return delivered
}

// Close releases the store and sink clients.
func (r *Runner) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if err := r.sinks.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close sinks: %w", err))
	}
	return errors.Join(errs...)
}
