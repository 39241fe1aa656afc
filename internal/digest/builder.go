package digest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/jira-digest/internal/domain"
)

// Options configures a Builder.
type Options struct {
	BaseURL string
	// Self is the caller's email; comments are matched against it in self mode.
	Self        domain.Identity
	Concurrency int
}

// Builder runs the full digest pipeline against one gateway.
type Builder struct {
	fetcher  *Fetcher
	renderer *Renderer
	resolver *Resolver
	self     domain.Identity
	logger   *zap.Logger
	now      func() time.Time
}

// NewBuilder wires the pipeline stages around gateway.
func NewBuilder(gateway Gateway, opts Options, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		fetcher:  NewFetcher(gateway, logger, opts.Concurrency),
		renderer: NewRenderer(gateway, opts.BaseURL, logger, opts.Concurrency),
		resolver: NewResolver(gateway, logger),
		self:     opts.Self,
		logger:   logger,
		now:      time.Now,
	}
}

// Build fetches, renders, resolves and sanitizes one digest. It fails only
// when the self-mode search fails; every other failure is recorded on the
// returned digest as a warning.
func (b *Builder) Build(ctx context.Context, req domain.DigestRequest) (*domain.Digest, error) {
	mode := req.Mode()
	id := uuid.NewString()
	logger := b.logger.With(zap.String("build_id", id), zap.Stringer("mode", mode))

	fetched, err := b.fetcher.Fetch(ctx, req.Identities, req.LookbackDays)
	if err != nil {
		logger.Error("ticket search failed", zap.Error(err))
		return nil, err
	}

	text, renderWarnings := b.renderer.Render(ctx, RenderInput{
		Tickets:       fetched.Tickets,
		CommentLength: req.CommentLength,
		Mode:          mode,
		Self:          b.self,
	})

	warnings := append(fetched.Warnings, renderWarnings...)
	text, refWarning := b.resolver.Resolve(ctx, text)
	if refWarning != nil {
		warnings = append(warnings, *refWarning)
	}

	digest := &domain.Digest{
		ID:          id,
		Text:        finalize(Sanitize(text)),
		Mode:        mode,
		TicketCount: len(fetched.Tickets),
		Warnings:    warnings,
		GeneratedAt: b.now().UTC(),
	}
	logger.Info("digest built",
		zap.Int("tickets", digest.TicketCount),
		zap.Int("warnings", len(warnings)),
	)
	return digest, nil
}
