package spotlight

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonesrussell/north-cloud/spotlight/infrastructure/events"
	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
)

// DefaultPageSize is the number of items fetched per page by the legacy scan.
const DefaultPageSize = 100

const tracerName = "github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"

var _ Core = (*Coordinator)(nil)

// Coordinator owns the migration re-entrancy flag and the query pipeline.
// One coordinator is shared by every request in a process.
type Coordinator struct {
	store      Store
	log        infralogger.Logger
	recorder   Recorder
	publisher  EventPublisher
	authorizer Authorizer
	tokens     Tokens
	tracer     trace.Tracer
	pipeline   *Pipeline
	pageSize   int
	docsURL    string

	upgrading atomic.Bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRecorder sets the activity recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithEventPublisher publishes membership changes.
func WithEventPublisher(p EventPublisher) Option {
	return func(c *Coordinator) { c.publisher = p }
}

// WithPageSize overrides DefaultPageSize.
func WithPageSize(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithDocsURL overrides the URL quoted by the deprecation notice.
func WithDocsURL(url string) Option {
	return func(c *Coordinator) {
		if url != "" {
			c.docsURL = url
		}
	}
}

// WithTracer overrides the global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Coordinator) { c.tracer = t }
}

// WithStage adds a query transform stage to the pipeline.
func WithStage(stage Stage) Option {
	return func(c *Coordinator) { c.pipeline.Add(stage) }
}

// New creates a Coordinator over store.
func New(store Store, log infralogger.Logger, opts ...Option) *Coordinator {
	if log == nil {
		log = infralogger.NewNop()
	}

	c := &Coordinator{
		store:      store,
		log:        log,
		recorder:   nopRecorder{},
		authorizer: RoleAuthorizer{},
		tracer:     otel.Tracer(tracerName),
		pipeline:   NewPipeline(),
		pageSize:   DefaultPageSize,
		docsURL:    DefaultDocsURL,
	}

	c.pipeline.Add(Stage{Name: "term-query-vars", Phase: PhaseBuild, Transform: resolveTermQueryVars})

	for _, opt := range opts {
		opt(c)
	}

	shim := &LegacyQueryShim{
		state:    c,
		options:  store,
		log:      log,
		recorder: c.recorder,
		docsURL:  c.docsURL,
	}
	c.pipeline.Add(Stage{Name: "legacy-meta-shim", Phase: PhaseRewrite, Transform: shim.Rewrite})

	return c
}

// InProgress reports whether the legacy scan is currently running.
func (c *Coordinator) InProgress() bool {
	return c.upgrading.Load()
}

// Pipeline exposes the query pipeline, mainly for inspection.
func (c *Coordinator) Pipeline() *Pipeline {
	return c.pipeline
}

// Init registers the featured group for the configured content types and
// runs the legacy scan when it has not completed yet.
func (c *Coordinator) Init(ctx context.Context) error {
	if err := c.RegisterGroup(ctx); err != nil {
		return err
	}

	if _, err := c.RunMigrationIfNeeded(ctx); err != nil {
		return fmt.Errorf("legacy flag migration: %w", err)
	}
	return nil
}

// RegisterGroup registers the featured group for the eligible content types
// and makes sure the featured term exists. It does nothing when no type is
// eligible.
func (c *Coordinator) RegisterGroup(ctx context.Context) error {
	types, err := c.EligibleTypes(ctx)
	if err != nil {
		return err
	}
	if len(types) == 0 {
		return nil
	}

	group := models.TermGroup{Name: FeatureGroup, Hierarchical: false, ContentTypes: types}
	if regErr := c.store.RegisterGroup(ctx, group); regErr != nil {
		return fmt.Errorf("register group %s: %w", FeatureGroup, regErr)
	}
	if termErr := c.store.EnsureTerm(ctx, FeatureGroup, FeaturedTerm, "Featured"); termErr != nil {
		return fmt.Errorf("ensure term %s: %w", FeaturedTerm, termErr)
	}

	c.log.Debug("Registered featured group", infralogger.Strings("content_types", types))
	return nil
}

// RewriteQuery runs the query through every pipeline stage without executing it.
func (c *Coordinator) RewriteQuery(ctx context.Context, q models.ItemQuery) models.ItemQuery {
	return c.pipeline.Run(ctx, q)
}

// Query rewrites q through the pipeline and executes it.
func (c *Coordinator) Query(ctx context.Context, q models.ItemQuery) (models.ItemPage, error) {
	ctx, span := c.tracer.Start(ctx, "spotlight.query")
	defer span.End()

	rewritten := c.pipeline.Run(ctx, q)
	span.SetAttributes(
		attribute.StringSlice("content_types", rewritten.ContentTypes),
		attribute.Int("meta_clauses", len(rewritten.Meta)),
		attribute.Int("tax_clauses", len(rewritten.Tax)),
	)

	page, err := c.store.FindItems(ctx, rewritten)
	if err != nil {
		span.RecordError(err)
		return models.ItemPage{}, fmt.Errorf("find items: %w", err)
	}
	return page, nil
}

// IsFeatured reports whether item carries the featured label.
func (c *Coordinator) IsFeatured(ctx context.Context, item models.Item) (bool, error) {
	ok, err := c.store.HasTerm(ctx, item.ID, FeatureGroup, FeaturedTerm)
	if err != nil {
		return false, fmt.Errorf("check featured membership for item %d: %w", item.ID, err)
	}
	return ok, nil
}

// FeaturedQuery builds the classification query for featured items.
func FeaturedQuery(contentType string, limit int) models.ItemQuery {
	q := models.ItemQuery{
		Tax:   []models.TaxClause{featuredClause()},
		Limit: limit,
	}
	if contentType != "" {
		q.ContentTypes = []string{contentType}
	}
	return q
}

func featuredClause() models.TaxClause {
	return models.TaxClause{
		Taxonomy: FeatureGroup,
		Field:    models.FieldSlug,
		Terms:    []string{FeaturedTerm},
	}
}

func (c *Coordinator) publish(ctx context.Context, eventType events.EventType, payload any) {
	if c.publisher == nil {
		return
	}

	event := events.FeatureEvent{EventType: eventType, Payload: payload}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.log.Warn("Failed to publish spotlight event",
			infralogger.String("event_type", string(eventType)),
			infralogger.Error(err),
		)
	}
}
