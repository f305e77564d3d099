package spotlight

import (
	"context"
	"slices"

	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
)

// Phase orders query transform stages. Stages run in phase order; stages
// within a phase run in the order they were added.
type Phase int

const (
	// PhaseBuild stages construct the query from request input.
	PhaseBuild Phase = iota
	// PhaseRefine stages adjust a built query.
	PhaseRefine
	// PhaseRewrite stages run last, immediately before execution.
	PhaseRewrite
)

func (p Phase) String() string {
	switch p {
	case PhaseBuild:
		return "build"
	case PhaseRefine:
		return "refine"
	case PhaseRewrite:
		return "rewrite"
	default:
		return "unknown"
	}
}

// TransformFunc transforms a query. It must not mutate slices it did not
// allocate; the pipeline hands each stage its own clone.
type TransformFunc func(ctx context.Context, q models.ItemQuery) models.ItemQuery

// Stage is a named step of the query pipeline.
type Stage struct {
	Name      string
	Phase     Phase
	Transform TransformFunc
}

// Pipeline is an ordered list of query transform stages.
type Pipeline struct {
	stages []Stage
}

// NewPipeline returns an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Add inserts stage after every stage of the same or an earlier phase.
func (p *Pipeline) Add(stage Stage) {
	idx := len(p.stages)
	for i, s := range p.stages {
		if s.Phase > stage.Phase {
			idx = i
			break
		}
	}
	p.stages = slices.Insert(p.stages, idx, stage)
}

// Names returns the stage names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.stages))
	for _, s := range p.stages {
		names = append(names, s.Name)
	}
	return names
}

// Run applies every stage to a clone of q.
func (p *Pipeline) Run(ctx context.Context, q models.ItemQuery) models.ItemQuery {
	out := q.Clone()
	for _, s := range p.stages {
		out = s.Transform(ctx, out.Clone())
	}
	return out
}

// resolveTermQueryVars turns a pts_feature_tax=<slug> request filter into a
// classification clause.
func resolveTermQueryVars(_ context.Context, q models.ItemQuery) models.ItemQuery {
	slug, ok := q.QueryVars[FeatureGroup]
	if !ok || slug == "" {
		return q
	}

	delete(q.QueryVars, FeatureGroup)
	q.Tax = append(q.Tax, models.TaxClause{
		Taxonomy: FeatureGroup,
		Field:    models.FieldSlug,
		Terms:    []string{slug},
	})
	return q
}
