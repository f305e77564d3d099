package spotlight

import (
	"context"

	"golang.org/x/mod/semver"

	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
)

// LegacyQueryShim replaces meta clauses on the legacy flag with the
// equivalent featured classification clause. It stays inert while the
// legacy scan runs and until the version marker reaches CurrentVersion.
type LegacyQueryShim struct {
	state    MigrationState
	options  OptionStore
	log      infralogger.Logger
	recorder Recorder
	docsURL  string
}

// NewLegacyQueryShim creates a shim guarded by state and the version marker.
func NewLegacyQueryShim(state MigrationState, options OptionStore, log infralogger.Logger) *LegacyQueryShim {
	if log == nil {
		log = infralogger.NewNop()
	}
	return &LegacyQueryShim{
		state:    state,
		options:  options,
		log:      log,
		recorder: nopRecorder{},
		docsURL:  DefaultDocsURL,
	}
}

// Rewrite is a pipeline TransformFunc.
func (s *LegacyQueryShim) Rewrite(ctx context.Context, q models.ItemQuery) models.ItemQuery {
	if len(q.Meta) == 0 || s.state.InProgress() {
		return q
	}

	if !s.migrated(ctx) {
		return q
	}

	kept := make([]models.MetaClause, 0, len(q.Meta))
	rewritten := 0
	for _, clause := range q.Meta {
		if clause.Key != LegacyMetaKey {
			kept = append(kept, clause)
			continue
		}

		q.Tax = append(q.Tax, featuredClause())
		rewritten++

		s.log.Warn("Deprecated query argument rewritten",
			infralogger.String("legacy_key", LegacyMetaKey),
			infralogger.String("replacement_group", FeatureGroup),
			infralogger.String("replacement_term", FeaturedTerm),
			infralogger.String("since", CurrentVersion),
			infralogger.String("docs_url", s.docsURL),
		)
	}

	if rewritten == 0 {
		return q
	}

	q.Meta = kept
	s.recorder.QueryRewritten(rewritten)
	return q
}

// migrated reports whether the version marker is at least CurrentVersion.
// A marker that cannot be read counts as not migrated.
func (s *LegacyQueryShim) migrated(ctx context.Context) bool {
	marker, ok, err := s.options.GetOption(ctx, VersionOption)
	if err != nil {
		s.log.Error("Failed to read version marker", infralogger.Error(err))
		return false
	}
	if !ok || marker == "" {
		return false
	}
	return semver.Compare(canonical(marker), canonical(CurrentVersion)) >= 0
}

// canonical prefixes a bare version with "v" for semver.Compare. Invalid
// versions compare below every valid one.
func canonical(v string) string {
	if v != "" && v[0] != 'v' {
		return "v" + v
	}
	return v
}
