package spotlight

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jonesrussell/north-cloud/spotlight/infrastructure/events"
	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
)

// MigrationReport summarizes one run of the legacy scan.
type MigrationReport struct {
	// Skipped is set when the marker was already written or a scan was
	// already running in this process.
	Skipped bool `json:"skipped"`
	Pages   int  `json:"pages"`
	Matched int  `json:"matched"`
	// Added counts memberships created; items that already carried the
	// label are matched but not added.
	Added    int `json:"added"`
	Failures int `json:"failures"`
}

// RunMigrationIfNeeded runs the legacy scan when the version marker is
// absent.
func (c *Coordinator) RunMigrationIfNeeded(ctx context.Context) (MigrationReport, error) {
	marker, ok, err := c.store.GetOption(ctx, VersionOption)
	if err != nil {
		return MigrationReport{}, fmt.Errorf("read %s: %w", VersionOption, err)
	}
	if ok && marker != "" {
		return MigrationReport{Skipped: true}, nil
	}

	return c.RunMigration(ctx)
}

// RunMigration scans every item carrying the legacy flag, gives it the
// featured membership and deletes the flag, then writes the version marker.
// The marker is only written after a scan that reached the last page.
func (c *Coordinator) RunMigration(ctx context.Context) (MigrationReport, error) {
	if !c.upgrading.CompareAndSwap(false, true) {
		return MigrationReport{Skipped: true}, nil
	}
	defer c.upgrading.Store(false)

	ctx, span := c.tracer.Start(ctx, "spotlight.migrate_legacy_flags")
	defer span.End()

	c.log.Info("Starting legacy featured flag migration", infralogger.Int("page_size", c.pageSize))

	report, err := c.scanLegacyFlags(ctx)
	span.SetAttributes(
		attribute.Int("pages", report.Pages),
		attribute.Int("matched", report.Matched),
		attribute.Int("failures", report.Failures),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan aborted")
		return report, err
	}

	if setErr := c.store.SetOption(ctx, VersionOption, CurrentVersion); setErr != nil {
		span.RecordError(setErr)
		return report, fmt.Errorf("write %s: %w", VersionOption, setErr)
	}

	c.recorder.MigrationCompleted(report.Matched)
	c.publish(ctx, events.MigrationCompleted, events.MigrationPayload{
		Migrated: report.Added,
		Version:  CurrentVersion,
	})

	c.log.Info("Legacy featured flag migration complete",
		infralogger.Int("pages", report.Pages),
		infralogger.Int("matched", report.Matched),
		infralogger.Int("added", report.Added),
		infralogger.Int("failures", report.Failures),
		infralogger.String("version", CurrentVersion),
	)
	return report, nil
}

// scanLegacyFlags pages through flagged items until a page comes back empty.
//
// Converted items drop out of the result set as their flag is deleted, so
// the offset only advances past items whose flag could not be deleted.
// Advancing by the full page size would skip unconverted items.
func (c *Coordinator) scanLegacyFlags(ctx context.Context) (MigrationReport, error) {
	var report MigrationReport

	if err := c.store.EnsureTerm(ctx, FeatureGroup, FeaturedTerm, "Featured"); err != nil {
		return report, fmt.Errorf("ensure term %s: %w", FeaturedTerm, err)
	}

	q := models.ItemQuery{
		Statuses: []string{models.StatusAny},
		Meta:     []models.MetaClause{{Key: LegacyMetaKey}},
		Limit:    c.pageSize,
		Offset:   0,
		NoCache:  true,
	}

	for {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("migration interrupted: %w", err)
		}

		page, err := c.Query(ctx, q)
		if err != nil {
			return report, fmt.Errorf("fetch page at offset %d: %w", q.Offset, err)
		}
		report.Pages++

		if len(page.Items) == 0 {
			return report, nil
		}

		for _, item := range page.Items {
			report.Matched++
			if !c.migrateItem(ctx, item, &report) {
				q.Offset++
			}
		}
	}
}

// migrateItem converts one item. It returns false when the legacy flag is
// still present afterwards.
func (c *Coordinator) migrateItem(ctx context.Context, item models.Item, report *MigrationReport) bool {
	log := c.log.With(infralogger.Int64("item_id", item.ID))

	has, err := c.store.HasTerm(ctx, item.ID, FeatureGroup, FeaturedTerm)
	switch {
	case err != nil:
		report.Failures++
		c.recorder.MigrationFailure("check_membership")
		log.Error("Failed to check featured membership", infralogger.Error(err))
	case !has:
		if addErr := c.store.AddItemTerm(ctx, item.ID, FeatureGroup, FeaturedTerm); addErr != nil {
			report.Failures++
			c.recorder.MigrationFailure("add_membership")
			log.Error("Failed to add featured membership", infralogger.Error(addErr))
		} else {
			report.Added++
			c.recorder.ItemMigrated()
			c.publish(ctx, events.FeatureAdded, events.MembershipPayload{
				ItemID:      item.ID,
				ContentType: item.ContentType,
				Source:      "migration",
			})
		}
	}

	if delErr := c.store.DeleteMeta(ctx, item.ID, LegacyMetaKey); delErr != nil {
		report.Failures++
		c.recorder.MigrationFailure("delete_flag")
		log.Error("Failed to delete legacy flag", infralogger.Error(delErr))
		return false
	}
	return true
}
