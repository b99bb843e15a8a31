package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/tsunami-statement-service/internal/domain"
	"github.com/couchcryptid/tsunami-statement-service/internal/observability"
	"github.com/robfig/cron/v3"
)

// ActiveIssuances lists the broadcasts that have not expired.
type ActiveIssuances interface {
	Active() []domain.IssuanceRecord
}

// AuditIssuances sets the active-issuance gauge for every hazard kind from
// the issuance log. It only reads the log.
func AuditIssuances(src ActiveIssuances, metrics *observability.Metrics, logger *slog.Logger) {
	active := make(map[domain.HazardKind]domain.IssuanceRecord, len(domain.AllHazards))
	for _, r := range src.Active() {
		active[r.Kind] = r
	}
	for _, k := range domain.AllHazards {
		r, ok := active[k]
		if !ok {
			metrics.ActiveIssuances.WithLabelValues(string(k)).Set(0)
			continue
		}
		metrics.ActiveIssuances.WithLabelValues(string(k)).Set(1)
		logger.Info("issuance still in effect", "hazard", k, "zones", domain.JoinZones(r.Zones), "expiry", r.Expiry)
	}
}

// ScheduleAudit registers AuditIssuances on a cron schedule such as
// "@every 5m". The caller starts and stops the returned scheduler.
func ScheduleAudit(schedule string, src ActiveIssuances, metrics *observability.Metrics, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		AuditIssuances(src, metrics, logger)
	}); err != nil {
		return nil, fmt.Errorf("schedule issuance audit: %w", err)
	}
	return c, nil
}
