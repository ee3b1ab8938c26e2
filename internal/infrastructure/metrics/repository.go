package metrics

import (
	"context"
	"time"

	"github.com/asakaida/permission-manager/internal/entities"
	"github.com/asakaida/permission-manager/internal/repositories"
)

// Store operation label values
const (
	OpReadAll = "read_all"
	OpUpsert  = "upsert"
	OpGet     = "get"
)

// InstrumentedRepository records metrics for every call to the wrapped repository.
type InstrumentedRepository struct {
	next     repositories.PermissionRepository
	exporter *PrometheusExporter
}

// NewInstrumentedRepository wraps repo so each operation is counted and timed.
func NewInstrumentedRepository(repo repositories.PermissionRepository, exporter *PrometheusExporter) repositories.PermissionRepository {
	return &InstrumentedRepository{next: repo, exporter: exporter}
}

func (r *InstrumentedRepository) observe(op string, start time.Time, err error) {
	r.exporter.RecordOperation(op)
	r.exporter.RecordDuration(op, time.Since(start).Seconds())
	if err != nil {
		r.exporter.RecordError(op)
	}
}

// ReadAll implements repositories.PermissionRepository
func (r *InstrumentedRepository) ReadAll(ctx context.Context) ([]*entities.PermissionEntry, error) {
	start := time.Now()
	entries, err := r.next.ReadAll(ctx)
	r.observe(OpReadAll, start, err)

	if err == nil {
		counts := map[string]int{}
		for _, label := range entities.DecisionLabels() {
			counts[label] = 0
		}
		for _, e := range entries {
			counts[e.Decision.Label()]++
		}
		r.exporter.SetEntries(counts)
	}

	return entries, err
}

// Upsert implements repositories.PermissionRepository
func (r *InstrumentedRepository) Upsert(ctx context.Context, entry *entities.PermissionEntry) error {
	start := time.Now()
	err := r.next.Upsert(ctx, entry)
	r.observe(OpUpsert, start, err)
	return err
}

// Get implements repositories.PermissionRepository
func (r *InstrumentedRepository) Get(ctx context.Context, applicationIdentity string) (*entities.PermissionEntry, error) {
	start := time.Now()
	entry, err := r.next.Get(ctx, applicationIdentity)
	r.observe(OpGet, start, err)
	return entry, err
}
