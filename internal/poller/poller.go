// Package poller drives the reconciliation loop: it fetches the job snapshot
// from the bulk-download API on a jittered interval and hands it to the
// reconciliation engine.
package poller

import (
	"context"
	"time"

	jitterbug "github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"

	api "github.com/mediakit/asset-console/api/v1alpha1"
	"github.com/mediakit/asset-console/pkg/metrics"
)

// JobSource delivers the authoritative job snapshot.
type JobSource interface {
	ListJobs(ctx context.Context) ([]api.JobRecord, error)
}

// Reconciler consumes snapshots.
type Reconciler interface {
	Reconcile(ctx context.Context, jobs []api.JobRecord) error
}

type Poller struct {
	source     JobSource
	reconciler Reconciler
	interval   time.Duration
	log        *zap.SugaredLogger
}

func New(source JobSource, reconciler Reconciler, interval time.Duration) *Poller {
	return &Poller{
		source:     source,
		reconciler: reconciler,
		interval:   interval,
		log:        zap.S().Named("poller"),
	}
}

// Run polls until the context is cancelled. The first poll fires immediately;
// subsequent ones ride a jittered ticker so a fleet of consoles does not
// synchronize against the job API. A failed poll skips the cycle, leaving the
// feed on the previous snapshot.
func (p *Poller) Run(ctx context.Context) {
	ticker := jitterbug.New(p.interval, &jitterbug.Norm{Stdev: 30 * time.Millisecond, Mean: 0})
	defer ticker.Stop()

	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("poller stopped")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	jobs, err := p.source.ListJobs(ctx)
	if err != nil {
		metrics.IncreaseReconcileCyclesTotalMetric("poll_failed")
		p.log.Errorf("failed to list jobs: %v", err)
		return
	}

	if err := p.reconciler.Reconcile(ctx, jobs); err != nil {
		p.log.Errorf("reconciliation failed: %v", err)
	}
}
