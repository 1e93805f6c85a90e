package management

import (
	"context"
	"sync"
	"time"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
)

const (
	DefaultPollInterval = 30 * time.Second
	RecentReportDays    = 7
	RecentReportLimit   = 10
)

// Source is the part of the session server the manager dashboard reads.
type Source interface {
	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
	PendingChecklists(ctx context.Context) ([]domain.PendingChecklist, error)
	RecentShiftReports(ctx context.Context, days, limit int) ([]domain.ShiftReport, error)
}

// View is the last known state of the dashboard. Each block keeps its previous
// value when its fetch fails.
type View struct {
	Stats     domain.DashboardStats     `json:"stats"`
	Pending   []domain.PendingChecklist `json:"pendingChecklists"`
	Reports   []domain.ShiftReport      `json:"recentReports"`
	UpdatedAt *time.Time                `json:"updatedAt"`
	Stale     bool                      `json:"stale"`
}

// Dashboard polls the manager statistics on a fixed interval, without backoff:
// a failed tick is logged and the next one retries.
type Dashboard struct {
	log      *logger.Logger
	src      Source
	interval time.Duration
	onUpdate func(View)

	mu   sync.RWMutex
	view View
}

func NewDashboard(log *logger.Logger, src Source, interval time.Duration, onUpdate func(View)) *Dashboard {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Dashboard{
		log:      log.With("service", "ManagementDashboard"),
		src:      src,
		interval: interval,
		onUpdate: onUpdate,
		view: View{
			Pending: []domain.PendingChecklist{},
			Reports: []domain.ShiftReport{},
		},
	}
}

func (d *Dashboard) View() View {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v := d.view
	v.Pending = append([]domain.PendingChecklist(nil), d.view.Pending...)
	v.Reports = append([]domain.ShiftReport(nil), d.view.Reports...)
	return v
}

// Run refreshes immediately, then on every tick until ctx is done.
func (d *Dashboard) Run(ctx context.Context) {
	d.log.Info("Starting dashboard poller", "interval", d.interval.String())
	d.Refresh(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.log.Info("Dashboard poller stopped")
			return
		case <-ticker.C:
			d.Refresh(ctx)
		}
	}
}

// Refresh fetches the three blocks in parallel and reports whether all of them
// succeeded.
func (d *Dashboard) Refresh(ctx context.Context) bool {
	var (
		stats      domain.DashboardStats
		pending    []domain.PendingChecklist
		reports    []domain.ShiftReport
		statsErr   error
		pendingErr error
		reportsErr error
	)
	// Blocks fail independently; one error must not cancel the others.
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		stats, statsErr = d.src.DashboardStats(ctx)
	}()
	go func() {
		defer wg.Done()
		pending, pendingErr = d.src.PendingChecklists(ctx)
	}()
	go func() {
		defer wg.Done()
		reports, reportsErr = d.src.RecentShiftReports(ctx, RecentReportDays, RecentReportLimit)
	}()
	wg.Wait()

	ok := statsErr == nil && pendingErr == nil && reportsErr == nil
	if statsErr != nil {
		d.log.Warn("dashboard stats fetch failed", "error", statsErr)
	}
	if pendingErr != nil {
		d.log.Warn("pending checklists fetch failed", "error", pendingErr)
	}
	if reportsErr != nil {
		d.log.Warn("recent reports fetch failed", "error", reportsErr)
	}

	d.mu.Lock()
	if statsErr == nil {
		d.view.Stats = stats
	}
	if pendingErr == nil {
		d.view.Pending = nonNil(pending)
	}
	if reportsErr == nil {
		d.view.Reports = nonNil(reports)
	}
	if ok {
		now := time.Now().UTC()
		d.view.UpdatedAt = &now
	}
	d.view.Stale = !ok
	d.mu.Unlock()

	if d.onUpdate != nil {
		d.onUpdate(d.View())
	}
	return ok
}

// RemovePending drops signed checklists from the view without waiting for the
// next tick.
func (d *Dashboard) RemovePending(ids ...int) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[int]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	d.mu.Lock()
	kept := d.view.Pending[:0:0]
	for _, p := range d.view.Pending {
		if !drop[p.ID] {
			kept = append(kept, p)
		}
	}
	d.view.Pending = kept
	d.mu.Unlock()
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
