package management

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
)

type fakeSource struct {
	stats    domain.DashboardStats
	pending  []domain.PendingChecklist
	statsErr error
	calls    chan struct{}
}

func (f *fakeSource) DashboardStats(context.Context) (domain.DashboardStats, error) {
	if f.calls != nil {
		select {
		case f.calls <- struct{}{}:
		default:
		}
	}
	return f.stats, f.statsErr
}

func (f *fakeSource) PendingChecklists(context.Context) ([]domain.PendingChecklist, error) {
	return f.pending, nil
}

func (f *fakeSource) RecentShiftReports(_ context.Context, days, limit int) ([]domain.ShiftReport, error) {
	if days != RecentReportDays || limit != RecentReportLimit {
		return nil, errors.New("unexpected window")
	}
	return []domain.ShiftReport{{ID: 1, ShiftID: "S1"}}, nil
}

func TestRefreshKeepsLastGoodBlock(t *testing.T) {
	src := &fakeSource{
		stats:   domain.DashboardStats{CurrentKPIs: domain.CurrentKPIs{ShiftsCount: 3}},
		pending: []domain.PendingChecklist{{ID: 5}, {ID: 6}},
	}
	var updates int
	d := NewDashboard(logger.Nop(), src, time.Minute, func(View) { updates++ })

	if !d.Refresh(context.Background()) {
		t.Fatalf("first refresh: want ok")
	}
	src.statsErr = errors.New("down")
	src.stats = domain.DashboardStats{}
	if d.Refresh(context.Background()) {
		t.Fatalf("second refresh: want failure")
	}
	v := d.View()
	if v.Stats.CurrentKPIs.ShiftsCount != 3 || !v.Stale {
		t.Fatalf("view after failure: got=%+v", v)
	}
	if len(v.Reports) != 1 || updates != 2 {
		t.Fatalf("reports=%d updates=%d", len(v.Reports), updates)
	}

	d.RemovePending(5)
	if got := d.View().Pending; len(got) != 1 || got[0].ID != 6 {
		t.Fatalf("pending after removal: got=%+v", got)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &fakeSource{calls: make(chan struct{}, 8)}
	d := NewDashboard(logger.Nop(), src, 5*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	<-src.calls
	<-src.calls
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop")
	}
}

type slowPendingSource struct {
	fakeSource
	statsDone chan struct{}
	ctxErr    error
}

func (s *slowPendingSource) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	defer close(s.statsDone)
	return domain.DashboardStats{}, errors.New("down")
}

func (s *slowPendingSource) PendingChecklists(ctx context.Context) ([]domain.PendingChecklist, error) {
	<-s.statsDone
	s.ctxErr = ctx.Err()
	return []domain.PendingChecklist{{ID: 9}}, nil
}

func TestFailedBlockDoesNotCancelSiblings(t *testing.T) {
	src := &slowPendingSource{statsDone: make(chan struct{})}
	d := NewDashboard(logger.Nop(), src, time.Minute, nil)

	if d.Refresh(context.Background()) {
		t.Fatalf("refresh: want failure")
	}
	if src.ctxErr != nil {
		t.Fatalf("pending fetch context: want=nil got=%v", src.ctxErr)
	}
	if got := d.View().Pending; len(got) != 1 || got[0].ID != 9 {
		t.Fatalf("pending: got=%+v", got)
	}
}
