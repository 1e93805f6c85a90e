package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tissage-sgq/shiftconsole/internal/clients/shiftapi"
	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
)

const DefaultCatalogTTL = 10 * time.Minute

const (
	catalogDefectTypes       = "defect_types"
	catalogLostTimeReasons   = "lost_time_reasons"
	catalogChecklistTemplate = "checklist_template"
	catalogOperators         = "operators"
	catalogProfiles          = "profiles"
	catalogModes             = "modes"
)

// DataLoader fetches what a console needs at startup. Catalogs are shared by
// every console and cached; per-shift data never is. A failed fetch degrades to
// the plant defaults instead of failing the console.
type DataLoader interface {
	Catalogs(ctx context.Context, api shiftapi.Client) domain.Catalogs
	ShiftData(ctx context.Context, api shiftapi.Client, shiftID string) domain.ShiftData
	Defaults() domain.PlantDefaults
	Invalidate()
}

type cacheEntry struct {
	value   any
	expires time.Time
}

type dataLoader struct {
	log      *logger.Logger
	defaults domain.PlantDefaults
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
	group singleflight.Group
}

func NewDataLoader(log *logger.Logger, defaults domain.PlantDefaults, ttl time.Duration) DataLoader {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &dataLoader{
		log:      log.With("service", "DataLoader"),
		defaults: completeDefaults(defaults),
		ttl:      ttl,
		now:      time.Now,
		cache:    map[string]cacheEntry{},
	}
}

func (l *dataLoader) Defaults() domain.PlantDefaults { return l.defaults }

func (l *dataLoader) Invalidate() {
	l.mu.Lock()
	l.cache = map[string]cacheEntry{}
	l.mu.Unlock()
}

func (l *dataLoader) lookup(key string) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.cache[key]
	if !ok || l.now().After(e.expires) {
		return nil, false
	}
	return e.value, true
}

func (l *dataLoader) store(key string, v any) {
	l.mu.Lock()
	l.cache[key] = cacheEntry{value: v, expires: l.now().Add(l.ttl)}
	l.mu.Unlock()
}

// cachedFetch collapses concurrent misses on key into one upstream call.
func cachedFetch[T any](ctx context.Context, l *dataLoader, key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := l.lookup(key); ok {
		return v.(T), nil
	}
	v, err, _ := l.group.Do(key, func() (any, error) {
		if v, ok := l.lookup(key); ok {
			return v, nil
		}
		out, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		l.store(key, out)
		return out, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (l *dataLoader) Catalogs(ctx context.Context, api shiftapi.Client) domain.Catalogs {
	var (
		out      domain.Catalogs
		mu       sync.Mutex
		degraded []string
	)
	fallback := func(name string, err error) {
		l.log.Warn("catalog fetch failed, using plant defaults", "catalog", name, "error", err)
		mu.Lock()
		degraded = append(degraded, name)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := cachedFetch(gctx, l, catalogDefectTypes, api.ListDefectTypes)
		if err != nil || len(v) == 0 {
			if err == nil {
				err = fmt.Errorf("empty catalog")
			}
			fallback(catalogDefectTypes, err)
			v = append([]domain.DefectType{}, l.defaults.DefectTypes...)
		}
		out.DefectTypes = v
		return nil
	})
	g.Go(func() error {
		v, err := cachedFetch(gctx, l, catalogLostTimeReasons, api.ListLostTimeReasons)
		if err != nil {
			fallback(catalogLostTimeReasons, err)
			v = append([]domain.LostTimeReason{}, l.defaults.LostTimeReasons...)
		}
		out.LostTimeReasons = v
		return nil
	})
	g.Go(func() error {
		v, err := cachedFetch(gctx, l, catalogChecklistTemplate, api.DefaultChecklistTemplate)
		if err != nil || len(v.Items) == 0 {
			if err == nil {
				err = fmt.Errorf("empty template")
			}
			fallback(catalogChecklistTemplate, err)
			v = domain.ChecklistTemplate{Items: append([]domain.ChecklistItem{}, l.defaults.ChecklistItems...)}
		}
		out.ChecklistTemplate = v
		return nil
	})
	g.Go(func() error {
		v, err := cachedFetch(gctx, l, catalogOperators, api.ListOperators)
		if err != nil {
			fallback(catalogOperators, err)
			v = []domain.Operator{}
		}
		out.Operators = v
		return nil
	})
	g.Go(func() error {
		v, err := cachedFetch(gctx, l, catalogProfiles, api.ListProfiles)
		if err != nil {
			fallback(catalogProfiles, err)
			v = []domain.ProfileSummary{}
		}
		out.Profiles = v
		return nil
	})
	g.Go(func() error {
		// Modes carry live on/off state, so they bypass the cache.
		v, err := api.ListModes(gctx)
		if err != nil {
			fallback(catalogModes, err)
			v = []domain.Mode{}
		}
		out.Modes = v
		return nil
	})
	_ = g.Wait()

	out.Degraded = degraded
	return out
}

func (l *dataLoader) ShiftData(ctx context.Context, api shiftapi.Client, shiftID string) domain.ShiftData {
	out := domain.ShiftData{
		LostTimeEntries:    []domain.LostTimeEntry{},
		ChecklistResponses: []domain.ChecklistResponse{},
	}
	shiftID = strings.TrimSpace(shiftID)
	if shiftID == "" {
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := api.ListLostTimeEntries(gctx, shiftID)
		if err != nil {
			l.log.Warn("lost time entries fetch failed", "shift_id", shiftID, "error", err)
			return nil
		}
		out.LostTimeEntries = v
		return nil
	})
	g.Go(func() error {
		v, err := api.ListChecklistResponses(gctx, shiftID)
		if err != nil {
			l.log.Warn("checklist responses fetch failed", "shift_id", shiftID, "error", err)
			return nil
		}
		out.ChecklistResponses = v
		return nil
	})
	_ = g.Wait()
	return out
}
