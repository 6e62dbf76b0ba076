package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driving"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/logger"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// DefaultNameLimit is the lookup limit used when a caller passes none.
const DefaultNameLimit = 10

// catalogEntry is a record with its lookup keys precomputed.
type catalogEntry struct {
	record  domain.ReferenceRecord
	name    string
	nameEn  string
	company string
	front   string
	back    string
}

// catalogSnapshot is an immutable view of one successful load.
type catalogSnapshot struct {
	entries []catalogEntry
	byID    map[string]int
}

// CatalogService is the in-memory reference catalog.
// Reads never block on a load; a load builds a new snapshot and swaps it in.
type CatalogService struct {
	source   driven.ReferenceSource
	snapshot atomic.Pointer[catalogSnapshot]
	loadMu   sync.Mutex
}

// NewCatalogService creates an unloaded catalog backed by source.
func NewCatalogService(source driven.ReferenceSource) *CatalogService {
	return &CatalogService{source: source}
}

// Load reads the reference dataset. On failure the catalog becomes unloaded.
func (c *CatalogService) Load(ctx context.Context) domain.LoadResult {
	return c.load(ctx, false)
}

// Reload reads the reference dataset again. On failure the current
// snapshot stays in place.
func (c *CatalogService) Reload(ctx context.Context) domain.LoadResult {
	return c.load(ctx, true)
}

func (c *CatalogService) load(ctx context.Context, keepOnFailure bool) domain.LoadResult {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	logger.Section("Catalog Load")
	defer logger.Elapsed("catalog load", time.Now())

	fail := func(reason string, batch *domain.SourceBatch) domain.LoadResult {
		logger.Warn("catalog not loaded: %s", reason)
		if !keepOnFailure {
			c.snapshot.Store(nil)
		}
		res := domain.LoadResult{State: c.State(), Records: c.Count(), Reason: reason}
		if batch != nil {
			res.Files = batch.Files
			res.Skipped = batch.SkippedFiles + batch.SkippedRecords
		}
		return res
	}

	if c.source == nil {
		return fail("no reference source configured", nil)
	}
	logger.Debug("Reading reference records from %s", c.source.Location())

	batch, err := c.source.Read(ctx)
	if err != nil {
		return fail(err.Error(), nil)
	}
	if batch == nil || len(batch.Records) == 0 {
		return fail("source contains no records", batch)
	}

	snap, duplicates := buildSnapshot(batch.Records)
	skipped := batch.SkippedFiles + batch.SkippedRecords + duplicates
	if skipped > 0 {
		logger.Warn("skipped %d malformed items (%d files, %d records, %d duplicate ids)",
			skipped, batch.SkippedFiles, batch.SkippedRecords, duplicates)
	}

	c.snapshot.Store(snap)
	logger.Info("Catalog ready: %d records from %d files", len(snap.entries), batch.Files)

	return domain.LoadResult{
		State:   domain.CatalogReady,
		Records: len(snap.entries),
		Files:   batch.Files,
		Skipped: skipped,
	}
}

// buildSnapshot indexes records by id, dropping later duplicates.
func buildSnapshot(records []domain.ReferenceRecord) (*catalogSnapshot, int) {
	snap := &catalogSnapshot{
		entries: make([]catalogEntry, 0, len(records)),
		byID:    make(map[string]int, len(records)),
	}
	duplicates := 0
	for i := range records {
		r := records[i]
		if _, exists := snap.byID[r.ID]; exists {
			duplicates++
			continue
		}
		snap.byID[r.ID] = len(snap.entries)
		snap.entries = append(snap.entries, catalogEntry{
			record:  r,
			name:    normalizeText(r.Name),
			nameEn:  normalizeText(r.NameEn),
			company: normalizeText(r.Company),
			front:   imprintKey(r.ImprintFront),
			back:    imprintKey(r.ImprintBack),
		})
	}
	return snap, duplicates
}

func imprintKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// State returns the current lifecycle state.
func (c *CatalogService) State() domain.CatalogState {
	if c.snapshot.Load() == nil {
		return domain.CatalogUnloaded
	}
	return domain.CatalogReady
}

// Count returns the number of loaded records.
func (c *CatalogService) Count() int {
	snap := c.snapshot.Load()
	if snap == nil {
		return 0
	}
	return len(snap.entries)
}

// FindByName returns records whose name, alternate name or company contains
// query, checked in that order, stopping once limit records are found.
func (c *CatalogService) FindByName(query string, limit int) []domain.ReferenceRecord {
	snap := c.snapshot.Load()
	q := normalizeText(query)
	if snap == nil || q == "" {
		return []domain.ReferenceRecord{}
	}
	if limit <= 0 {
		limit = DefaultNameLimit
	}

	results := make([]domain.ReferenceRecord, 0, limit)
	for i := range snap.entries {
		e := &snap.entries[i]
		if strings.Contains(e.name, q) ||
			(e.nameEn != "" && strings.Contains(e.nameEn, q)) ||
			(e.company != "" && strings.Contains(e.company, q)) {
			results = append(results, e.record)
			if len(results) >= limit {
				break
			}
		}
	}
	return results
}

// FindByImprint returns records whose imprints equal every non-empty argument.
// With both arguments empty it returns nothing.
func (c *CatalogService) FindByImprint(front, back string) []domain.ReferenceRecord {
	snap := c.snapshot.Load()
	f, b := imprintKey(front), imprintKey(back)
	if snap == nil || (f == "" && b == "") {
		return []domain.ReferenceRecord{}
	}

	results := []domain.ReferenceRecord{}
	for i := range snap.entries {
		e := &snap.entries[i]
		if f != "" && e.front != f {
			continue
		}
		if b != "" && e.back != b {
			continue
		}
		results = append(results, e.record)
	}
	return results
}

// GetByID returns the record with the given id.
func (c *CatalogService) GetByID(id string) (domain.ReferenceRecord, bool) {
	snap := c.snapshot.Load()
	if snap == nil {
		return domain.ReferenceRecord{}, false
	}
	i, ok := snap.byID[id]
	if !ok {
		return domain.ReferenceRecord{}, false
	}
	return snap.entries[i].record, true
}
