package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driving"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/logger"
)

// Ensure SafetyIndexService implements the interface.
var _ driving.SafetyIndexer = (*SafetyIndexService)(nil)

// Ingest defaults.
const (
	DefaultIngestBatchSize = 64
	DefaultIngestWorkers   = 4
)

// documentNamespace seeds name-based document ids, so the same row always
// gets the same id.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("pillmate/safety-document"))

// SafetyIndexService renders safety rows into canonical text, embeds them and
// writes them to the shared collection. It is an offline batch job.
type SafetyIndexService struct {
	embedder  driven.EmbeddingService
	store     driven.VectorStore
	batchSize int
	workers   int
	limiter   *rate.Limiter
}

// IndexerOption configures a SafetyIndexService.
type IndexerOption func(*SafetyIndexService)

// WithBatchSize sets how many documents are embedded per request.
func WithBatchSize(n int) IndexerOption {
	return func(s *SafetyIndexService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithWorkers sets how many embedding requests run concurrently.
func WithWorkers(n int) IndexerOption {
	return func(s *SafetyIndexService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithRateLimit caps embedding requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64) IndexerOption {
	return func(s *SafetyIndexService) {
		if perSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			s.limiter = nil
		}
	}
}

// NewSafetyIndexService creates an indexer writing to store.
func NewSafetyIndexService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	opts ...IndexerOption,
) *SafetyIndexService {
	s := &SafetyIndexService{
		embedder:  embedder,
		store:     store,
		batchSize: DefaultIngestBatchSize,
		workers:   DefaultIngestWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest renders, embeds and stores rows of one category.
func (s *SafetyIndexService) Ingest(
	ctx context.Context, rows []domain.RawSafetyRow, category domain.SafetyCategory,
) (int, error) {
	logger.Section("Safety Ingest")
	defer logger.Elapsed(string(category)+" ingest", time.Now())

	if !category.IsValid() {
		return 0, fmt.Errorf("%w: unknown safety category %q", domain.ErrInvalidInput, category)
	}
	if s.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return 0, domain.ErrVectorIndexUnavailable
	}

	docs := make([]domain.SafetyDocument, 0, len(rows))
	skipped := 0
	for i := range rows {
		doc, ok := RenderSafetyDocument(&rows[i], category)
		if !ok {
			skipped++
			continue
		}
		docs = append(docs, doc)
	}
	logger.Debug("%s: %d rows rendered, %d skipped", category, len(docs), skipped)
	if len(docs) == 0 {
		if skipped > 0 {
			logger.Warn("%s: skipped %d malformed rows", category, skipped)
		}
		return 0, nil
	}

	failed, err := s.embedAll(ctx, docs)
	if err != nil {
		return 0, err
	}

	embedded := docs[:0]
	for i := range docs {
		if len(docs[i].Embedding) > 0 {
			embedded = append(embedded, docs[i])
		}
	}
	skipped += failed
	if skipped > 0 {
		logger.Warn("%s: skipped %d malformed rows", category, skipped)
	}

	for start := 0; start < len(embedded); start += s.batchSize {
		end := min(start+s.batchSize, len(embedded))
		if err := s.store.Add(ctx, embedded[start:end]); err != nil {
			return start, fmt.Errorf("store %s documents: %w", category, err)
		}
	}

	logger.Info("%s: indexed %d documents", category, len(embedded))
	return len(embedded), nil
}

// embedAll fills docs[i].Embedding in parallel batches. It returns the number
// of documents that could not be embedded individually.
func (s *SafetyIndexService) embedAll(ctx context.Context, docs []domain.SafetyDocument) (int, error) {
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for start := 0; start < len(docs); start += s.batchSize {
		batch := docs[start:min(start+s.batchSize, len(docs))]
		g.Go(func() error {
			n, err := s.embedBatch(gctx, batch)
			failed.Add(int64(n))
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return int(failed.Load()), nil
}

// embedBatch embeds one batch, falling back to one request per document when
// the batch request fails. A batch where every document fails is a backend
// failure.
func (s *SafetyIndexService) embedBatch(ctx context.Context, batch []domain.SafetyDocument) (int, error) {
	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].Content
	}

	if err := s.wait(ctx); err != nil {
		return 0, err
	}
	vecs, err := s.embedder.EmbedBatch(ctx, texts)
	if err == nil && len(vecs) == len(batch) {
		for i := range batch {
			batch[i].Embedding = vecs[i]
		}
		return 0, nil
	}
	if err == nil {
		err = fmt.Errorf("got %d embeddings for %d texts", len(vecs), len(batch))
	}
	logger.Debug("batch embedding failed, retrying individually: %v", err)

	failed := 0
	var lastErr error
	for i := range batch {
		if err := s.wait(ctx); err != nil {
			return failed, err
		}
		vec, err := s.embedder.Embed(ctx, batch[i].Content)
		if err != nil {
			failed++
			lastErr = err
			continue
		}
		batch[i].Embedding = vec
	}
	if failed == len(batch) {
		return failed, fmt.Errorf("%w: embed documents: %w", domain.ErrBackendFailure, lastErr)
	}
	return failed, nil
}

func (s *SafetyIndexService) wait(ctx context.Context) error {
	if s.limiter == nil {
		return ctx.Err()
	}
	if err := s.limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}
	return nil
}

// RenderSafetyDocument builds the canonical text block and metadata for a row.
// Rows without any drug or product name are rejected.
func RenderSafetyDocument(row *domain.RawSafetyRow, category domain.SafetyCategory) (domain.SafetyDocument, bool) {
	r := trimRow(row)
	if r.DrugA == "" && r.ProductA == "" {
		return domain.SafetyDocument{}, false
	}
	if category == domain.CategoryContraindication && r.DrugB == "" && r.ProductB == "" {
		return domain.SafetyDocument{}, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n", category.Label())

	switch category {
	case domain.CategoryContraindication:
		fmt.Fprintf(&b, "약물 A: %s\n", withProduct(r.DrugA, r.ProductA))
		fmt.Fprintf(&b, "약물 B: %s\n", withProduct(r.DrugB, r.ProductB))
	default:
		fmt.Fprintf(&b, "성분명: %s\n", r.DrugA)
		fmt.Fprintf(&b, "제품명: %s\n", r.ProductA)
	}

	restriction := r.Restriction
	switch category {
	case domain.CategoryAgeRestriction:
		if restriction == "" {
			restriction = "N/A"
		}
		fmt.Fprintf(&b, "금기연령: %s\n", restriction)
	case domain.CategoryPregnancyRestriction:
		if restriction == "" {
			restriction = category.Label()
		}
		fmt.Fprintf(&b, "금기구분: %s\n", restriction)
	}

	fmt.Fprintf(&b, "상세정보: %s", r.Detail)
	if r.NoticeDate != "" {
		fmt.Fprintf(&b, "\n고시일자: %s", r.NoticeDate)
	}

	content := b.String()
	doc := domain.SafetyDocument{
		ID:             uuid.NewSHA1(documentNamespace, []byte(string(category)+"\x00"+content)).String(),
		Category:       category,
		PrimaryDrug:    r.DrugA,
		PrimaryProduct: r.ProductA,
		Restriction:    restriction,
		Detail:         r.Detail,
		NoticeDate:     r.NoticeDate,
		Content:        content,
	}
	if category == domain.CategoryContraindication {
		doc.SecondaryDrug = r.DrugB
		doc.SecondaryProduct = r.ProductB
		doc.Restriction = ""
	}
	if category == domain.CategoryElderlyCaution {
		doc.Restriction = ""
	}
	return doc, true
}

func withProduct(drug, product string) string {
	switch {
	case product == "":
		return drug
	case drug == "":
		return "(" + product + ")"
	default:
		return drug + " (" + product + ")"
	}
}

func trimRow(row *domain.RawSafetyRow) domain.RawSafetyRow {
	return domain.RawSafetyRow{
		DrugA:       strings.TrimSpace(row.DrugA),
		DrugB:       strings.TrimSpace(row.DrugB),
		ProductA:    strings.TrimSpace(row.ProductA),
		ProductB:    strings.TrimSpace(row.ProductB),
		Restriction: strings.TrimSpace(row.Restriction),
		Detail:      strings.TrimSpace(row.Detail),
		NoticeDate:  strings.TrimSpace(row.NoticeDate),
	}
}
