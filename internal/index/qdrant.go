package index

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

const (
	collectionPrefix = "ytchat"
	upsertBatchSize  = 100
)

// QdrantStore wraps the Qdrant client with connection management and health
// checks. Each index it creates lives in its own collection, which is dropped
// when the index is closed.
type QdrantStore struct {
	client *qdrant.Client
	host   string
	port   int
}

// NewQdrantStore connects to Qdrant over gRPC and fails if the server does
// not become healthy within the retry window.
func NewQdrantStore(ctx context.Context, host string, port int) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	store := &QdrantStore{
		client: client,
		host:   host,
		port:   port,
	}

	if err := store.healthCheckWithRetry(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}

	return store, nil
}

// healthCheckWithRetry performs health check with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *QdrantStore) healthCheckWithRetry(ctx context.Context) error {
	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(newBackOff(), ctx))
}

// Health performs a single health check against Qdrant.
func (s *QdrantStore) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// Addr returns host:port of the server.
func (s *QdrantStore) Addr() string {
	return fmt.Sprintf("%s:%d", s.host, s.port)
}

// NewIndex implements Factory. The collection is created on the first Add,
// once the vector dimension is known.
func (s *QdrantStore) NewIndex(ctx context.Context, name string) (Index, error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return &Qdrant{
		store:      s,
		collection: fmt.Sprintf("%s_%s_%s", collectionPrefix, name, id),
	}, nil
}

// Close closes the Qdrant client connection.
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Qdrant is an Index backed by one Qdrant collection.
type Qdrant struct {
	store      *QdrantStore
	collection string

	mu      sync.Mutex
	dim     int
	count   int
	created bool
	closed  bool
}

// Collection returns the backing collection name.
func (q *Qdrant) Collection() string {
	return q.collection
}

// Add implements Index. Points are upserted in batches of 100.
func (q *Qdrant) Add(ctx context.Context, docs []Document) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	if len(docs) == 0 {
		return nil
	}

	dim := q.dim
	if dim == 0 {
		dim = len(docs[0].Vector)
	}
	for i, doc := range docs {
		if len(doc.Vector) == 0 || len(doc.Vector) != dim {
			return fmt.Errorf("%w: document %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(doc.Vector), dim)
		}
	}

	if !q.created {
		err := q.store.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: q.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(dim),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection %s: %w", q.collection, err)
		}
		q.created = true
		q.dim = dim
	}

	for i := 0; i < len(docs); i += upsertBatchSize {
		end := min(i+upsertBatchSize, len(docs))

		points := make([]*qdrant.PointStruct, 0, end-i)
		for _, doc := range docs[i:end] {
			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(uuid.NewString()),
				Vectors: qdrant.NewVectors(doc.Vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"text":     doc.Text,
					"position": doc.Position,
				}),
			})
		}

		if err := q.upsertWithRetry(ctx, points); err != nil {
			return fmt.Errorf("failed to upsert batch %d-%d: %w", i, end, err)
		}
		q.count += len(points)
	}

	return nil
}

// upsertWithRetry performs upsert operation with exponential backoff retry.
func (q *Qdrant) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	operation := func() error {
		_, err := q.store.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: q.collection,
			Wait:           qdrant.PtrOf(true),
			Points:         points,
		})
		return err
	}
	return backoff.Retry(operation, backoff.WithContext(newBackOff(), ctx))
}

// Search implements Index.
func (q *Qdrant) Search(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	q.mu.Lock()
	created, dim, closed := q.created, q.dim, q.closed
	q.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}
	if k <= 0 || !created {
		return []Hit{}, nil
	}
	if len(vector) != dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), dim)
	}

	results, err := q.store.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", q.collection, err)
	}

	hits := make([]Hit, 0, len(results))
	for _, result := range results {
		hits = append(hits, Hit{
			Text:     result.Payload["text"].GetStringValue(),
			Position: int(result.Payload["position"].GetIntegerValue()),
			Score:    float64(result.Score),
		})
	}
	return hits, nil
}

// All implements Index. The collection is only written through this index,
// so one Scroll page sized to the local count returns every point.
func (q *Qdrant) All(ctx context.Context) ([]Hit, error) {
	q.mu.Lock()
	created, closed, count := q.created, q.closed, q.count
	q.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}
	if !created || count == 0 {
		return []Hit{}, nil
	}

	results, err := q.store.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: q.collection,
		Limit:          qdrant.PtrOf(uint32(count)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scroll %s: %w", q.collection, err)
	}

	hits := make([]Hit, 0, len(results))
	for _, result := range results {
		hits = append(hits, Hit{
			Text:     result.Payload["text"].GetStringValue(),
			Position: int(result.Payload["position"].GetIntegerValue()),
		})
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(a.Position, b.Position)
	})
	return hits, nil
}

// Len implements Index.
func (q *Qdrant) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Close implements Index by dropping the collection.
func (q *Qdrant) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	if !q.created {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := q.store.client.DeleteCollection(ctx, q.collection); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", q.collection, err)
	}
	return nil
}

func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	return b
}
