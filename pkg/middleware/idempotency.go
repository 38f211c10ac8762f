package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const IdempotencyHeader = "Idempotency-Key"

// reservationTTL bounds how long a key stays locked by a request that never finished.
const reservationTTL = time.Minute

// IdempotencyStore holds replayable responses. Reserve claims a key before the
// handler runs, so only one of several concurrent retries executes it.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*CachedResponse, bool, error)
	Reserve(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, response *CachedResponse) error
	Release(ctx context.Context, key string) error
	Stop()
}

type CachedResponse struct {
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
	CreatedAt  time.Time   `json:"created_at"`
	Pending    bool        `json:"pending,omitempty"`
}

func (c *CachedResponse) expired(ttl time.Duration) bool {
	if c.Pending {
		ttl = min(ttl, reservationTTL)
	}
	return time.Since(c.CreatedAt) > ttl
}

type InMemoryIdempotencyStore struct {
	mu       sync.RWMutex
	store    map[string]*CachedResponse
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		store:  make(map[string]*CachedResponse),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (s *InMemoryIdempotencyStore) Get(_ context.Context, key string) (*CachedResponse, bool, error) {
	s.mu.RLock()
	response, exists := s.store[key]
	s.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}

	if response.expired(s.ttl) {
		s.mu.Lock()
		if s.store[key] == response {
			delete(s.store, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}

	return response, true, nil
}

func (s *InMemoryIdempotencyStore) Reserve(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.store[key]; ok && !existing.expired(s.ttl) {
		return false, nil
	}
	s.store[key] = &CachedResponse{Pending: true, CreatedAt: time.Now()}
	return true, nil
}

func (s *InMemoryIdempotencyStore) Set(_ context.Context, key string, response *CachedResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	response.CreatedAt = time.Now()
	s.store[key] = response
	return nil
}

func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.store[key]; ok && existing.Pending {
		delete(s.store, key)
	}
	return nil
}

func (s *InMemoryIdempotencyStore) cleanup() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, response := range s.store {
				if response.expired(s.ttl) {
					delete(s.store, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// RedisIdempotencyStore keeps replayable responses in Redis so retries that land on
// another replica still see the first response.
type RedisIdempotencyStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{
		rdb:    rdb,
		ttl:    ttl,
		prefix: "travelbook:idempotency",
	}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, bool, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+":"+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("idempotency get: %w", err)
	}

	var cached CachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("idempotency decode: %w", err)
	}
	return &cached, true, nil
}

// Reserve writes a pending marker with SET NX; the marker expires on its own if
// the request never completes.
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	raw, err := json.Marshal(&CachedResponse{Pending: true, CreatedAt: time.Now()})
	if err != nil {
		return false, fmt.Errorf("idempotency encode: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, s.prefix+":"+key, raw, min(s.ttl, reservationTTL)).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency reserve: %w", err)
	}
	return ok, nil
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, response *CachedResponse) error {
	response.CreatedAt = time.Now()
	raw, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("idempotency encode: %w", err)
	}
	if err := s.rdb.Set(ctx, s.prefix+":"+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency set: %w", err)
	}
	return nil
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+":"+key).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *RedisIdempotencyStore) Stop() {}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the first successful response for a repeated Idempotency-Key.
// Keys are scoped to the caller's credentials and the route, so two users cannot
// collide on the same key. A retry that arrives while the first request is still
// running gets a 409 instead of running the handler a second time.
func Idempotency(store IdempotencyStore, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := r.Header.Get(IdempotencyHeader)
			if idempotencyKey == "" || r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := scopedKey(r, idempotencyKey)
			reqLog := log.FromContext(r.Context())

			if answerFromStore(r.Context(), w, store, key, reqLog) {
				return
			}

			reserved, err := store.Reserve(r.Context(), key)
			if err != nil {
				reqLog.Warn("Idempotency reservation failed", "error", err)
			} else if !reserved {
				if !answerFromStore(r.Context(), w, store, key, reqLog) {
					reject(w, reqLog, inProgress())
				}
				return
			}

			// The reservation must not outlive a failed or cancelled request.
			storeCtx := context.WithoutCancel(r.Context())
			completed := false
			defer func() {
				if reserved && !completed {
					if err := store.Release(storeCtx, key); err != nil {
						reqLog.Warn("Idempotency release failed", "error", err)
					}
				}
			}()

			capture := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK, body: &bytes.Buffer{}}
			next.ServeHTTP(capture, r)

			if capture.statusCode < 200 || capture.statusCode >= 300 {
				return
			}
			err = store.Set(storeCtx, key, &CachedResponse{
				StatusCode: capture.statusCode,
				Headers:    w.Header().Clone(),
				Body:       capture.body.Bytes(),
			})
			if err != nil {
				reqLog.Warn("Idempotency store failed", "error", err)
				return
			}
			completed = true
		})
	}
}

// answerFromStore replays a finished response for key or rejects a pending one.
// It reports whether it wrote a response.
func answerFromStore(ctx context.Context, w http.ResponseWriter, store IdempotencyStore, key string, log *logger.Logger) bool {
	cached, found, err := store.Get(ctx, key)
	if err != nil {
		log.Warn("Idempotency lookup failed", "error", err)
		return false
	}
	if !found {
		return false
	}
	if cached.Pending {
		reject(w, log, inProgress())
		return true
	}
	log.Info("Replaying idempotent response", "status", cached.StatusCode)
	replayCachedResponse(w, cached)
	return true
}

func inProgress() *apperrors.AppError {
	return apperrors.Conflict("A request with this Idempotency-Key is still in progress")
}

func scopedKey(r *http.Request, idempotencyKey string) string {
	sum := sha256.Sum256([]byte(r.Header.Get("Authorization") + "|" + r.Method + " " + r.URL.Path + "|" + idempotencyKey))
	return hex.EncodeToString(sum[:])
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		if key == RequestIDHeader {
			continue
		}
		w.Header().Del(key)
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}
