// Package redis implements the response cache, rate limiter, and usage
// tracker ports on a shared Redis client.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

const ragCacheTTL = time.Hour

func NewClient(url, password string, db int) (*redis.Client, error) {
	var rdb *redis.Client
	if strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://") {
		opt, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb = redis.NewClient(opt)
	} else {
		rdb = redis.NewClient(&redis.Options{Addr: url, Password: password, DB: db})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// ResponseCache caches RAG answers keyed by the normalized query tuple and
// maintains per-document index sets so invalidation is a set walk rather
// than a keyspace scan.
type ResponseCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewResponseCache(rdb *redis.Client) *ResponseCache {
	return &ResponseCache{rdb: rdb, ttl: ragCacheTTL}
}

func (c *ResponseCache) GetRAGResponse(ctx context.Context, filter domain.SearchFilter, query string, threshold float64) (*domain.RAGResponse, bool) {
	key := ragCacheKey(filter, query, threshold)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var resp domain.RAGResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		// Poisoned entry, drop it.
		c.rdb.Del(ctx, key)
		return nil, false
	}
	return &resp, true
}

func (c *ResponseCache) SetRAGResponse(ctx context.Context, filter domain.SearchFilter, query string, threshold float64, resp *domain.RAGResponse) error {
	key := ragCacheKey(filter, query, threshold)

	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal cached response: %w", err)
	}

	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, key, raw, c.ttl)
	for _, docID := range documentScope(filter, resp) {
		indexKey := docIndexKey(filter.TenantID, docID)
		pipe.SAdd(ctx, indexKey, key)
		pipe.Expire(ctx, indexKey, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store cached response: %w", err)
	}
	return nil
}

func (c *ResponseCache) InvalidateDocument(ctx context.Context, tenantID, documentID string) error {
	indexKey := docIndexKey(tenantID, documentID)

	keys, err := c.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("read cache index: %w", err)
	}
	if len(keys) > 0 {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("delete cached responses: %w", err)
		}
	}
	if err := c.rdb.Del(ctx, indexKey).Err(); err != nil {
		return fmt.Errorf("delete cache index: %w", err)
	}
	return nil
}

// documentScope lists the documents a cached answer depends on, from the
// explicit filter when present, otherwise from the citations.
func documentScope(filter domain.SearchFilter, resp *domain.RAGResponse) []string {
	if len(filter.DocumentIDs) > 0 {
		return filter.DocumentIDs
	}
	seen := make(map[string]bool)
	var ids []string
	for _, citation := range resp.Citations {
		if citation.DocumentID != "" && !seen[citation.DocumentID] {
			seen[citation.DocumentID] = true
			ids = append(ids, citation.DocumentID)
		}
	}
	return ids
}

func ragCacheKey(filter domain.SearchFilter, query string, threshold float64) string {
	docIDs := append([]string(nil), filter.DocumentIDs...)
	sort.Strings(docIDs)

	payload := fmt.Sprintf("%s|%s|%s|%.4f",
		filter.TenantID,
		strings.ToLower(strings.TrimSpace(query)),
		strings.Join(docIDs, ","),
		threshold,
	)
	sum := sha256.Sum256([]byte(payload))
	return "rag:resp:" + hex.EncodeToString(sum[:])
}

func docIndexKey(tenantID, documentID string) string {
	return fmt.Sprintf("rag:docidx:%s:%s", tenantID, documentID)
}
