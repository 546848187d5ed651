// Package cache holds rendered report PDFs in Redis so repeat downloads of
// the same revision skip the renderer. The cache is strictly optional: when
// Redis is unreachable every call degrades to a miss.
package cache

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// pdfTTL bounds how long a rendered PDF stays cached. Keys embed the row's
// updated_at, so stale entries are never served; the TTL just caps memory.
const pdfTTL = time.Hour

var client *redis.Client

// Init initializes the Redis connection
func Init() error {
	// K8s sets REDIS_SERVICE_HOST and REDIS_SERVICE_PORT for services
	host := os.Getenv("REDIS_SERVICE_HOST")
	if host == "" {
		host = "redis" // fallback to service name
	}
	port := os.Getenv("REDIS_SERVICE_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	return client
}

// PDFKey builds the cache key for a report's rendered PDF. updated_at is part
// of the key so an edit naturally invalidates the old entry.
func PDFKey(variant string, id int64, updatedAt time.Time) string {
	return fmt.Sprintf("pdf:%s:%d:%d", variant, id, updatedAt.Unix())
}

// GetCachedPDF returns the cached PDF bytes for a key, if present.
func GetCachedPDF(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CachePDF stores rendered PDF bytes.
func CachePDF(ctx context.Context, key string, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, pdfTTL)
}

// InvalidatePDFs drops every cached rendering of one report.
func InvalidatePDFs(ctx context.Context, variant string, id int64) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, fmt.Sprintf("pdf:%s:%d:*", variant, id)).Result()
	if err == nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
