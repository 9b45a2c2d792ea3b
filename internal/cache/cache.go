// Package cache implements the optional byte-cache deployment config's
// cache_path names: an in-process LRU by default, or a Redis-backed
// cache when cache_path points at a redis:// URL. It is grounded on the
// teacher's tree/redisstore.go Redis wrapper (same Get/Set/Close
// vocabulary, same "wrap every client error with fmt.Errorf" discipline)
// generalized from a tree.NodeStore's node-shaped payload to opaque
// byte slices. Its one caller in this module is engine's cached
// inference.
package cache

import (
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/redis.v5"
)

// Cache is the minimal surface every cache backend implements.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Close() error
}

// New builds a Cache from a deployment config's cache_path: empty
// selects an in-process LRU of lruSize entries; a "redis://host:port/db"
// URL selects a Redis-backed cache keyed under the "forest" prefix.
func New(cachePath string, lruSize int) (Cache, error) {
	if cachePath == "" {
		return NewLRU(lruSize)
	}
	if strings.HasPrefix(cachePath, "redis://") {
		return NewRedis(strings.TrimPrefix(cachePath, "redis://"))
	}
	return nil, fmt.Errorf("cache: unsupported cache_path %q (want empty or redis://...)", cachePath)
}

type lruCache struct {
	c *lru.Cache[string, []byte]
}

// NewLRU builds an in-process LRU-evicted cache of size entries.
func NewLRU(size int) (Cache, error) {
	if size <= 0 {
		size = 4096
	}
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("cache: building LRU: %v", err)
	}
	return &lruCache{c: c}, nil
}

func (l *lruCache) Get(key string) ([]byte, bool) { return l.c.Get(key) }
func (l *lruCache) Set(key string, value []byte)  { l.c.Add(key, value) }
func (l *lruCache) Close() error                  { l.c.Purge(); return nil }

type redisCache struct {
	rc     *redis.Client
	prefix string
}

// NewRedis builds a Redis-backed cache. addr is host:port[/db] as
// produced by stripping the redis:// scheme from a cache_path.
func NewRedis(addr string) (Cache, error) {
	host, db := addr, 0
	if i := strings.LastIndex(addr, "/"); i >= 0 {
		host = addr[:i]
		if n, err := strconv.Atoi(addr[i+1:]); err == nil {
			db = n
		}
	}
	rc := redis.NewClient(&redis.Options{Addr: host, DB: db})
	if _, err := rc.Ping().Result(); err != nil {
		return nil, fmt.Errorf("cache: connecting to redis at %q: %v", host, err)
	}
	return &redisCache{rc: rc, prefix: "forest"}, nil
}

func (r *redisCache) Get(key string) ([]byte, bool) {
	data, err := r.rc.Get(r.keyFor(key)).Result()
	if err != nil || data == "" {
		return nil, false
	}
	return []byte(data), true
}

func (r *redisCache) Set(key string, value []byte) {
	r.rc.Set(r.keyFor(key), value, 0)
}

func (r *redisCache) Close() error {
	return r.rc.Close()
}

func (r *redisCache) keyFor(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}
