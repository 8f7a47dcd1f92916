// Package cache provides the LRU containers used by the rasterizer.
//
// # Pool[K, V]
//
// A bounded free-list of reusable resources. Several values may share a key
// (for example render targets of the same size); Take returns the most
// recently released one. When the pool grows past its capacity the least
// recently released value is handed to the eviction hook, which is expected
// to destroy it.
//
//	pool := cache.NewPool[geom.Size, *backend.OffscreenTarget](8, func(_ geom.Size, t *backend.OffscreenTarget) {
//		t.Destroy()
//	})
//
// # Sharded[K, V]
//
// A sharded LRU map for memoizing expensive derived data, such as rasterized
// text runs. 16 shards keep lock contention low when several workers look
// entries up at once.
//
//	runs := cache.NewSharded[runKey, *image.Alpha](64, hashRunKey)
//	mask := runs.GetOrCreate(key, func() *image.Alpha { return draw(key) })
//
// Both containers are safe for concurrent use and must not be copied after
// creation.
package cache
