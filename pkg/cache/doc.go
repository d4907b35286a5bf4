// Package cache provides a generic, thread-safe LRU cache with optional idle
// expiry.
//
// The cache evicts the least recently used item once it reaches capacity.
// With WithIdleTTL, items that were not read or written for the TTL are
// treated as missing by Get and dropped by Prune. Reads refresh an item's
// idle timer.
//
//	sessions := cache.NewLRUCache[string, *Session](10_000, cache.WithIdleTTL(2*time.Hour))
//	sessions.SetEvictCallback(func(id string, s *Session) { log.Debug("session evicted", "id", id) })
//
//	sessions.Put(s.ID, s)
//	s, ok := sessions.Get(id)
//
//	// periodically
//	sessions.Prune()
//
// All operations are O(1) except Prune, which is linear in the number of
// expired items.
package cache
