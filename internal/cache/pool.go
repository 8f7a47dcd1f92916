package cache

import "sync"

// Pool is a bounded LRU free-list of reusable values grouped by key.
type Pool[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	onEvict  func(K, V)
	byKey    map[K][]*lruNode[K, V]
	lru      lruList[K, V]

	reused  uint64
	evicted uint64
}

// NewPool creates a pool holding at most capacity idle values. onEvict, if
// non-nil, receives every value dropped by the pool.
func NewPool[K comparable, V any](capacity int, onEvict func(K, V)) *Pool[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Pool[K, V]{
		capacity: capacity,
		onEvict:  onEvict,
		byKey:    make(map[K][]*lruNode[K, V]),
	}
}

// Take removes and returns the most recently released value for key.
func (p *Pool[K, V]) Take(key K) (V, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	nodes := p.byKey[key]
	if len(nodes) == 0 {
		var zero V
		return zero, false
	}
	node := nodes[len(nodes)-1]
	p.dropNode(node)
	p.reused++
	return node.value, true
}

// Put releases value into the pool. If the pool is over capacity the least
// recently released value is evicted.
func (p *Pool[K, V]) Put(key K, value V) {
	var evicted []*lruNode[K, V]

	p.mu.Lock()
	node := p.lru.PushFront(key, value)
	p.byKey[key] = append(p.byKey[key], node)
	for p.lru.Len() > p.capacity {
		oldest := p.lru.Oldest()
		p.dropNode(oldest)
		p.evicted++
		evicted = append(evicted, oldest)
	}
	p.mu.Unlock()

	p.evict(evicted)
}

// Clear evicts every idle value.
func (p *Pool[K, V]) Clear() {
	p.mu.Lock()
	var evicted []*lruNode[K, V]
	for n := p.lru.head; n != nil; n = n.next {
		evicted = append(evicted, n)
	}
	p.lru.Clear()
	p.byKey = make(map[K][]*lruNode[K, V])
	p.evicted += uint64(len(evicted))
	p.mu.Unlock()

	p.evict(evicted)
}

// Len returns the number of idle values.
func (p *Pool[K, V]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lru.Len()
}

// Stats returns reuse and eviction counters.
func (p *Pool[K, V]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Len:       p.lru.Len(),
		Capacity:  p.capacity,
		Hits:      p.reused,
		Evictions: p.evicted,
	}
}

// dropNode removes node from both indexes. Caller must hold p.mu.
func (p *Pool[K, V]) dropNode(node *lruNode[K, V]) {
	nodes := p.byKey[node.key]
	for i, n := range nodes {
		if n == node {
			nodes = append(nodes[:i], nodes[i+1:]...)
			break
		}
	}
	if len(nodes) == 0 {
		delete(p.byKey, node.key)
	} else {
		p.byKey[node.key] = nodes
	}
	p.lru.Remove(node)
}

// evict runs the eviction hook. Caller must not hold p.mu.
func (p *Pool[K, V]) evict(nodes []*lruNode[K, V]) {
	if p.onEvict == nil {
		return
	}
	for _, n := range nodes {
		p.onEvict(n.key, n.value)
	}
}
