package sqlengine

import "container/list"

// minMRUSize is the floor spec §4.7 imposes on SetMaxStmtCacheSize.
const minMRUSize = 3

// mruEntry is the value stored at each list.Element; borrowed statements are
// skipped on lookup-hit reordering and never evicted while borrowed.
type mruEntry struct {
	sql      string
	stmt     *Statement
	borrowed bool
}

// mru is the statement cache of spec §4.7: a ring ordered head=LRU,
// tail=MRU, keyed by SQL text, holding at most max statements. Borrowed
// statements are never evicted, so after setMax shrinks the cache it can
// hold more than max until they are released.
type mru struct {
	max     int
	entries map[string]*list.Element
	order   *list.List // front = LRU, back = MRU
}

func newMRU(max int) *mru {
	if max < minMRUSize {
		max = minMRUSize
	}
	return &mru{
		max:     max,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// lookup returns the cached statement for sql, promoting it to MRU if found
// and not currently borrowed. A borrowed hit is reported via borrowed=true
// so the caller substitutes a fresh, non-cached prepare (spec §4.3).
func (m *mru) lookup(sql string) (stmt *Statement, borrowed bool, found bool) {
	el, ok := m.entries[sql]
	if !ok {
		return nil, false, false
	}
	entry := el.Value.(*mruEntry)
	if entry.borrowed {
		return nil, true, true
	}
	m.order.MoveToBack(el)
	return entry.stmt, false, true
}

// insert adds a newly prepared statement at the MRU tail, evicting the LRU
// head if the cache is at capacity. If no unborrowed entry can be evicted,
// stmt is not cached.
func (m *mru) insert(sql string, stmt *Statement) {
	if m.order.Len() >= m.max {
		m.evictOldest()
		if m.order.Len() >= m.max {
			return
		}
	}
	el := m.order.PushBack(&mruEntry{sql: sql, stmt: stmt})
	m.entries[sql] = el
}

func (m *mru) evictOldest() {
	front := m.order.Front()
	if front == nil {
		return
	}
	entry := front.Value.(*mruEntry)
	if entry.borrowed {
		// Never evict a borrowed statement; look for the next LRU instead.
		for el := front.Next(); el != nil; el = el.Next() {
			if !el.Value.(*mruEntry).borrowed {
				m.removeElement(el)
				return
			}
		}
		return
	}
	m.removeElement(front)
}

func (m *mru) removeElement(el *list.Element) {
	entry := el.Value.(*mruEntry)
	delete(m.entries, entry.sql)
	m.order.Remove(el)
	entry.stmt.close()
}

// setBorrowed marks the cached entry for sql as in-use or released.
func (m *mru) setBorrowed(sql string, borrowed bool) {
	el, ok := m.entries[sql]
	if !ok {
		return
	}
	el.Value.(*mruEntry).borrowed = borrowed
}

// setMax resizes the cache, evicting unborrowed entries from the LRU end
// until it fits or only borrowed entries are left over.
func (m *mru) setMax(n int) {
	if n < minMRUSize {
		n = minMRUSize
	}
	m.max = n
	for m.order.Len() > m.max {
		before := m.order.Len()
		m.evictOldest()
		if m.order.Len() == before {
			break
		}
	}
}

// clear releases every cached statement (release_memory, interface close).
func (m *mru) clear() {
	for m.order.Len() > 0 {
		m.removeElement(m.order.Front())
	}
}

// size reports the current number of cached statements, for tests.
func (m *mru) size() int { return m.order.Len() }

// contains reports whether sql is currently cached, for tests.
func (m *mru) contains(sql string) bool {
	_, ok := m.entries[sql]
	return ok
}
