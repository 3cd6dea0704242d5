package engine

import (
	"hash/fnv"
	"sync"
)

const shardCount = 32

// userState is the containment memory for one user. mu is held for the whole
// evaluate-and-update step so samples from the same user are applied one at a time.
type userState struct {
	mu     sync.Mutex
	inside map[string]bool // fence id -> last known containment
}

type shard struct {
	mu    sync.Mutex
	users map[string]*userState
}

// stateTable maps user id to userState. Shard locks are only held for map access, never across I/O.
type stateTable struct {
	shards [shardCount]shard
}

func newStateTable() *stateTable {
	t := &stateTable{}
	for i := range t.shards {
		t.shards[i].users = make(map[string]*userState)
	}
	return t
}

func (t *stateTable) shardFor(userID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return &t.shards[h.Sum32()%shardCount]
}

// acquire returns the user's state, creating it on first use.
func (t *stateTable) acquire(userID string) *userState {
	s := t.shardFor(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.users[userID]
	if !ok {
		st = &userState{inside: make(map[string]bool)}
		s.users[userID] = st
	}
	return st
}

// lookup returns the user's state or nil.
func (t *stateTable) lookup(userID string) *userState {
	s := t.shardFor(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID]
}

func (t *stateTable) remove(userID string) {
	s := t.shardFor(userID)
	s.mu.Lock()
	delete(s.users, userID)
	s.mu.Unlock()
}
