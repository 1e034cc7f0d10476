package session

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Store keeps sessions keyed by conversation ID so concurrent conversations
// never share state. The cache TTL is only a memory backstop that sweeps
// conversations gone quiet; the in-band idle reset in ExpireIfIdle remains
// the authoritative expiry.
type Store struct {
	cache *cache.Cache
}

func NewStore() *Store {
	return &Store{cache: cache.New(1*time.Hour, 10*time.Minute)}
}

// Get returns the session for a conversation, creating it on first use.
func (st *Store) Get(conversationID string) *Session {
	if x, found := st.cache.Get(conversationID); found {
		s := x.(*Session)
		// refresh the sweep deadline
		st.cache.Set(conversationID, s, cache.DefaultExpiration)
		return s
	}
	s := New(conversationID)
	if err := st.cache.Add(conversationID, s, cache.DefaultExpiration); err != nil {
		// another transport created it between Get and Add
		if x, found := st.cache.Get(conversationID); found {
			return x.(*Session)
		}
	}
	return s
}

// Delete drops a conversation's session outright.
func (st *Store) Delete(conversationID string) {
	st.cache.Delete(conversationID)
}
