package v1

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"sync"
	"time"
)

const downloadTTL = 10 * time.Minute

type pendingDownload struct {
	filePath  string
	fileName  string
	runID     string
	expiresAt time.Time
}

// downloadStore holds streamed results until the client fetches them.
// Expired entries have their file removed.
type downloadStore struct {
	mu    sync.Mutex
	items map[string]pendingDownload
}

func newDownloadStore() *downloadStore {
	return &downloadStore{
		items: make(map[string]pendingDownload),
	}
}

func (s *downloadStore) put(d pendingDownload, ttl time.Duration) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	token = newRandomToken(24)
	d.expiresAt = time.Now().Add(ttl)
	s.items[token] = d
	return token
}

// take returns and forgets the download; tokens are single use.
func (s *downloadStore) take(token string) (pendingDownload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	v, ok := s.items[token]
	if !ok {
		return pendingDownload{}, false
	}
	delete(s.items, token)
	return v, true
}

func (s *downloadStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			_ = os.Remove(v.filePath)
			delete(s.items, k)
		}
	}
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
