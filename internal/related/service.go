package related

import (
	"legal-reader/internal/content"
)

// Service owns the one queue shared by every document and a cache per document.
type Service struct {
	queue  *Queue
	caches map[string]*Cache
	order  []string
}

func NewService(queue *Queue, lib *content.Library, opts ...CacheOption) *Service {
	s := &Service{
		queue:  queue,
		caches: make(map[string]*Cache),
	}
	for _, doc := range lib.Documents() {
		s.caches[doc.ID] = NewCache(doc.ID, queue, opts...)
		s.order = append(s.order, doc.ID)
	}
	return s
}

func (s *Service) Cache(documentID string) (*Cache, bool) {
	c, ok := s.caches[documentID]
	return c, ok
}

type Stats struct {
	QueueDepth int            `json:"queue_depth"`
	QueueState string         `json:"queue_state"`
	CacheSizes map[string]int `json:"cache_sizes"`
}

func (s *Service) Stats() Stats {
	sizes := make(map[string]int, len(s.caches))
	for _, id := range s.order {
		sizes[id] = s.caches[id].Len()
	}
	return Stats{
		QueueDepth: s.queue.Len(),
		QueueState: s.queue.State().String(),
		CacheSizes: sizes,
	}
}
