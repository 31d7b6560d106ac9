package related

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"legal-reader/internal/content"
)

// MaxRelated is the most titles a lookup resolves to.
const MaxRelated = 3

var ErrQueueStopped = errors.New("related-sections queue stopped")

// Finder asks a remote model which candidate titles relate to section.
// Returned titles must come from candidates.
type Finder interface {
	FindRelated(ctx context.Context, section content.Section, candidates []string) ([]string, error)
}

// Job is one pending related-sections lookup. The queue consumes it exactly once.
type Job struct {
	ID          string
	Key         string
	Section     content.Section
	AllSections []content.Section

	enqueuedAt time.Time
	onSuccess  func([]string)
	onFailure  func(error)
	once       sync.Once
}

func NewJob(key string, section content.Section, all []content.Section, onSuccess func([]string), onFailure func(error)) *Job {
	return &Job{
		ID:          uuid.NewString(),
		Key:         key,
		Section:     section,
		AllSections: all,
		onSuccess:   onSuccess,
		onFailure:   onFailure,
	}
}

// Candidates lists every other section title in the document.
func (j *Job) Candidates() []string {
	titles := make([]string, 0, len(j.AllSections))
	for _, s := range j.AllSections {
		if s.Title != j.Section.Title {
			titles = append(titles, s.Title)
		}
	}
	return titles
}

func (j *Job) succeed(titles []string) {
	j.once.Do(func() {
		if j.onSuccess != nil {
			j.onSuccess(titles)
		}
	})
}

func (j *Job) fail(err error) {
	j.once.Do(func() {
		if j.onFailure != nil {
			j.onFailure(err)
		}
	})
}
