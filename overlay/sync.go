package overlay

import (
	"sync"

	"github.com/rs/zerolog"
)

// Renderer is the drawing surface the synchronizer pushes changes to.
// Implementations must tolerate calls for buckets they have not seen
// before. A nil renderer is valid and draws nothing.
type Renderer interface {
	AddFeature(bucket BucketID, f Feature)
	ClearBucket(bucket BucketID)
	SetBucketVisible(bucket BucketID, visible bool)
}

type bucket struct {
	features []Feature
	seen     map[string]struct{}
	visible  bool
}

// Synchronizer owns the overlay buckets and their dedup ledgers. All
// methods are safe for concurrent use; mutations are applied to the
// internal state and the renderer under one lock, so no interleaving can
// draw a feature twice.
type Synchronizer struct {
	mu       sync.Mutex
	buckets  map[BucketID]*bucket
	renderer Renderer
	log      zerolog.Logger
}

// NewSynchronizer creates a synchronizer drawing onto renderer, which may
// be nil for headless use.
func NewSynchronizer(renderer Renderer, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		buckets:  map[BucketID]*bucket{},
		renderer: renderer,
		log:      log,
	}
}

func (s *Synchronizer) bucketFor(id BucketID) *bucket {
	b, ok := s.buckets[id]
	if !ok {
		b = &bucket{seen: map[string]struct{}{}, visible: true}
		s.buckets[id] = b
	}
	return b
}

// Materialize adds features to their buckets, skipping any feature whose
// ID the target bucket has already seen. resolve maps each feature to its
// bucket. It returns the number of features actually added.
func (s *Synchronizer) Materialize(features []Feature, resolve func(Feature) BucketID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, f := range features {
		id := resolve(f)
		b := s.bucketFor(id)
		if _, dup := b.seen[f.ID]; dup {
			continue
		}
		b.seen[f.ID] = struct{}{}
		b.features = append(b.features, f)
		if s.renderer != nil {
			s.renderer.AddFeature(id, f)
		}
		added++
	}
	if added > 0 {
		s.log.Debug().Int("added", added).Int("offered", len(features)).Msg("features materialized")
	}
	return added
}

// MaterializeInto is Materialize with every feature bound for one bucket.
func (s *Synchronizer) MaterializeInto(id BucketID, features []Feature) int {
	return s.Materialize(features, func(Feature) BucketID { return id })
}

// Clear empties a bucket and forgets every feature ID it has seen, so the
// same features can be materialized into it again.
func (s *Synchronizer) Clear(id BucketID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[id]
	if !ok {
		return
	}
	b.features = nil
	b.seen = map[string]struct{}{}
	if s.renderer != nil {
		s.renderer.ClearBucket(id)
	}
}

// SetVisible toggles a bucket's visibility. Visibility is independent of
// content: a hidden bucket keeps accepting features and shows them all
// when revealed.
func (s *Synchronizer) SetVisible(id BucketID, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bucketFor(id)
	b.visible = visible
	if s.renderer != nil {
		s.renderer.SetBucketVisible(id, visible)
	}
}

// Visible reports whether a bucket is currently shown. Buckets start
// visible.
func (s *Synchronizer) Visible(id BucketID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[id]
	if !ok {
		return true
	}
	return b.visible
}

// Features returns a copy of the bucket's current contents in insertion
// order.
func (s *Synchronizer) Features(id BucketID) []Feature {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[id]
	if !ok {
		return nil
	}
	out := make([]Feature, len(b.features))
	copy(out, b.features)
	return out
}

// Size returns how many distinct features the bucket holds.
func (s *Synchronizer) Size(id BucketID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[id]
	if !ok {
		return 0
	}
	return len(b.features)
}

// Buckets lists the bucket IDs that exist so far.
func (s *Synchronizer) Buckets() []BucketID {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]BucketID, 0, len(s.buckets))
	for id := range s.buckets {
		ids = append(ids, id)
	}
	return ids
}
