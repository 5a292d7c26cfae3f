package behavior

import (
	"fmt"

	"github.com/mesh-intelligence/rowkeeper/internal/slug"
	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

// Slugifier turns text into a URL fragment.
type Slugifier func(text string) string

// SeoURL maintains target = "<primary key>-<slug of source>". On update the
// value is derived before the write. On insert the key only exists once the
// row is written, so the value is derived after insert and saved with a
// follow-up update.
type SeoURL struct {
	source  string
	target  string
	slugify Slugifier
}

// SeoURLOption configures SeoURL.
type SeoURLOption func(*SeoURL)

// WithSlugifier replaces slug.Make.
func WithSlugifier(fn Slugifier) SeoURLOption {
	return func(s *SeoURL) {
		s.slugify = fn
	}
}

// NewSeoURL creates a SeoURL behavior deriving target from source.
// Empty names default to "name" and "seo_url".
func NewSeoURL(source, target string, opts ...SeoURLOption) *SeoURL {
	if source == "" {
		source = "name"
	}
	if target == "" {
		target = "seo_url"
	}
	s := &SeoURL{source: source, target: target, slugify: slug.Make}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Setup registers the derivation hooks.
func (s *SeoURL) Setup(r *types.Record) {
	r.On(types.EventBeforeUpdate, s.updateSeoURL)
	r.On(types.EventAfterInsert, s.insertSeoURL)
}

func (s *SeoURL) updateSeoURL(r *types.Record) error {
	pk, err := r.Primary()
	if err != nil {
		return fmt.Errorf("deriving %s: %w", s.target, err)
	}
	v, err := r.Get(s.source)
	if err != nil {
		return err
	}
	text := ""
	if v != nil {
		text = fmt.Sprint(v)
	}
	return r.Set(s.target, fmt.Sprintf("%v-%s", pk, s.slugify(text)))
}

func (s *SeoURL) insertSeoURL(r *types.Record) error {
	if err := s.updateSeoURL(r); err != nil {
		return err
	}
	return r.Save()
}
