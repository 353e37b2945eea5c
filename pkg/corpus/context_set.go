package corpus

// ContextSet is the accepted sample: post texts and source links keyed by
// post id, in order of acceptance.
type ContextSet struct {
	ids   []string
	texts map[string]string
	links map[string]string
}

func newContextSet(capacity int) *ContextSet {
	return &ContextSet{
		ids:   make([]string, 0, capacity),
		texts: make(map[string]string, capacity),
		links: make(map[string]string, capacity),
	}
}

// Has reports whether id was already accepted
func (s *ContextSet) Has(id string) bool {
	_, ok := s.texts[id]
	return ok
}

func (s *ContextSet) add(id, text, link string) {
	s.ids = append(s.ids, id)
	s.texts[id] = text
	s.links[id] = link
}

// Len returns the number of accepted posts
func (s *ContextSet) Len() int {
	return len(s.ids)
}

// IDs returns the accepted post ids in order of acceptance
func (s *ContextSet) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Text returns the extracted text of an accepted post
func (s *ContextSet) Text(id string) string {
	return s.texts[id]
}

// Link returns the source URL of an accepted post
func (s *ContextSet) Link(id string) string {
	return s.links[id]
}

// Texts returns the accepted texts in order of acceptance
func (s *ContextSet) Texts() []string {
	texts := make([]string, len(s.ids))
	for i, id := range s.ids {
		texts[i] = s.texts[id]
	}
	return texts
}
