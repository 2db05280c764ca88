package compose

import "strings"

// Selection es un conjunto de etiquetas (síntomas, actividades) con orden de inserción.
// No admite duplicados.
type Selection struct {
	set   map[string]struct{}
	order []string
}

func NewSelection(labels ...string) *Selection {
	s := &Selection{set: map[string]struct{}{}}
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

// Toggle agrega la etiqueta si no está y la quita si está. Devuelve si quedó seleccionada.
func (s *Selection) Toggle(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" {
		return false
	}
	if s.Has(label) {
		s.remove(label)
		return false
	}
	s.Add(label)
	return true
}

func (s *Selection) Add(label string) {
	label = strings.TrimSpace(label)
	if label == "" {
		return
	}
	if s.set == nil {
		s.set = map[string]struct{}{}
	}
	if _, ok := s.set[label]; ok {
		return
	}
	s.set[label] = struct{}{}
	s.order = append(s.order, label)
}

func (s *Selection) Has(label string) bool {
	_, ok := s.set[strings.TrimSpace(label)]
	return ok
}

func (s *Selection) Len() int { return len(s.order) }

// Items devuelve una copia en orden de inserción.
func (s *Selection) Items() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Selection) remove(label string) {
	delete(s.set, label)
	for i, l := range s.order {
		if l == label {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
