package tui

// Container is a named region of a page that a component renders into.
type Container struct {
	ID     string
	Width  int
	Height int
}

// Layout holds the named containers of a page.
type Layout struct {
	containers map[string]*Container
}

// NewLayout creates a layout with one empty container per id.
func NewLayout(ids ...string) *Layout {
	l := &Layout{containers: make(map[string]*Container, len(ids))}
	for _, id := range ids {
		l.containers[id] = &Container{ID: id}
	}
	return l
}

// Container looks a container up by id.
func (l *Layout) Container(id string) (*Container, bool) {
	if l == nil {
		return nil, false
	}
	c, ok := l.containers[id]
	return c, ok
}

// Resize sets the dimensions of a container. Unknown ids are ignored.
func (l *Layout) Resize(id string, width, height int) {
	if c, ok := l.Container(id); ok {
		c.Width = width
		c.Height = height
	}
}
