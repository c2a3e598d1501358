package task

import (
	"iter"
	"sync"
)

// Container holds one project's tasks keyed by name, in registration order.
type Container struct {
	mu      sync.RWMutex
	project string
	byName  map[string]*Task
	order   []*Task
}

// NewContainer creates an empty container for the named project.
func NewContainer(project string) *Container {
	return &Container{project: project, byName: make(map[string]*Task)}
}

// Project returns the owning project name.
func (c *Container) Project() string { return c.project }

// Register returns the task with the given name, creating it when absent.
// created reports whether this call created it; an existing task keeps its
// action unless action is non-nil.
func (c *Container) Register(name string, action Action) (t *Task, created bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.byName[name]; ok {
		if action != nil {
			existing.SetAction(action)
		}
		return existing, false
	}
	t = &Task{name: name, action: action}
	c.byName[name] = t
	c.order = append(c.order, t)
	return t, true
}

// Get looks a task up by name.
func (c *Container) Get(name string) (*Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byName[name]
	return t, ok
}

// Has reports whether a task with the given name exists.
func (c *Container) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Len returns the number of registered tasks.
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Names returns task names in registration order.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.order))
	for i, t := range c.order {
		names[i] = t.name
	}
	return names
}

// All yields tasks in registration order over a snapshot taken at call time.
func (c *Container) All() iter.Seq[*Task] {
	return func(yield func(*Task) bool) {
		c.mu.RLock()
		snapshot := append([]*Task(nil), c.order...)
		c.mu.RUnlock()
		for _, t := range snapshot {
			if !yield(t) {
				return
			}
		}
	}
}

func (c *Container) index() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx := make(map[string]int, len(c.order))
	for i, t := range c.order {
		idx[t.name] = i
	}
	return idx
}
