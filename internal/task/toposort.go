package task

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

// Plan returns the tasks needed to run targets, in execution order. With no
// targets every registered task is planned. The selection is the transitive
// dependency closure of the targets plus the finalizers of every selected task.
func (c *Container) Plan(targets ...string) ([]*Task, error) {
	if len(targets) == 0 {
		targets = c.Names()
	}
	selected := make(map[string]*Task)
	var visit func(name, from string) error
	visit = func(name, from string) error {
		if _, done := selected[name]; done {
			return nil
		}
		t, ok := c.Get(name)
		if !ok {
			if from == "" {
				return errors.ValidationError("unknown task").
					WithProject(c.project).WithTask(name).Build()
			}
			return errors.InternalError("task depends on unregistered task").
				WithProject(c.project).WithTask(from).
				WithContext("dependency", name).Build()
		}
		selected[name] = t
		for _, dep := range t.Dependencies() {
			if err := visit(dep, name); err != nil {
				return err
			}
		}
		for _, fin := range t.Finalizers() {
			if err := visit(fin, name); err != nil {
				return err
			}
		}
		return nil
	}
	for _, target := range targets {
		if err := visit(target, ""); err != nil {
			return nil, err
		}
	}
	return c.topologicalSort(selected)
}

// topologicalSort orders the selected tasks with Kahn's algorithm. Ties are
// broken by registration order so the result is deterministic.
func (c *Container) topologicalSort(selected map[string]*Task) ([]*Task, error) {
	idx := c.index()
	graph := make(map[string][]string, len(selected))
	inDegree := make(map[string]int, len(selected))
	for name := range selected {
		inDegree[name] += 0
	}
	addEdge := func(from, to string) {
		graph[from] = append(graph[from], to)
		inDegree[to]++
	}
	for name, t := range selected {
		for _, dep := range t.Dependencies() {
			addEdge(dep, name)
		}
		for _, fin := range t.Finalizers() {
			addEdge(name, fin)
		}
	}

	byRegistration := func(a, b string) int { return idx[a] - idx[b] }
	var queue []string
	for name, d := range inDegree {
		if d == 0 {
			queue = append(queue, name)
		}
	}
	slices.SortFunc(queue, byRegistration)

	result := make([]*Task, 0, len(selected))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, selected[current])
		for _, next := range graph[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
		slices.SortFunc(queue, byRegistration)
	}

	if len(result) != len(selected) {
		var cyclic []string
		for name, d := range inDegree {
			if d > 0 {
				cyclic = append(cyclic, name)
			}
		}
		slices.SortFunc(cyclic, byRegistration)
		return nil, errors.InternalError("circular task dependency").
			WithProject(c.project).
			WithContext("tasks", strings.Join(cyclic, ",")).Build()
	}
	return result, nil
}
