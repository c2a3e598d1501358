package docs

import (
	"fmt"
	"slices"
	"sync"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

// State is a documentation pipeline state.
type State string

const (
	NotConfigured  State = "not_configured"
	Configured     State = "configured"
	Generated      State = "generated"
	Colorized      State = "colorized"
	SourceRendered State = "source_rendered"
	Failed         State = "failed"
)

var transitions = map[State][]State{
	NotConfigured: {Configured},
	Configured:    {Configured, Generated, Failed},
	Generated:     {Colorized, SourceRendered, Failed},
	Colorized:     {SourceRendered, Failed},
}

// Visibility is the lowest member visibility included in the output.
type Visibility string

const (
	Public    Visibility = "public"
	Protected Visibility = "protected"
	Package   Visibility = "package"
	Private   Visibility = "private"
)

// Tag is a custom block tag definition.
type Tag struct {
	Name      string
	Locations string
	Label     string
}

// String renders the javadoc -tag argument.
func (t Tag) String() string { return t.Name + ":" + t.Locations + ":" + t.Label }

// Link is an offline link: URL resolved against a local package-list directory.
type Link struct {
	URL         string
	PackageList string
}

// Task is the documentation task of one project.
type Task struct {
	mu sync.Mutex

	OutputDir   string
	SourceRoots []string
	Classpath   []string
	ModuleName  string
	Release     int

	Visibility  Visibility
	Encoding    string
	Exclude     []string
	WindowTitle string
	DocTitle    string
	Bottom      string
	Overview    string
	Stylesheet  string
	LinkSource  bool

	tags  []Tag
	links []Link
	steps []Step
	state State
}

// NewTask creates an unconfigured task writing into outputDir.
func NewTask(outputDir string) *Task {
	return &Task{OutputDir: outputDir, state: NotConfigured}
}

// State returns the current pipeline state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Transition moves the task to the next state. An illegal move is an internal error.
func (t *Task) Transition(to State) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !slices.Contains(transitions[t.state], to) {
		return errors.InternalError(fmt.Sprintf("illegal documentation transition %s -> %s", t.state, to)).Build()
	}
	t.state = to
	return nil
}

// AddTag registers a custom tag. A tag with the same name replaces the earlier
// definition in place so the order stays stable.
func (t *Task) AddTag(tag Tag) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, existing := range t.tags {
		if existing.Name == tag.Name {
			t.tags[i] = tag
			return
		}
	}
	t.tags = append(t.tags, tag)
}

// Tags returns the custom tags in registration order.
func (t *Task) Tags() []Tag {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.tags)
}

// AddLink registers an offline link; duplicates by URL are ignored.
func (t *Task) AddLink(l Link) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if slices.ContainsFunc(t.links, func(e Link) bool { return e.URL == l.URL }) {
		return
	}
	t.links = append(t.links, l)
}

// Links returns the offline links in registration order.
func (t *Task) Links() []Link {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.links)
}
