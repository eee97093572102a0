// Package outline rebuilds the nesting of checklist items.
package outline

import (
	"sort"

	"github.com/abatilo/tally/internal/task"
)

// Key identifies a task by its file and line.
type Key struct {
	Source string
	Line   int
}

// KeyOf returns the key of t.
func KeyOf(t task.Task) Key {
	return Key{Source: t.Source, Line: t.SourceLine}
}

// Node is a task with its nested children.
type Node struct {
	Task     task.Task
	Children []Node
}

// Outline represents the parent/child relationships between checklist items.
type Outline struct {
	tasks    map[Key]task.Task
	children map[Key][]Key
	roots    []Key
}

// New creates an Outline from parsed tasks. A task whose parent is missing is
// treated as a root.
func New(tasks []task.Task) *Outline {
	o := &Outline{
		tasks:    make(map[Key]task.Task, len(tasks)),
		children: make(map[Key][]Key),
	}
	for _, t := range tasks {
		o.tasks[KeyOf(t)] = t
	}
	for _, t := range tasks {
		k := KeyOf(t)
		parent := Key{Source: t.Source, Line: t.Parent}
		if _, ok := o.tasks[parent]; t.Parent == 0 || !ok {
			o.roots = append(o.roots, k)
			continue
		}
		o.children[parent] = append(o.children[parent], k)
	}
	sortKeys(o.roots)
	for k := range o.children {
		sortKeys(o.children[k])
	}
	return o
}

// Get returns a task by key.
func (o *Outline) Get(k Key) (task.Task, bool) {
	t, ok := o.tasks[k]
	return t, ok
}

// Children returns the keys of the direct children of k.
func (o *Outline) Children(k Key) []Key {
	return o.children[k]
}

// Roots returns the top-level items with their subtrees.
func (o *Outline) Roots() []Node {
	nodes := make([]Node, 0, len(o.roots))
	for _, k := range o.roots {
		nodes = append(nodes, o.node(k))
	}
	return nodes
}

func (o *Outline) node(k Key) Node {
	n := Node{Task: o.tasks[k]}
	for _, c := range o.children[k] {
		n.Children = append(n.Children, o.node(c))
	}
	return n
}

// Descendants returns every key below k, breadth first.
func (o *Outline) Descendants(k Key) []Key {
	var out []Key
	queue := append([]Key(nil), o.children[k]...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		out = append(out, current)
		queue = append(queue, o.children[current]...)
	}
	return out
}

// OpenDescendants returns the incomplete items below k.
func (o *Outline) OpenDescendants(k Key) []Key {
	var open []Key
	for _, d := range o.Descendants(k) {
		if !o.tasks[d].Completed {
			open = append(open, d)
		}
	}
	return open
}

// Rollup returns how many items below k are completed, and how many there are.
func (o *Outline) Rollup(k Key) (done, total int) {
	for _, d := range o.Descendants(k) {
		total++
		if o.tasks[d].Completed {
			done++
		}
	}
	return done, total
}

// Inconsistent returns completed items that still have incomplete descendants,
// in file and line order.
func (o *Outline) Inconsistent() []task.Task {
	var out []task.Task
	for _, k := range o.keys() {
		t := o.tasks[k]
		if t.Completed && len(o.OpenDescendants(k)) > 0 {
			out = append(out, t)
		}
	}
	return out
}

// Check returns an InconsistentError for the first completed item with open
// descendants, or nil.
func (o *Outline) Check() error {
	bad := o.Inconsistent()
	if len(bad) == 0 {
		return nil
	}
	k := KeyOf(bad[0])
	return InconsistentError{Item: k, Open: o.OpenDescendants(k)}
}

// Actionable returns open items whose descendants are all completed.
func (o *Outline) Actionable() []task.Task {
	var out []task.Task
	for _, k := range o.keys() {
		t := o.tasks[k]
		if t.Completed {
			continue
		}
		if len(o.OpenDescendants(k)) == 0 {
			out = append(out, t)
		}
	}
	return out
}

func (o *Outline) keys() []Key {
	keys := make([]Key, 0, len(o.tasks))
	for k := range o.tasks {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		return keyLess(keys[i], keys[j])
	})
}

// keyLess orders by source path, then line.
func keyLess(a, b Key) bool {
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	return a.Line < b.Line
}
