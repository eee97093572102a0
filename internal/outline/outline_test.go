//nolint:testpackage // Tests require internal access for thorough testing
package outline

import (
	"errors"
	"testing"

	"github.com/abatilo/tally/internal/parser"
	"github.com/abatilo/tally/internal/task"
)

const doc = `- [x] Release
  - [x] Tag
  - [ ] Announce
    - [ ] Blog post
- [x] Groceries
  - [x] Milk
- [ ] Taxes
  - [x] Gather receipts`

func parse(t *testing.T, source, document string) []task.Task {
	t.Helper()
	tasks := parser.Parse(document)
	for i := range tasks {
		tasks[i].Source = source
	}
	return tasks
}

func TestRoots(t *testing.T) {
	o := New(parse(t, "a.md", doc))

	roots := o.Roots()
	if len(roots) != 3 {
		t.Fatalf("Roots length = %d, want 3", len(roots))
	}

	want := []string{"Release", "Groceries", "Taxes"}
	for i, w := range want {
		if roots[i].Task.Text != w {
			t.Errorf("root %d = %q, want %q", i, roots[i].Task.Text, w)
		}
	}

	release := roots[0]
	if len(release.Children) != 2 {
		t.Fatalf("Release children = %d, want 2", len(release.Children))
	}
	if got := release.Children[1].Children[0].Task.Text; got != "Blog post" {
		t.Errorf("grandchild = %q, want %q", got, "Blog post")
	}
}

func TestChildren(t *testing.T) {
	o := New(parse(t, "a.md", doc))

	tests := []struct {
		line int
		want []int
	}{
		{1, []int{2, 3}},
		{3, []int{4}},
		{4, nil},
		{5, []int{6}},
		{99, nil},
	}

	for _, tt := range tests {
		got := o.Children(Key{Source: "a.md", Line: tt.line})
		if len(got) != len(tt.want) {
			t.Errorf("Children(%d) = %v, want lines %v", tt.line, got, tt.want)
			continue
		}
		for i := range got {
			if got[i].Line != tt.want[i] {
				t.Errorf("Children(%d)[%d] = %d, want %d", tt.line, i, got[i].Line, tt.want[i])
			}
		}
	}
}

func TestRollup(t *testing.T) {
	o := New(parse(t, "a.md", doc))

	tests := []struct {
		line        int
		done, total int
	}{
		{1, 1, 3},
		{3, 0, 1},
		{5, 1, 1},
		{6, 0, 0},
	}

	for _, tt := range tests {
		done, total := o.Rollup(Key{Source: "a.md", Line: tt.line})
		if done != tt.done || total != tt.total {
			t.Errorf("Rollup(%d) = %d/%d, want %d/%d", tt.line, done, total, tt.done, tt.total)
		}
	}
}

func TestInconsistent(t *testing.T) {
	o := New(parse(t, "a.md", doc))

	bad := o.Inconsistent()
	if len(bad) != 1 {
		t.Fatalf("Inconsistent length = %d, want 1", len(bad))
	}
	if bad[0].Text != "Release" {
		t.Errorf("Inconsistent[0] = %q, want Release", bad[0].Text)
	}

	err := o.Check()
	var ie InconsistentError
	if !errors.As(err, &ie) {
		t.Fatalf("Check() = %v, want InconsistentError", err)
	}
	if ie.Item.Line != 1 || len(ie.Open) != 2 {
		t.Errorf("InconsistentError = %+v, want item 1 with 2 open", ie)
	}
}

func TestCheckConsistent(t *testing.T) {
	o := New(parse(t, "a.md", "- [x] a\n  - [x] b\n- [ ] c\n  - [x] d"))
	if err := o.Check(); err != nil {
		t.Errorf("Check() = %v, want nil", err)
	}
}

func TestActionable(t *testing.T) {
	o := New(parse(t, "a.md", doc))

	got := o.Actionable()
	ids := map[string]bool{}
	for _, a := range got {
		ids[a.Text] = true
	}

	// Announce waits on Blog post; Taxes has nothing open below it.
	if len(got) != 2 || !ids["Blog post"] || !ids["Taxes"] {
		t.Errorf("Actionable = %v, want Blog post and Taxes", ids)
	}
}

func TestMultipleSources(t *testing.T) {
	tasks := append(parse(t, "b.md", "- [ ] b1\n  - [ ] b2"), parse(t, "a.md", "- [ ] a1\n  - [x] a2")...)
	o := New(tasks)

	roots := o.Roots()
	if len(roots) != 2 {
		t.Fatalf("Roots length = %d, want 2", len(roots))
	}
	if roots[0].Task.Source != "a.md" || roots[1].Task.Source != "b.md" {
		t.Errorf("roots not ordered by source: %s, %s", roots[0].Task.Source, roots[1].Task.Source)
	}
	if len(roots[0].Children) != 1 || roots[0].Children[0].Task.Text != "a2" {
		t.Errorf("a.md children = %+v", roots[0].Children)
	}
}

func TestOrphanBecomesRoot(t *testing.T) {
	tasks := []task.Task{
		{Text: "child", SourceLine: 3, Parent: 1, Depth: 1},
	}
	o := New(tasks)
	if len(o.Roots()) != 1 {
		t.Errorf("orphan should be a root")
	}
}

func TestGet(t *testing.T) {
	o := New(parse(t, "a.md", doc))

	if _, ok := o.Get(Key{Source: "a.md", Line: 2}); !ok {
		t.Error("Get(2) not found")
	}
	if _, ok := o.Get(Key{Source: "b.md", Line: 2}); ok {
		t.Error("Get on other source should miss")
	}
}
