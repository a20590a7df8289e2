package parser

import (
	"reflect"
	"testing"
)

func TestParseTasksFindsCheckboxes(t *testing.T) {
	t.Parallel()

	source := `# plan

- [ ] write the report
- [x] send the draft
- not a task
- [ ]
`
	tasks := ParseTasks(source)
	if len(tasks) != 2 {
		t.Fatalf("tasks: got %d, want 2: %+v", len(tasks), tasks)
	}
	if tasks[0].Checked || tasks[0].Content != "write the report" {
		t.Fatalf("first task: %+v", tasks[0])
	}
	if !tasks[1].Checked || tasks[1].Content != "send the draft" {
		t.Fatalf("second task: %+v", tasks[1])
	}
	if tasks[0].Line != 3 || tasks[1].Line != 4 {
		t.Fatalf("lines: %d, %d", tasks[0].Line, tasks[1].Line)
	}
}

func TestParseTasksNestedList(t *testing.T) {
	t.Parallel()

	source := `- outer
  - [x] inner done
  - [ ] inner open
`
	tasks := ParseTasks(source)
	if len(tasks) != 2 {
		t.Fatalf("tasks: got %d, want 2: %+v", len(tasks), tasks)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	got := Stats("- [x] a\n- [ ] b\n- [x] c\n")
	if got.Checked != 2 || got.Total != 3 {
		t.Fatalf("stats: %+v", got)
	}

	if empty := Stats("no tasks here"); empty.Total != 0 {
		t.Fatalf("empty stats: %+v", empty)
	}
}

func TestParseWikilinks(t *testing.T) {
	t.Parallel()

	source := "see [[alpha]] and [[beta|the beta note]], then [[alpha]] again"
	got := ParseWikilinks(source)
	want := []string{"alpha", "beta"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("links: got %v, want %v", got, want)
	}
}

func TestParseWikilinksIgnoresMalformed(t *testing.T) {
	t.Parallel()

	if got := ParseWikilinks("[[]] and [ [not a link] ]"); got != nil {
		t.Fatalf("malformed: got %v, want nil", got)
	}
}

func TestWikilinkRoundTrip(t *testing.T) {
	t.Parallel()

	link := Wikilink("my note")
	if link != "[[my note]]" {
		t.Fatalf("link: %q", link)
	}
	if got := ParseWikilinks(link); len(got) != 1 || got[0] != "my note" {
		t.Fatalf("round trip: %v", got)
	}
}
