package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"kanbanApi/internal/shared/apperr"
)

func TestEmptyBoardTemplate(t *testing.T) {
	t.Parallel()

	creator := &MiniUser{ID: "u1", Fullname: "Ada"}
	b := EmptyBoard("Roadmap", "Sprint", creator)

	if len(b.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(b.Groups))
	}
	if got := b.Groups[0].Style["backgroundColor"]; got != "#579bfc" {
		t.Fatalf("unexpected first group color %q", got)
	}
	if got := b.Groups[1].Style["backgroundColor"]; got != "#a25ddc" {
		t.Fatalf("unexpected second group color %q", got)
	}
	if len(b.Groups[0].Tasks) != 3 || len(b.Groups[1].Tasks) != 2 {
		t.Fatalf("unexpected task split %d/%d", len(b.Groups[0].Tasks), len(b.Groups[1].Tasks))
	}
	first := b.Groups[0].Tasks[0]
	if first.Title != "Sprint 1" || first.Status != "Done" || first.Priority != "High" {
		t.Fatalf("unexpected first task %+v", first)
	}
	if last := b.Groups[1].Tasks[1]; last.Title != "Sprint 5" || last.Status != "Not Started" || last.Priority != "Low" {
		t.Fatalf("unexpected last task %+v", last)
	}
	if b.CreatedBy != creator || len(b.CmpsOrder) != len(DefaultCmpsOrder) {
		t.Fatalf("unexpected board header %+v", b)
	}
}

func TestResolveTargetPrecedence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		group, task string
		want        ContainerKind
	}{
		{"g1", "t1", ContainerTask},
		{"", "t1", ContainerTask},
		{"g1", "", ContainerGroup},
		{"", "", ContainerBoard},
	}
	for _, tc := range cases {
		if got := ResolveTarget(tc.group, tc.task).Kind; got != tc.want {
			t.Fatalf("ResolveTarget(%q, %q) = %s, want %s", tc.group, tc.task, got, tc.want)
		}
	}
}

func TestCommentListLocatesContainers(t *testing.T) {
	t.Parallel()

	b := EmptyBoard("b", "L", nil)
	g := b.Groups[0]
	task := g.Tasks[1]

	list, err := b.CommentList(ResolveTarget(g.ID, task.ID))
	if err != nil {
		t.Fatalf("task container: %v", err)
	}
	*list = append(*list, Comment{ID: "c1", Title: "hi"})
	if len(b.Groups[0].Tasks[1].Comments) != 1 {
		t.Fatalf("comment did not land on the task")
	}

	if _, err := b.CommentList(ResolveTarget("missing", "")); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown group, got %v", err)
	}
	if _, err := b.CommentList(ResolveTarget("", task.ID)); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error without group, got %v", err)
	}

	removed, err := b.RemoveComment(ResolveTarget(g.ID, task.ID), "c1")
	if err != nil || removed.Title != "hi" {
		t.Fatalf("remove comment: %+v, %v", removed, err)
	}
	if _, err := b.RemoveComment(ResolveTarget("", ""), "c1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found on board container, got %v", err)
	}
}

func TestRecordActivityAppendsToBoardAndEntity(t *testing.T) {
	t.Parallel()

	b := EmptyBoard("b", "L", nil)
	g := &b.Groups[1]
	task := g.Tasks[0]
	g.Tasks[0].Comments = append(g.Tasks[0].Comments, Comment{ID: "c1"})
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	b.RecordActivity(NewActivity("u1", ActionUpdate, EntityTask, task.ID, at))
	b.RecordActivity(NewActivity("u1", ActionCreate, EntityComment, "c1", at))
	b.RecordActivity(NewActivity("u1", ActionDelete, EntityGroup, "gone", at))

	if len(b.Activities) != 3 {
		t.Fatalf("expected 3 board activities, got %d", len(b.Activities))
	}
	if len(b.Groups[1].Tasks[0].Activities) != 1 {
		t.Fatalf("task activity missing")
	}
	if len(b.Groups[1].Tasks[0].Comments[0].Activities) != 1 {
		t.Fatalf("comment activity missing")
	}
	if b.Activities[0].Timestamp != at || b.Activities[0].UserID != "u1" {
		t.Fatalf("unexpected record %+v", b.Activities[0])
	}
}

func TestTaskPatchAppliesOnlyPresentFields(t *testing.T) {
	t.Parallel()

	due := int64(1700000000000)
	task := EmptyTask("")
	task.DueDate = &due

	var patch TaskPatch
	if err := json.Unmarshal([]byte(`{"status":"Stuck","dueDate":null}`), &patch); err != nil {
		t.Fatalf("decode patch: %v", err)
	}
	patch.Apply(&task)

	if task.Status != "Stuck" {
		t.Fatalf("status not applied: %q", task.Status)
	}
	if task.DueDate != nil {
		t.Fatalf("explicit null should clear dueDate")
	}
	if task.Title != "New Task" || task.Priority != "Low" {
		t.Fatalf("absent fields changed: %+v", task)
	}
}

// clientGroups copies groups through JSON the way a client echoes a board back.
func clientGroups(t *testing.T, groups []Group) []Group {
	t.Helper()
	body, err := json.Marshal(groups)
	if err != nil {
		t.Fatalf("encode groups: %v", err)
	}
	var out []Group
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode groups: %v", err)
	}
	return out
}

// boardWithHistory returns a template board whose first task carries a
// comment by "author" and one activity for the task and for the comment.
func boardWithHistory() Board {
	b := EmptyBoard("b", "L", nil)
	b.Groups[0].Tasks[0].Comments = []Comment{{ID: "c1", Title: "original", ByMember: MiniUser{ID: "author"}}}
	b.Groups[0].Comments = []Comment{{ID: "gc1", Title: "group note", ByMember: MiniUser{ID: "author"}}}
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	b.RecordActivity(NewActivity("author", ActionUpdate, EntityTask, b.Groups[0].Tasks[0].ID, at))
	b.RecordActivity(NewActivity("author", ActionCreate, EntityComment, "c1", at))
	b.RecordActivity(NewActivity("author", ActionUpdate, EntityGroup, b.Groups[0].ID, at))
	return b
}

func findTask(b *Board, id string) (*Group, *Task) {
	for gi := range b.Groups {
		if task, err := b.Groups[gi].Task(id); err == nil {
			return &b.Groups[gi], task
		}
	}
	return nil, nil
}

func TestBoardPatchKeepsStoredHistory(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		edit  func(t *testing.T, b Board) []Group
		check func(t *testing.T, b Board, taskID string)
	}{
		"reorder groups": {
			edit: func(t *testing.T, b Board) []Group {
				groups := clientGroups(t, b.Groups)
				groups[0].Title = "Renamed"
				groups[0].Activities = nil
				return []Group{groups[1], groups[0]}
			},
			check: func(t *testing.T, b Board, _ string) {
				if b.Groups[1].Title != "Renamed" || len(b.Groups[1].Activities) != 1 {
					t.Fatalf("group activity lost after reorder: %+v", b.Groups[1])
				}
			},
		},
		"move task across groups": {
			edit: func(t *testing.T, b Board) []Group {
				groups := clientGroups(t, b.Groups)
				moved := groups[0].Tasks[0]
				moved.Activities = nil
				moved.Comments = nil
				groups[0].Tasks = groups[0].Tasks[1:]
				groups[1].Tasks = append([]Task{moved}, groups[1].Tasks...)
				return groups
			},
			check: func(t *testing.T, b Board, taskID string) {
				group, task := findTask(&b, taskID)
				if task == nil || group.ID != b.Groups[1].ID {
					t.Fatalf("task %s not moved to second group", taskID)
				}
				if len(task.Activities) != 1 {
					t.Fatalf("moved task activities = %d, want 1", len(task.Activities))
				}
				if len(task.Comments) != 1 || len(task.Comments[0].Activities) != 1 {
					t.Fatalf("moved task comments lost: %+v", task.Comments)
				}
			},
		},
		"rewrite comment": {
			edit: func(t *testing.T, b Board) []Group {
				groups := clientGroups(t, b.Groups)
				groups[0].Tasks[0].Comments[0].Title = "edited by someone else"
				groups[0].Tasks[0].Comments[0].Activities = nil
				groups[0].Comments[0].Title = "edited too"
				return groups
			},
			check: func(t *testing.T, b Board, taskID string) {
				_, task := findTask(&b, taskID)
				c := task.Comments[0]
				if c.Title != "original" || len(c.Activities) != 1 {
					t.Fatalf("comment rewritten: title=%q activities=%d", c.Title, len(c.Activities))
				}
				if b.Groups[0].Comments[0].Title != "group note" {
					t.Fatalf("group comment rewritten: %+v", b.Groups[0].Comments[0])
				}
			},
		},
		"drop comments": {
			edit: func(t *testing.T, b Board) []Group {
				groups := clientGroups(t, b.Groups)
				groups[0].Tasks[0].Comments = []Comment{}
				groups[0].Comments = nil
				return groups
			},
			check: func(t *testing.T, b Board, taskID string) {
				_, task := findTask(&b, taskID)
				if len(task.Comments) != 1 || len(b.Groups[0].Comments) != 1 {
					t.Fatalf("comments removed through board patch: task=%d group=%d", len(task.Comments), len(b.Groups[0].Comments))
				}
			},
		},
		"new entities carrying made up history": {
			edit: func(t *testing.T, b Board) []Group {
				groups := clientGroups(t, b.Groups)
				forged := []Activity{{UserID: "x", Action: ActionCreate, Entity: EntityTask, EntityID: "t-new"}}
				fake := []Comment{{ID: "c-fake", Title: "fake", ByMember: MiniUser{ID: "author"}}}
				groups[0].Tasks = append(groups[0].Tasks, Task{ID: "t-new", Title: "new", Activities: forged, Comments: fake})
				groups = append(groups, Group{ID: "g-new", Title: "new", Activities: forged, Comments: fake, Tasks: []Task{{Title: "fresh", Activities: forged}}})
				return groups
			},
			check: func(t *testing.T, b Board, _ string) {
				_, task := findTask(&b, "t-new")
				if task == nil || len(task.Activities) != 0 || len(task.Comments) != 0 {
					t.Fatalf("new task kept client history: %+v", task)
				}
				g, err := b.Group("g-new")
				if err != nil {
					t.Fatalf("new group missing: %v", err)
				}
				if len(g.Activities) != 0 || len(g.Comments) != 0 || len(g.Tasks[0].Activities) != 0 {
					t.Fatalf("new group kept client history: %+v", g)
				}
				if g.Tasks[0].ID == "" {
					t.Fatalf("new task without id")
				}
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b := boardWithHistory()
			taskID := b.Groups[0].Tasks[0].ID
			BoardPatch{Groups: Some(tc.edit(t, b))}.Apply(&b)

			if len(b.Activities) != 3 {
				t.Fatalf("board activities changed: %d", len(b.Activities))
			}
			tc.check(t, b, taskID)
		})
	}
}

func TestGroupPatchKeepsStoredHistory(t *testing.T) {
	t.Parallel()

	b := boardWithHistory()
	source := b.Groups[0]
	target := &b.Groups[1]
	moved := clientGroups(t, []Group{source})[0].Tasks[0]
	moved.Comments = []Comment{{ID: "c1", Title: "edited by someone else", ByMember: MiniUser{ID: "author"}}}
	moved.Activities = nil

	tasks := append([]Task{moved}, clientGroups(t, []Group{*target})[0].Tasks...)
	tasks = append(tasks, Task{Title: "added", Activities: []Activity{{UserID: "x"}}})
	GroupPatch{Tasks: Some(tasks)}.Apply(&b, target)

	got := target.Tasks[0]
	if len(got.Activities) != 1 {
		t.Fatalf("moved task activities = %d, want 1", len(got.Activities))
	}
	if len(got.Comments) != 1 || got.Comments[0].Title != "original" {
		t.Fatalf("comment rewritten through group patch: %+v", got.Comments)
	}
	added := target.Tasks[len(target.Tasks)-1]
	if added.ID == "" || len(added.Activities) != 0 {
		t.Fatalf("added task kept client history: %+v", added)
	}
}

func TestPatchValidation(t *testing.T) {
	t.Parallel()

	if err := (BoardPatch{Title: Some("  ")}).Validate(); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := (CommentPatch{}).Validate(); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("comment without title should fail, got %v", err)
	}
	if err := (GroupPatch{Title: Some("ok")}).Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestValidateActivity(t *testing.T) {
	t.Parallel()

	if err := ValidateActivity(ActionDelete, EntityComment, "c1"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	cases := map[string]struct {
		action Action
		entity EntityType
		id     string
	}{
		"unknown action": {"rename", EntityTask, "t1"},
		"unknown entity": {ActionUpdate, "column", "t1"},
		"missing id":     {ActionUpdate, EntityTask, " "},
	}
	for name, tc := range cases {
		if err := ValidateActivity(tc.action, tc.entity, tc.id); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}
