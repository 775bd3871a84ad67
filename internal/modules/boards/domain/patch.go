package domain

import (
	"encoding/json"
	"strings"

	"kanbanApi/internal/shared/apperr"
)

// Optional distinguishes an absent JSON field from an explicit value,
// including an explicit null.
type Optional[T any] struct {
	Value T
	Set   bool
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func (o Optional[T]) apply(dst *T) {
	if o.Set {
		*dst = o.Value
	}
}

// BoardPatch lists the board fields a client may change. Activities and the
// creator are not patchable.
type BoardPatch struct {
	Title       Optional[string]            `json:"title"`
	Description Optional[string]            `json:"description"`
	IsStarred   Optional[bool]              `json:"isStarred"`
	ArchivedAt  Optional[*int64]            `json:"archivedAt"`
	Label       Optional[string]            `json:"label"`
	Style       Optional[map[string]string] `json:"style"`
	Members     Optional[[]MiniUser]        `json:"members"`
	Groups      Optional[[]Group]           `json:"groups"`
	CmpsOrder   Optional[[]string]          `json:"cmpsOrder"`
}

func (p BoardPatch) Validate() error {
	if p.Title.Set && strings.TrimSpace(p.Title.Value) == "" {
		return apperr.Validation("board title cannot be empty")
	}
	return nil
}

func (p BoardPatch) Apply(b *Board) {
	p.Title.apply(&b.Title)
	p.Description.apply(&b.Description)
	p.IsStarred.apply(&b.IsStarred)
	p.ArchivedAt.apply(&b.ArchivedAt)
	p.Label.apply(&b.Label)
	p.Style.apply(&b.Style)
	p.Members.apply(&b.Members)
	if p.Groups.Set {
		stored := indexStored(b.Groups)
		groups := p.Groups.Value
		for i := range groups {
			stored.restoreGroup(&groups[i])
		}
		b.Groups = groups
	}
	p.CmpsOrder.apply(&b.CmpsOrder)
	b.Normalize()
}

// storedEntities indexes the groups and tasks of a board as persisted, so
// client payloads can never rewrite their comments or activity logs.
type storedEntities struct {
	groups map[string]Group
	tasks  map[string]Task
}

func indexStored(groups []Group) storedEntities {
	s := storedEntities{groups: make(map[string]Group, len(groups)), tasks: map[string]Task{}}
	for _, g := range groups {
		s.groups[g.ID] = g
		for _, t := range g.Tasks {
			s.tasks[t.ID] = t
		}
	}
	return s
}

// restoreGroup keeps the stored comments and activities of g and of each of
// its tasks. Entities the board does not hold yet start with none.
func (s storedEntities) restoreGroup(g *Group) {
	if prev, ok := s.groups[g.ID]; ok && g.ID != "" {
		g.Comments = prev.Comments
		g.Activities = prev.Activities
	} else {
		g.Comments = []Comment{}
		g.Activities = nil
	}
	s.restoreTasks(g.Tasks)
}

// restoreTasks looks tasks up board wide, so a task moved between groups
// keeps its history.
func (s storedEntities) restoreTasks(tasks []Task) {
	for i := range tasks {
		t := &tasks[i]
		if prev, ok := s.tasks[t.ID]; ok && t.ID != "" {
			t.Comments = prev.Comments
			t.Activities = prev.Activities
			continue
		}
		t.Comments = []Comment{}
		t.Activities = nil
	}
}

type GroupPatch struct {
	Title      Optional[string]            `json:"title"`
	ArchivedAt Optional[*int64]            `json:"archivedAt"`
	Style      Optional[map[string]string] `json:"style"`
	Tasks      Optional[[]Task]            `json:"tasks"`
}

func (p GroupPatch) Validate() error {
	if p.Title.Set && strings.TrimSpace(p.Title.Value) == "" {
		return apperr.Validation("group title cannot be empty")
	}
	return nil
}

// Apply changes g, which belongs to (or is about to join) b. Incoming tasks
// take their comments and activities from b.
func (p GroupPatch) Apply(b *Board, g *Group) {
	p.Title.apply(&g.Title)
	p.ArchivedAt.apply(&g.ArchivedAt)
	p.Style.apply(&g.Style)
	if p.Tasks.Set {
		tasks := p.Tasks.Value
		if tasks == nil {
			tasks = []Task{}
		}
		indexStored(b.Groups).restoreTasks(tasks)
		for i := range tasks {
			if tasks[i].ID == "" {
				tasks[i].ID = NewID()
			}
		}
		g.Tasks = tasks
	}
}

type TaskPatch struct {
	Title       Optional[string]            `json:"title"`
	Description Optional[string]            `json:"description"`
	Status      Optional[string]            `json:"status"`
	Priority    Optional[string]            `json:"priority"`
	DueDate     Optional[*int64]            `json:"dueDate"`
	ArchivedAt  Optional[*int64]            `json:"archivedAt"`
	MemberIDs   Optional[[]string]          `json:"memberIds"`
	Labels      Optional[[]string]          `json:"labels"`
	Checklists  Optional[[]Checklist]       `json:"checklists"`
	ByMember    Optional[*MiniUser]         `json:"byMember"`
	Style       Optional[map[string]string] `json:"style"`
}

func (p TaskPatch) Validate() error {
	if p.Title.Set && strings.TrimSpace(p.Title.Value) == "" {
		return apperr.Validation("task title cannot be empty")
	}
	return nil
}

func (p TaskPatch) Apply(t *Task) {
	p.Title.apply(&t.Title)
	p.Description.apply(&t.Description)
	p.Status.apply(&t.Status)
	p.Priority.apply(&t.Priority)
	p.DueDate.apply(&t.DueDate)
	p.ArchivedAt.apply(&t.ArchivedAt)
	p.MemberIDs.apply(&t.MemberIDs)
	p.Labels.apply(&t.Labels)
	p.Checklists.apply(&t.Checklists)
	p.ByMember.apply(&t.ByMember)
	p.Style.apply(&t.Style)
}

type CommentPatch struct {
	Title Optional[string] `json:"title"`
}

func (p CommentPatch) Validate() error {
	if !p.Title.Set || strings.TrimSpace(p.Title.Value) == "" {
		return apperr.Validation("comment title is required")
	}
	return nil
}

func (p CommentPatch) Apply(c *Comment) {
	p.Title.apply(&c.Title)
}
