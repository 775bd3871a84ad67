package domain

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"kanbanApi/internal/shared/apperr"
)

// MiniUser is the embedded projection of a user stored inside boards.
type MiniUser struct {
	ID       string `json:"_id" bson:"_id"`
	Fullname string `json:"fullname" bson:"fullname"`
	ImgURL   string `json:"imgUrl,omitempty" bson:"imgUrl,omitempty"`
}

type Comment struct {
	ID         string     `json:"_id" bson:"_id"`
	Title      string     `json:"title" bson:"title"`
	CreatedAt  int64      `json:"createdAt" bson:"createdAt"`
	ByMember   MiniUser   `json:"byMember" bson:"byMember"`
	Activities []Activity `json:"activities,omitempty" bson:"activities,omitempty"`
}

type Todo struct {
	ID     string `json:"_id" bson:"_id"`
	Title  string `json:"title" bson:"title"`
	IsDone bool   `json:"isDone" bson:"isDone"`
}

type Checklist struct {
	ID    string `json:"_id" bson:"_id"`
	Title string `json:"title" bson:"title"`
	Todos []Todo `json:"todos" bson:"todos"`
}

type Task struct {
	ID          string            `json:"_id" bson:"_id"`
	Title       string            `json:"title" bson:"title"`
	Description string            `json:"description" bson:"description"`
	Status      string            `json:"status" bson:"status"`
	Priority    string            `json:"priority" bson:"priority"`
	DueDate     *int64            `json:"dueDate" bson:"dueDate"`
	ArchivedAt  *int64            `json:"archivedAt" bson:"archivedAt"`
	MemberIDs   []string          `json:"memberIds" bson:"memberIds"`
	Labels      []string          `json:"labels" bson:"labels"`
	Comments    []Comment         `json:"comments" bson:"comments"`
	Checklists  []Checklist       `json:"checklists" bson:"checklists"`
	ByMember    *MiniUser         `json:"byMember" bson:"byMember"`
	Style       map[string]string `json:"style" bson:"style"`
	Activities  []Activity        `json:"activities,omitempty" bson:"activities,omitempty"`
}

type Group struct {
	ID         string            `json:"_id" bson:"_id"`
	Title      string            `json:"title" bson:"title"`
	ArchivedAt *int64            `json:"archivedAt" bson:"archivedAt"`
	Style      map[string]string `json:"style" bson:"style"`
	Tasks      []Task            `json:"tasks" bson:"tasks"`
	Comments   []Comment         `json:"comments,omitempty" bson:"comments,omitempty"`
	Activities []Activity        `json:"activities,omitempty" bson:"activities,omitempty"`
}

// Board is the aggregate persisted as one document. Every nested mutation
// loads it whole, edits it in memory and writes it back whole.
type Board struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	IsStarred   bool               `json:"isStarred" bson:"isStarred"`
	ArchivedAt  *int64             `json:"archivedAt" bson:"archivedAt"`
	CreatedBy   *MiniUser          `json:"createdBy" bson:"createdBy"`
	Label       string             `json:"label" bson:"label"`
	Style       map[string]string  `json:"style,omitempty" bson:"style,omitempty"`
	Members     []MiniUser         `json:"members" bson:"members"`
	Groups      []Group            `json:"groups" bson:"groups"`
	Comments    []Comment          `json:"comments,omitempty" bson:"comments,omitempty"`
	Activities  []Activity         `json:"activities" bson:"activities"`
	CmpsOrder   []string           `json:"cmpsOrder" bson:"cmpsOrder"`
	CreatedAt   time.Time          `json:"createdAt" bson:"-"`
}

// BoardFilter narrows board listings.
type BoardFilter struct {
	Txt       string
	SortField string
	SortDir   int
	PageIdx   *int
}

const PageSize = 20

// NewID returns an identifier for a nested entity.
func NewID() string {
	return uuid.NewString()
}

// Group returns the group with id, or a not-found error.
func (b *Board) Group(id string) (*Group, error) {
	if i := b.groupIndex(id); i >= 0 {
		return &b.Groups[i], nil
	}
	return nil, apperr.NotFound("group", id)
}

// RemoveGroup deletes the group with id and returns it.
func (b *Board) RemoveGroup(id string) (Group, error) {
	i := b.groupIndex(id)
	if i < 0 {
		return Group{}, apperr.NotFound("group", id)
	}
	removed := b.Groups[i]
	b.Groups = append(b.Groups[:i], b.Groups[i+1:]...)
	return removed, nil
}

func (b *Board) groupIndex(id string) int {
	for i := range b.Groups {
		if b.Groups[i].ID == id {
			return i
		}
	}
	return -1
}

// Task returns the task with id, or a not-found error.
func (g *Group) Task(id string) (*Task, error) {
	if i := g.taskIndex(id); i >= 0 {
		return &g.Tasks[i], nil
	}
	return nil, apperr.NotFound("task", id)
}

// RemoveTask deletes the task with id and returns it.
func (g *Group) RemoveTask(id string) (Task, error) {
	i := g.taskIndex(id)
	if i < 0 {
		return Task{}, apperr.NotFound("task", id)
	}
	removed := g.Tasks[i]
	g.Tasks = append(g.Tasks[:i], g.Tasks[i+1:]...)
	return removed, nil
}

func (g *Group) taskIndex(id string) int {
	for i := range g.Tasks {
		if g.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Normalize fills nil collections so the document always carries arrays, and
// derives CreatedAt from the object id.
func (b *Board) Normalize() {
	if b.Members == nil {
		b.Members = []MiniUser{}
	}
	if b.Groups == nil {
		b.Groups = []Group{}
	}
	if b.Activities == nil {
		b.Activities = []Activity{}
	}
	if b.CmpsOrder == nil {
		b.CmpsOrder = append([]string(nil), DefaultCmpsOrder...)
	}
	for gi := range b.Groups {
		g := &b.Groups[gi]
		if g.ID == "" {
			g.ID = NewID()
		}
		if g.Tasks == nil {
			g.Tasks = []Task{}
		}
		for ti := range g.Tasks {
			t := &g.Tasks[ti]
			if t.ID == "" {
				t.ID = NewID()
			}
			if t.Comments == nil {
				t.Comments = []Comment{}
			}
		}
	}
	if !b.ID.IsZero() {
		b.CreatedAt = b.ID.Timestamp()
	}
}
