package domain

import (
	"strings"
	"time"

	"kanbanApi/internal/shared/apperr"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type EntityType string

const (
	EntityBoard   EntityType = "board"
	EntityGroup   EntityType = "group"
	EntityTask    EntityType = "task"
	EntityComment EntityType = "comment"
)

// Activity is an append-only audit record. Existing records are never edited.
type Activity struct {
	UserID    string     `json:"userId" bson:"userId"`
	Action    Action     `json:"action" bson:"action"`
	Entity    EntityType `json:"entity" bson:"entity"`
	EntityID  string     `json:"entityId" bson:"entityId"`
	Timestamp time.Time  `json:"timestamp" bson:"timestamp"`
}

func NewActivity(userID string, action Action, entity EntityType, entityID string, at time.Time) Activity {
	return Activity{UserID: userID, Action: action, Entity: entity, EntityID: entityID, Timestamp: at.UTC()}
}

// ValidateActivity rejects records the board log cannot hold.
func ValidateActivity(action Action, entity EntityType, entityID string) error {
	switch action {
	case ActionCreate, ActionUpdate, ActionDelete:
	default:
		return apperr.Validation("unknown activity action %q", action)
	}
	switch entity {
	case EntityBoard, EntityGroup, EntityTask, EntityComment:
	default:
		return apperr.Validation("unknown activity entity %q", entity)
	}
	if strings.TrimSpace(entityID) == "" {
		return apperr.Validation("activity entityId is required")
	}
	return nil
}

// RecordActivity appends a to the board log and, when the entity still
// exists, to that entity's own log. Deleted entities only reach the board.
func (b *Board) RecordActivity(a Activity) {
	b.Activities = append(b.Activities, a)

	switch a.Entity {
	case EntityGroup:
		if g, err := b.Group(a.EntityID); err == nil {
			g.Activities = append(g.Activities, a)
		}
	case EntityTask:
		for gi := range b.Groups {
			if t, err := b.Groups[gi].Task(a.EntityID); err == nil {
				t.Activities = append(t.Activities, a)
				return
			}
		}
	case EntityComment:
		if c := b.findComment(a.EntityID); c != nil {
			c.Activities = append(c.Activities, a)
		}
	}
}

func (b *Board) findComment(id string) *Comment {
	if c := commentIn(b.Comments, id); c != nil {
		return c
	}
	for gi := range b.Groups {
		g := &b.Groups[gi]
		if c := commentIn(g.Comments, id); c != nil {
			return c
		}
		for ti := range g.Tasks {
			if c := commentIn(g.Tasks[ti].Comments, id); c != nil {
				return c
			}
		}
	}
	return nil
}

func commentIn(comments []Comment, id string) *Comment {
	for i := range comments {
		if comments[i].ID == id {
			return &comments[i]
		}
	}
	return nil
}
