package domain

import "kanbanApi/internal/shared/apperr"

type ContainerKind int

const (
	ContainerBoard ContainerKind = iota
	ContainerGroup
	ContainerTask
)

func (k ContainerKind) String() string {
	switch k {
	case ContainerGroup:
		return "group"
	case ContainerTask:
		return "task"
	default:
		return "board"
	}
}

// CommentTarget names the entity whose comment list an operation acts on.
type CommentTarget struct {
	Kind    ContainerKind
	GroupID string
	TaskID  string
}

// ResolveTarget picks the most specific container given: a task id wins over
// a group id, which wins over the board itself.
func ResolveTarget(groupID, taskID string) CommentTarget {
	switch {
	case taskID != "":
		return CommentTarget{Kind: ContainerTask, GroupID: groupID, TaskID: taskID}
	case groupID != "":
		return CommentTarget{Kind: ContainerGroup, GroupID: groupID}
	default:
		return CommentTarget{Kind: ContainerBoard}
	}
}

// CommentList returns a pointer to the comment slice of the target container.
func (b *Board) CommentList(target CommentTarget) (*[]Comment, error) {
	switch target.Kind {
	case ContainerTask:
		if target.GroupID == "" {
			return nil, apperr.Validation("groupId is required to address task %q", target.TaskID)
		}
		g, err := b.Group(target.GroupID)
		if err != nil {
			return nil, err
		}
		t, err := g.Task(target.TaskID)
		if err != nil {
			return nil, err
		}
		return &t.Comments, nil
	case ContainerGroup:
		g, err := b.Group(target.GroupID)
		if err != nil {
			return nil, err
		}
		return &g.Comments, nil
	default:
		return &b.Comments, nil
	}
}

// Comment finds a comment inside the target container.
func (b *Board) Comment(target CommentTarget, id string) (*Comment, error) {
	list, err := b.CommentList(target)
	if err != nil {
		return nil, err
	}
	if c := commentIn(*list, id); c != nil {
		return c, nil
	}
	return nil, apperr.NotFound("comment", id)
}

// RemoveComment deletes a comment from the target container and returns it.
func (b *Board) RemoveComment(target CommentTarget, id string) (Comment, error) {
	list, err := b.CommentList(target)
	if err != nil {
		return Comment{}, err
	}
	for i := range *list {
		if (*list)[i].ID == id {
			removed := (*list)[i]
			*list = append((*list)[:i], (*list)[i+1:]...)
			return removed, nil
		}
	}
	return Comment{}, apperr.NotFound("comment", id)
}
