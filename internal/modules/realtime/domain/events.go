package domain

import "strings"

// Socket protocol events sent by clients.
const (
	EventSetTopic        = "set-topic"
	EventSetUserSocket   = "set-user-socket"
	EventUnsetUserSocket = "unset-user-socket"
	EventUserWatch       = "user-watch"
	EventChatSendMsg     = "chat-send-msg"
	EventPing            = "ping"
	EventBoardUpdated    = "board-updated"
	EventTaskUpdated     = "task-updated"
)

// Events emitted by the server that are not domain changes.
const (
	EventConnected  = "connected"
	EventChatAddMsg = "chat-add-msg"
	EventPong       = "pong"
	EventError      = "error"
)

// Entities whose mutations are broadcast.
const (
	EntityBoard   = "board"
	EntityGroup   = "group"
	EntityTask    = "task"
	EntityComment = "comment"
)

// Change event types, named <entity>-added|-changed|-removed. Comment edits
// keep the comment-update name the web client listens for.
const (
	BoardAdded     = EntityBoard + "-added"
	BoardChanged   = EntityBoard + "-changed"
	BoardRemoved   = EntityBoard + "-removed"
	GroupAdded     = EntityGroup + "-added"
	GroupChanged   = EntityGroup + "-changed"
	GroupRemoved   = EntityGroup + "-removed"
	TaskAdded      = EntityTask + "-added"
	TaskChanged    = EntityTask + "-changed"
	TaskRemoved    = EntityTask + "-removed"
	CommentAdded   = EntityComment + "-added"
	CommentUpdated = EntityComment + "-update"
	CommentRemoved = EntityComment + "-removed"
)

// TopicRelays maps client-sent change notices to the event re-emitted to
// the sender's topic.
var TopicRelays = map[string]string{
	EventChatSendMsg:  EventChatAddMsg,
	EventBoardUpdated: BoardChanged,
	BoardAdded:        BoardAdded,
	BoardRemoved:      BoardRemoved,
	EventTaskUpdated:  TaskChanged,
}

const watchRoomPrefix = "watching:"

// WatchRoom returns the room joined by connections watching userID.
func WatchRoom(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ""
	}
	return watchRoomPrefix + userID
}
