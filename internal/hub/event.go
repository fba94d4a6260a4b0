package hub

// EventType is the closed set of notifications the hub relays. Producers can
// only emit one of these, so a mistyped event name fails to compile instead of
// silently reaching no listener.
type EventType string

const (
	// Global events, fanned out to every connected client.
	EventNewPost      EventType = "new-post"
	EventNewThread    EventType = "new-thread"
	EventThreadUpvote EventType = "thread-upvote"

	// Room = post id.
	EventReceiveComment EventType = "receive-comment"
	EventDeleteComment  EventType = "delete-comment"

	// Room = thread id.
	EventReceiveReply       EventType = "receive-reply"
	EventDeleteReply        EventType = "delete-reply"
	EventUpdateReplyUpvotes EventType = "update-reply-upvotes"
)

// RoomGlobal is the reserved room key meaning "every connected client".
const RoomGlobal = "global"

// Event is the envelope delivered verbatim to clients. The hub never
// interprets Payload.
type Event struct {
	Type    EventType `json:"type"`
	Room    string    `json:"room"`
	Payload any       `json:"payload"`
}
