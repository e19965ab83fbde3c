package message

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Update is a partial field set applied to a single message.
// There is no way to clear the deleted flag.
type Update struct {
	MarkDeleted bool
	Resolved    *bool
	Tags        *[]Tag
	AddLike     *primitive.ObjectID
	RemoveLike  *primitive.ObjectID
}

func MarkDeleted() Update {
	return Update{MarkDeleted: true}
}

func SetResolved(resolved bool) Update {
	return Update{Resolved: &resolved}
}

func ReplaceTags(tags []Tag) Update {
	if tags == nil {
		tags = []Tag{}
	}
	return Update{Tags: &tags}
}

func AddLike(userID primitive.ObjectID) Update {
	return Update{AddLike: &userID}
}

func RemoveLike(userID primitive.ObjectID) Update {
	return Update{RemoveLike: &userID}
}

func (u Update) IsEmpty() bool {
	return !u.MarkDeleted && u.Resolved == nil && u.Tags == nil && u.AddLike == nil && u.RemoveLike == nil
}

// Apply mutates m in place. Backends without server-side update
// operators use it inside their own atomic section.
func (u Update) Apply(m *ChatMessage) {
	if u.MarkDeleted {
		m.Deleted = true
	}
	if u.Resolved != nil {
		m.Resolved = *u.Resolved
	}
	if u.Tags != nil {
		m.Tags = append([]Tag{}, (*u.Tags)...)
	}
	if u.AddLike != nil && !m.IsLikedBy(*u.AddLike) {
		m.Likes = append(m.Likes, *u.AddLike)
	}
	if u.RemoveLike != nil {
		kept := make([]primitive.ObjectID, 0, len(m.Likes))
		for _, id := range m.Likes {
			if id != *u.RemoveLike {
				kept = append(kept, id)
			}
		}
		m.Likes = kept
	}
	m.LikesCount = len(m.Likes)
}

// ListQuery selects a page of one conversation's messages, newest first.
// A non-zero Before returns only messages with a smaller id.
type ListQuery struct {
	ConversationID primitive.ObjectID
	Before         primitive.ObjectID
	Limit          int
}
