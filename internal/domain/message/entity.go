package message

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ConversationID primitive.ObjectID   `bson:"conversationId" json:"conversationId"`
	SenderID       primitive.ObjectID   `bson:"senderId" json:"senderId"`
	Text           string               `bson:"text" json:"text"`
	Created        time.Time            `bson:"created" json:"created"`
	Deleted        bool                 `bson:"deleted" json:"deleted"`
	Resolved       bool                 `bson:"resolved" json:"resolved"`
	Likes          []primitive.ObjectID `bson:"likes" json:"likes"`
	LikesCount     int                  `bson:"likesCount" json:"likesCount"`
	Reactions      []Reaction           `bson:"reactions" json:"reactions"`
	Tags           []Tag                `bson:"tags" json:"tags"`

	// Reference views, filled on read and never persisted.
	Conversation ConversationRef `bson:"-" json:"conversation"`
	Sender       UserRef         `bson:"-" json:"sender"`
}

// Reaction groups the users who reacted with the same emoji.
type Reaction struct {
	Reaction        string               `bson:"reaction" json:"reaction"`
	ReactionUnicode string               `bson:"reactionUnicode" json:"reactionUnicode"`
	UserIDs         []primitive.ObjectID `bson:"userIds" json:"userIds"`
}

type ConversationRef struct {
	ID string `json:"id"`
}

type UserRef struct {
	ID string `json:"id"`
}

// NewChatMessage builds a message with every collection default applied.
// The id is left zero so the backend assigns it.
func NewChatMessage(conversationID, senderID primitive.ObjectID, text string, created time.Time) ChatMessage {
	return ChatMessage{
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		Created:        created,
		Likes:          []primitive.ObjectID{},
		Reactions:      []Reaction{},
		Tags:           []Tag{},
	}
}

// Normalize replaces nil slices with empty ones so decoded documents
// compare equal to freshly created ones.
func (m *ChatMessage) Normalize() {
	if m.Likes == nil {
		m.Likes = []primitive.ObjectID{}
	}
	if m.Reactions == nil {
		m.Reactions = []Reaction{}
	}
	if m.Tags == nil {
		m.Tags = []Tag{}
	}
}

// Populate fills the reference views from the stored reference ids.
func (m *ChatMessage) Populate() {
	m.Normalize()
	m.Conversation = ConversationRef{ID: m.ConversationID.Hex()}
	m.Sender = UserRef{ID: m.SenderID.Hex()}
}

func (m ChatMessage) IsLikedBy(userID primitive.ObjectID) bool {
	for _, id := range m.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
