package message

type TagType string

const (
	TagTypeSubTopic TagType = "subTopic"
)

// Tag links a message to another entity, such as a sub topic.
type Tag struct {
	ID   string  `bson:"id" json:"id" validate:"required"`
	Type TagType `bson:"type" json:"type" validate:"required,tagtype"`
}

func (t TagType) Valid() bool {
	switch t {
	case TagTypeSubTopic:
		return true
	}
	return false
}
