package message

import (
	"errors"
	"strings"

	chat_errors "chat-messages/pkg/errors"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// tagtype accepts only the TagType values the store understands.
	_ = v.RegisterValidation("tagtype", func(fl validator.FieldLevel) bool {
		return TagType(fl.Field().String()).Valid()
	})
	return v
}

// CreateMessageInput is what a sender supplies for a new message.
type CreateMessageInput struct {
	ConversationID primitive.ObjectID `json:"conversationId" validate:"required"`
	Text           string             `json:"text" validate:"required"`
}

func (in CreateMessageInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return translate(err)
	}
	if strings.TrimSpace(in.Text) == "" {
		return chat_errors.Invalid("text must not be blank")
	}
	return nil
}

type tagSet struct {
	Tags []Tag `validate:"dive"`
}

// ValidateTags checks every tag has an id and a known type.
func ValidateTags(tags []Tag) error {
	if err := validate.Struct(tagSet{Tags: tags}); err != nil {
		return translate(err)
	}
	return nil
}

// ParseID decodes a hex object id, reporting malformed input as invalid.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, chat_errors.Invalid("malformed id %q", hex)
	}
	return id, nil
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return chat_errors.Invalid("%s", err.Error())
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Namespace()+" failed "+fe.Tag())
	}
	return chat_errors.Invalid("%s", strings.Join(parts, "; "))
}
