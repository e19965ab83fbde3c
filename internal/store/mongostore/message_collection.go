package mongostore

import (
	"context"
	"errors"

	"chat-messages/internal/domain/message"
	chat_errors "chat-messages/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MessageCollection struct {
	coll *mongo.Collection
}

func NewMessageCollection(coll *mongo.Collection) *MessageCollection {
	return &MessageCollection{coll: coll}
}

func (c *MessageCollection) InsertOne(ctx context.Context, m *message.ChatMessage) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if _, err := c.coll.InsertOne(ctx, m); err != nil {
		return translate(err)
	}
	return nil
}

func (c *MessageCollection) FindByID(ctx context.Context, id primitive.ObjectID) (message.ChatMessage, error) {
	var m message.ChatMessage
	if err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return message.ChatMessage{}, translate(err)
	}
	return m, nil
}

func (c *MessageCollection) UpdateByID(ctx context.Context, id primitive.ObjectID, u message.Update) (message.ChatMessage, error) {
	if u.IsEmpty() {
		return c.FindByID(ctx, id)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var m message.ChatMessage
	err := c.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, updatePipeline(u), opts).Decode(&m)
	if err != nil {
		return message.ChatMessage{}, translate(err)
	}
	return m, nil
}

func (c *MessageCollection) Find(ctx context.Context, q message.ListQuery) ([]message.ChatMessage, error) {
	filter := bson.M{"conversationId": q.ConversationID}
	if !q.Before.IsZero() {
		filter["_id"] = bson.M{"$lt": q.Before}
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err)
	}
	items := make([]message.ChatMessage, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (c *MessageCollection) DeleteMany(ctx context.Context) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}

func (c *MessageCollection) Ping(ctx context.Context) error {
	if err := c.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return chat_errors.Unavailable(err)
	}
	return nil
}

// EnsureIndexes creates the index used to page through a conversation.
func (c *MessageCollection) EnsureIndexes(ctx context.Context) error {
	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "conversationId", Value: 1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName("conversation_messages"),
	})
	return translate(err)
}

// updatePipeline renders u as an aggregation pipeline update so that likes
// and likesCount change in the same atomic document write.
func updatePipeline(u message.Update) mongo.Pipeline {
	set := bson.D{}
	if u.MarkDeleted {
		set = append(set, bson.E{Key: "deleted", Value: true})
	}
	if u.Resolved != nil {
		set = append(set, bson.E{Key: "resolved", Value: *u.Resolved})
	}
	if u.Tags != nil {
		set = append(set, bson.E{Key: "tags", Value: bson.M{"$literal": *u.Tags}})
	}

	likes := bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}
	likesTouched := false
	if u.AddLike != nil {
		likes = bson.M{"$cond": bson.A{
			bson.M{"$in": bson.A{*u.AddLike, likes}},
			likes,
			bson.M{"$concatArrays": bson.A{likes, bson.A{*u.AddLike}}},
		}}
		likesTouched = true
	}
	if u.RemoveLike != nil {
		likes = bson.M{"$filter": bson.M{
			"input": likes,
			"cond":  bson.M{"$ne": bson.A{"$$this", *u.RemoveLike}},
		}}
		likesTouched = true
	}
	if likesTouched {
		set = append(set, bson.E{Key: "likes", Value: likes})
	}

	pipeline := mongo.Pipeline{}
	if len(set) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$set", Value: set}})
	}
	if likesTouched {
		pipeline = append(pipeline, bson.D{{Key: "$set", Value: bson.D{
			{Key: "likesCount", Value: bson.M{"$size": "$likes"}},
		}}})
	}
	return pipeline
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return chat_errors.ErrNotFound
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, mongo.ErrClientDisconnected):
		return chat_errors.Unavailable(err)
	default:
		return err
	}
}
