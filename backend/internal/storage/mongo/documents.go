package mongo

import (
	"time"

	"github.com/itchan-dev/anonboard/shared/domain"
	"go.mongodb.org/mongo-driver/bson"
)

// threadDocument is the stored layout, hashes and report flags included.
type threadDocument struct {
	Id             string          `bson:"_id"`
	Text           string          `bson:"text"`
	DeletePassword string          `bson:"delete_password"`
	CreatedOn      time.Time       `bson:"created_on"`
	BumpedOn       time.Time       `bson:"bumped_on"`
	Reported       bool            `bson:"reported"`
	Replies        []replyDocument `bson:"replies"`
}

type replyDocument struct {
	Id             string    `bson:"_id"`
	Text           string    `bson:"text"`
	DeletePassword string    `bson:"delete_password"`
	CreatedOn      time.Time `bson:"created_on"`
	Reported       bool      `bson:"reported"`
}

// threadView is what reads decode into. It has no field for hashes or report flags,
// and publicProjection keeps them from leaving the server in the first place.
type threadView struct {
	Id        string      `bson:"_id"`
	Text      string      `bson:"text"`
	CreatedOn time.Time   `bson:"created_on"`
	BumpedOn  time.Time   `bson:"bumped_on"`
	Replies   []replyView `bson:"replies"`
}

type replyView struct {
	Id        string    `bson:"_id"`
	Text      string    `bson:"text"`
	CreatedOn time.Time `bson:"created_on"`
}

var publicProjection = bson.D{
	{Key: "delete_password", Value: 0},
	{Key: "reported", Value: 0},
	{Key: "replies.delete_password", Value: 0},
	{Key: "replies.reported", Value: 0},
}

func (v threadView) toDomain(board domain.BoardName) domain.Thread {
	replies := make([]domain.Reply, 0, len(v.Replies))
	for _, r := range v.Replies {
		replies = append(replies, domain.Reply{Id: r.Id, Text: r.Text, CreatedOn: r.CreatedOn.UTC()})
	}
	return domain.Thread{
		Id:        v.Id,
		Board:     board,
		Text:      v.Text,
		CreatedOn: v.CreatedOn.UTC(),
		BumpedOn:  v.BumpedOn.UTC(),
		Replies:   replies,
	}
}
