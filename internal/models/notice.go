package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NoticeType string

const (
	NoticeAlert   NoticeType = "alert"
	NoticeMessage NoticeType = "message"
)

// Notice is a notification addressed to a team. A user has read it once
// their id is present in IsRead.
type Notice struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Team      []primitive.ObjectID `bson:"team" json:"team"`
	Text      string               `bson:"text" json:"text"`
	Task      *primitive.ObjectID  `bson:"task" json:"task"`
	NotiType  NoticeType           `bson:"notiType" json:"notiType"`
	IsRead    []primitive.ObjectID `bson:"isRead" json:"isRead"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (n *Notice) ReadBy(userID primitive.ObjectID) bool {
	for _, id := range n.IsRead {
		if id == userID {
			return true
		}
	}
	return false
}

// NoticeView is a notice with the referenced task title resolved.
type NoticeView struct {
	ID        primitive.ObjectID   `json:"_id"`
	Team      []primitive.ObjectID `json:"team"`
	Text      string               `json:"text"`
	Task      *TaskRef             `json:"task"`
	NotiType  NoticeType           `json:"notiType"`
	IsRead    []primitive.ObjectID `json:"isRead"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}
