package domain

import (
	"time"
)

// to iterate thru layers: service -> storage
type ThreadCreationData struct {
	Id           ThreadId
	Board        BoardName
	Text         Text
	PasswordHash PasswordHash
	CreatedOn    time.Time
}

// Thread is the public view of a thread. Password hashes and report flags
// are never loaded into it.
type Thread struct {
	Id         ThreadId
	Board      BoardName
	Text       Text
	CreatedOn  time.Time
	BumpedOn   time.Time
	ReplyCount int
	Replies    []Reply
}
