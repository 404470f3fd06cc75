package domain

import "time"

type ReplyCreationData struct {
	Id           ReplyId
	Board        BoardName
	ThreadId     ThreadId
	Text         Text
	PasswordHash PasswordHash
	CreatedOn    time.Time
}

type Reply struct {
	Id        ReplyId
	Text      Text
	CreatedOn time.Time
}
