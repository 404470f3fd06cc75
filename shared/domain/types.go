package domain

type (
	BoardName    = string
	ThreadId     = string
	ReplyId      = string
	Text         = string
	Password     = string
	PasswordHash = string
)

// DeletedText replaces the text of a deleted reply. The reply itself stays in the thread.
const DeletedText Text = "[deleted]"

// DeleteResult is the business outcome of a password-gated deletion.
// Store failures and unknown ids are reported as errors, never as a DeleteResult.
type DeleteResult int

const (
	Deleted DeleteResult = iota
	IncorrectPassword
)

func (r DeleteResult) String() string {
	switch r {
	case Deleted:
		return "success"
	case IncorrectPassword:
		return "incorrect password"
	default:
		return "unknown"
	}
}
