package constants

const (
	APIServiceName      = "CommentAPI"
	ConsumerServiceName = "CommentConsumer"

	// IdentityKey is the JWT claim holding the caller's user id.
	IdentityKey = "identity"

	DefaultPage  = 1
	DefaultLimit = 15
	MaxLimit     = 100

	MaxCommentLength = 500 // runes

	CommentCollection = "comments"

	CreateCommentResource = "comment:create"
)
