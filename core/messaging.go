package core

import "context"

// Messenger is any service that can answer an inbound chat message.
type Messenger interface {
	// Reply sends text as the single answer bound to replyToken.
	Reply(ctx context.Context, replyToken, text string) error
}
