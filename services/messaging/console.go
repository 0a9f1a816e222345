package msgsvc

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/kadai/core"
)

// SentReply is a reply handed to a console service.
type SentReply struct {
	ReplyToken string
	Text       string
}

type ConsoleService struct {
	logger core.Logger

	mu       sync.Mutex
	sent     []SentReply
	failures int // number of upcoming replies to fail, for tests
}

var _ core.Messenger = (*ConsoleService)(nil)

// NewConsoleService logs replies instead of sending them.
func NewConsoleService(logger core.Logger) *ConsoleService {
	return &ConsoleService{logger: logger}
}

// NewConsoleServiceMock fails the first `failures` replies with core.ErrTransport.
func NewConsoleServiceMock(logger core.Logger, failures int) *ConsoleService {
	return &ConsoleService{logger: logger, failures: failures}
}

func (svc *ConsoleService) Reply(ctx context.Context, replyToken, text string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.failures > 0 {
		svc.failures--
		return errors.Wrap(core.ErrTransport, "console failure")
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(core.ErrTransport, err.Error())
	}
	svc.sent = append(svc.sent, SentReply{ReplyToken: replyToken, Text: text})
	svc.logger.Info("reply", map[string]interface{}{"reply_token": replyToken, "text": text})
	return nil
}

// Sent returns the replies delivered so far.
func (svc *ConsoleService) Sent() []SentReply {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]SentReply(nil), svc.sent...)
}
