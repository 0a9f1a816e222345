package msgsvc

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/kadai/core"
)

var replyEndpoint = "/v2/bot/message/reply"

type (
	lineTextMessage struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}

	lineReplyRequest struct {
		ReplyToken string            `json:"replyToken"`
		Messages   []lineTextMessage `json:"messages"`
	}
)

// LineService answers LINE messaging API events through the reply endpoint.
type LineService struct {
	host   string
	token  string
	client *rest.Client
}

var _ core.Messenger = (*LineService)(nil)

func NewLineService(conf *core.Config) *LineService {
	return &LineService{
		host:   conf.Line.APIBaseURL,
		token:  conf.Line.ChannelToken,
		client: &rest.Client{HTTPClient: &http.Client{}},
	}
}

func (svc *LineService) request(replyToken, text string) (rest.Request, error) {
	body, err := json.Marshal(lineReplyRequest{
		ReplyToken: replyToken,
		Messages:   []lineTextMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return rest.Request{}, errors.Wrap(err, "encoding reply")
	}
	return rest.Request{
		Method:  rest.Post,
		BaseURL: svc.host + replyEndpoint,
		Headers: map[string]string{
			"Authorization": "Bearer " + svc.token,
			"Content-Type":  "application/json",
		},
		Body: body,
	}, nil
}

// Reply sends text as the answer bound to replyToken.
// Every failure, including a non 2xx status, has core.ErrTransport as its cause.
func (svc *LineService) Reply(ctx context.Context, replyToken, text string) error {
	req, err := svc.request(replyToken, text)
	if err != nil {
		return err
	}

	res, err := svc.client.SendWithContext(ctx, req)
	if err != nil {
		return errors.Wrapf(core.ErrTransport, "sending reply: %v", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Wrapf(core.ErrTransport, "sending reply - status: %d - body: %s", res.StatusCode, res.Body)
	}
	return nil
}
