package msgsvc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kadai/core"
	"github.com/trezcool/kadai/tests"
)

const webhookBodyJSON = `{
	"destination": "U0",
	"events": [
		{"type": "message", "replyToken": "r1", "timestamp": 1721612700000,
		 "source": {"type": "user", "userId": "U1"}, "message": {"type": "text", "id": "1", "text": "出席"}},
		{"type": "message", "replyToken": "r2", "timestamp": 1721612700000,
		 "source": {"type": "user", "userId": "U1"}, "message": {"type": "sticker", "id": "2"}},
		{"type": "follow", "replyToken": "r3", "timestamp": 1721612700000,
		 "source": {"type": "user", "userId": "U2"}}
	]
}`

func TestValidateSignature(t *testing.T) {
	body := []byte(webhookBodyJSON)
	sig := Sign("secret", body)

	assert.NoError(t, ValidateSignature("secret", body, sig))
	assert.Equal(t, ErrInvalidSignature, ValidateSignature("other", body, sig))
	assert.Equal(t, ErrInvalidSignature, ValidateSignature("secret", append(body, ' '), sig))
	assert.Equal(t, ErrInvalidSignature, ValidateSignature("secret", body, ""))
	assert.Equal(t, ErrInvalidSignature, ValidateSignature("secret", body, "not base64!"))
}

func TestParseTextEvents(t *testing.T) {
	events, err := ParseTextEvents([]byte(webhookBodyJSON))
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "U1", events[0].Sender)
	assert.Equal(t, "出席", events[0].Text)
	assert.Equal(t, "r1", events[0].ReplyToken)
	assert.True(t, events[0].SentAt.Equal(time.Date(2024, 7, 22, 1, 45, 0, 0, time.UTC)))

	_, err = ParseTextEvents([]byte("{"))
	assert.Error(t, err)
}

func TestLineService_Reply(t *testing.T) {
	var got lineReplyRequest
	var auth string
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, replyEndpoint, r.URL.Path)
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(status)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	conf := &core.Config{Line: core.LineConfig{APIBaseURL: srv.URL, ChannelToken: "tok"}}
	svc := NewLineService(conf)

	require.NoError(t, svc.Reply(context.Background(), "r1", "ok"))
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "r1", got.ReplyToken)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, lineTextMessage{Type: "text", Text: "ok"}, got.Messages[0])

	status = http.StatusBadRequest
	err := svc.Reply(context.Background(), "r1", "ok")
	require.Error(t, err)
	assert.Equal(t, core.ErrTransport, errors.Cause(err))
}

func TestLineService_Reply_unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	svc := NewLineService(&core.Config{Line: core.LineConfig{APIBaseURL: srv.URL}})
	err := svc.Reply(context.Background(), "r1", "ok")
	require.Error(t, err)
	assert.Equal(t, core.ErrTransport, errors.Cause(err))
}

func TestConsoleService(t *testing.T) {
	svc := NewConsoleServiceMock(&testutil.Logger{}, 1)

	err := svc.Reply(context.Background(), "r1", "first")
	assert.Equal(t, core.ErrTransport, errors.Cause(err))
	require.NoError(t, svc.Reply(context.Background(), "r1", "second"))

	assert.Equal(t, []SentReply{{ReplyToken: "r1", Text: "second"}}, svc.Sent())
}
