package msgsvc

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

const SignatureHeader = "X-Line-Signature"

var ErrInvalidSignature = errors.New("invalid webhook signature")

type (
	webhookBody struct {
		Destination string         `json:"destination"`
		Events      []webhookEvent `json:"events"`
	}

	webhookEvent struct {
		Type       string `json:"type"`
		ReplyToken string `json:"replyToken"`
		Timestamp  int64  `json:"timestamp"` // milliseconds
		Source     struct {
			Type   string `json:"type"`
			UserID string `json:"userId"`
		} `json:"source"`
		Message struct {
			Type string `json:"type"`
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"message"`
	}
)

// TextEvent is an inbound text message.
type TextEvent struct {
	Sender     string
	Text       string
	ReplyToken string
	SentAt     time.Time
}

// ValidateSignature checks the base64 HMAC-SHA256 of body against signature.
func ValidateSignature(channelSecret string, body []byte, signature string) error {
	decoded, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || signature == "" {
		return ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, []byte(channelSecret))
	_, _ = mac.Write(body)
	if !hmac.Equal(decoded, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign returns the signature of body, as sent in SignatureHeader.
func Sign(channelSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	_, _ = mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ParseTextEvents decodes a webhook body and keeps the text message events only.
func ParseTextEvents(body []byte) ([]TextEvent, error) {
	var wb webhookBody
	if err := json.Unmarshal(body, &wb); err != nil {
		return nil, errors.Wrap(err, "decoding webhook body")
	}

	events := make([]TextEvent, 0, len(wb.Events))
	for _, e := range wb.Events {
		if e.Type != "message" || e.Message.Type != "text" {
			continue
		}
		events = append(events, TextEvent{
			Sender:     e.Source.UserID,
			Text:       e.Message.Text,
			ReplyToken: e.ReplyToken,
			SentAt:     time.UnixMilli(e.Timestamp),
		})
	}
	return events, nil
}
