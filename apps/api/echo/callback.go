package echoapi

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/kadai/core"
	"github.com/trezcool/kadai/core/attendance"
	"github.com/trezcool/kadai/services/messaging"
)

const (
	callbackPath = "/callback"

	// chat platforms post a handful of events per request
	callbackBodyLimit = "1M"
)

var errInvalidWebhook = echo.NewHTTPError(http.StatusBadRequest, "invalid webhook")

type callbackApi struct {
	svc           *attendance.Service
	logger        core.Logger
	channelSecret string
	allowUnsigned bool

	nowFunc func() time.Time // mockable
}

// registerCallbackAPI mounts the webhook. Unsigned requests are only accepted without a
// channel secret when allowUnsigned is set (debug mode).
func registerCallbackAPI(e *echo.Echo, svc *attendance.Service, logger core.Logger, channelSecret string, allowUnsigned bool) {
	api := callbackApi{
		svc:           svc,
		logger:        logger,
		channelSecret: channelSecret,
		allowUnsigned: allowUnsigned,
		nowFunc:       time.Now,
	}
	e.POST(callbackPath, api.callback, middleware.BodyLimit(callbackBodyLimit))
}

// callback receives chat webhook events. Every signed, well formed request is acknowledged
// with 200: attendance failures are answered to the sender and logged, not returned to the platform.
func (api *callbackApi) callback(ctx echo.Context) error {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading webhook body")
	}
	switch {
	case api.channelSecret != "":
		if err = msgsvc.ValidateSignature(api.channelSecret, body, ctx.Request().Header.Get(msgsvc.SignatureHeader)); err != nil {
			return errInvalidWebhook
		}
	case !api.allowUnsigned:
		api.logger.Warn("webhook rejected: no channel secret configured")
		return errInvalidWebhook
	}

	events, err := msgsvc.ParseTextEvents(body)
	if err != nil {
		return errInvalidWebhook
	}

	requestID := ctx.Response().Header().Get(echo.HeaderXRequestID)
	for _, ev := range events {
		at := ev.SentAt
		if at.IsZero() || at.Unix() <= 0 {
			at = api.nowFunc()
		}
		res, err := api.svc.Handle(ctx.Request().Context(), attendance.Message{
			Sender:     ev.Sender,
			Text:       ev.Text,
			ReplyToken: ev.ReplyToken,
			ReceivedAt: at,
		})
		if err != nil {
			api.logger.Error("handling attendance message", err, map[string]interface{}{
				"request_id": requestID,
				"sender":     ev.Sender,
			})
			continue
		}
		api.logger.Info("attendance checked", map[string]interface{}{
			"request_id": requestID,
			"sender":     ev.Sender,
			"outcome":    res.Outcome.String(),
			"time_id":    res.SlotID,
		})
	}
	return ctx.JSON(http.StatusOK, echo.Map{})
}
