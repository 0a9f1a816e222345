package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/kadai/core"
	"github.com/trezcool/kadai/core/chart"
	"github.com/trezcool/kadai/core/lesson"
)

const (
	DefaultPresentKeyword = "出席"

	ReplyOutOfHours = "現在は授業時間外です。"
	ReplyNoLesson   = "この時間に登録された授業はありません。"
	ReplyFallback   = "出欠の処理中にエラーが発生しました。"

	replyPresentFmt = "「%s」の出席を確認しました。"
	replyAbsentFmt  = "「%s」の欠席を記録しました。残り%d回です。"

	// texts closer than this to the keyword are most likely typos; they still count as absences.
	nearMissRatio = .5
)

type Outcome int

const (
	OutcomeOutOfHours Outcome = iota
	OutcomeNoLesson
	OutcomePresent
	OutcomeAbsent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOutOfHours:
		return "out_of_hours"
	case OutcomeNoLesson:
		return "no_lesson"
	case OutcomePresent:
		return "present"
	case OutcomeAbsent:
		return "absent"
	}
	return "unknown"
}

// Result is the decision taken for one message.
type Result struct {
	Outcome Outcome
	SlotID  int
	Lesson  lesson.Lesson
	Reply   string
}

// Message is an inbound chat message.
type Message struct {
	Sender     string
	Text       string
	ReplyToken string
	ReceivedAt time.Time
}

type (
	Options struct {
		Slots          chart.Repository
		Lessons        *lesson.Service
		Messenger      core.Messenger
		Logger         core.Logger
		Timetable      chart.Timetable
		Location       *time.Location
		PresentKeyword string
		ReplyTimeout   time.Duration
	}

	Service struct {
		opts Options
	}
)

func NewService(opts Options) *Service {
	if opts.Timetable == nil {
		opts.Timetable = chart.DefaultTimetable
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.PresentKeyword == "" {
		opts.PresentKeyword = DefaultPresentKeyword
	}
	return &Service{opts: opts}
}

// Check records attendance for the lesson in session at `at`.
// Only the exact present keyword counts as present; any other text is an absence.
func (svc *Service) Check(ctx context.Context, at time.Time, text string) (Result, error) {
	at = at.In(svc.opts.Location)

	slotID, ok := svc.opts.Timetable.SlotAt(at)
	if !ok {
		return Result{Outcome: OutcomeOutOfHours, Reply: ReplyOutOfHours}, nil
	}

	slot, err := svc.opts.Slots.GetSlot(ctx, slotID)
	if err != nil {
		if errors.Cause(err) == chart.ErrNotFound {
			svc.opts.Logger.Warn("chart slot not seeded", map[string]interface{}{"time_id": slotID})
			return Result{Outcome: OutcomeNoLesson, SlotID: slotID, Reply: ReplyNoLesson}, nil
		}
		return Result{}, errors.Wrapf(err, "getting slot %d", slotID)
	}
	if !slot.HasLesson() {
		svc.opts.Logger.Info("no lesson in session", map[string]interface{}{"time_id": slotID})
		return Result{Outcome: OutcomeNoLesson, SlotID: slotID, Reply: ReplyNoLesson}, nil
	}

	if text == svc.opts.PresentKeyword {
		lsn, err := svc.opts.Lessons.Get(ctx, *slot.LessonID)
		if err != nil {
			return Result{}, errors.Wrapf(err, "getting lesson %d", *slot.LessonID)
		}
		return Result{
			Outcome: OutcomePresent,
			SlotID:  slotID,
			Lesson:  lsn,
			Reply:   fmt.Sprintf(replyPresentFmt, lsn.Name),
		}, nil
	}

	if svc.nearMiss(text) {
		svc.opts.Logger.Warn("text close to the present keyword recorded as absence", map[string]interface{}{
			"time_id": slotID,
			"text":    text,
		})
	}
	lsn, err := svc.opts.Lessons.RecordAbsence(ctx, *slot.LessonID)
	if err != nil {
		return Result{}, errors.Wrapf(err, "recording absence for lesson %d", *slot.LessonID)
	}
	return Result{
		Outcome: OutcomeAbsent,
		SlotID:  slotID,
		Lesson:  lsn,
		Reply:   fmt.Sprintf(replyAbsentFmt, lsn.Name, lsn.Absences),
	}, nil
}

// Handle checks msg and relays the reply.
// A failed relay is retried once with the fallback reply; failures past that are logged only.
func (svc *Service) Handle(ctx context.Context, msg Message) (Result, error) {
	res, err := svc.Check(ctx, msg.ReceivedAt, msg.Text)
	reply := res.Reply
	if err != nil {
		reply = ReplyFallback
	}
	if msg.ReplyToken != "" {
		svc.relay(ctx, msg, reply)
	}
	return res, err
}

func (svc *Service) relay(ctx context.Context, msg Message, reply string) {
	if err := svc.reply(ctx, msg.ReplyToken, reply); err != nil {
		svc.opts.Logger.Error("relaying reply", err, map[string]interface{}{"sender": msg.Sender})
		if reply == ReplyFallback {
			return
		}
		if err = svc.reply(ctx, msg.ReplyToken, ReplyFallback); err != nil {
			svc.opts.Logger.Error("relaying fallback reply", err, map[string]interface{}{"sender": msg.Sender})
		}
	}
}

func (svc *Service) reply(ctx context.Context, token, text string) error {
	if svc.opts.ReplyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, svc.opts.ReplyTimeout)
		defer cancel()
	}
	return svc.opts.Messenger.Reply(ctx, token, text)
}

func (svc *Service) nearMiss(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if text == svc.opts.PresentKeyword {
		return true
	}
	m := difflib.NewMatcher(strings.Split(text, ""), strings.Split(svc.opts.PresentKeyword, ""))
	return m.QuickRatio() > nearMissRatio
}
