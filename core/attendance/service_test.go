package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kadai/core"
	"github.com/trezcool/kadai/core/attendance"
	"github.com/trezcool/kadai/core/chart"
	"github.com/trezcool/kadai/core/lesson"
	"github.com/trezcool/kadai/services/messaging"
	"github.com/trezcool/kadai/storage/database/inmem"
	"github.com/trezcool/kadai/tests"
)

var (
	tokyo, _ = time.LoadLocation("Asia/Tokyo")

	// 2024-07-22 is a Monday
	monday9  = time.Date(2024, 7, 22, 9, 0, 0, 0, tokyo)
	tuesday9 = monday9.AddDate(0, 0, 1)
)

type fixture struct {
	svc       *attendance.Service
	lessons   lesson.Repository
	slots     chart.Repository
	messenger core.Messenger
	logger    *testutil.Logger
	lesson    lesson.Lesson
}

func setup(t *testing.T, messenger core.Messenger) fixture {
	t.Helper()
	db := inmemdb.Open()
	f := fixture{
		lessons: inmemdb.NewLessonRepository(db),
		slots:   inmemdb.NewChartRepository(db),
		logger:  &testutil.Logger{},
	}
	if messenger == nil {
		messenger = msgsvc.NewConsoleService(f.logger)
	}
	f.messenger = messenger
	testutil.SeedChart(t, f.slots)
	f.lesson = testutil.CreateLesson(t, f.lessons, "Math", 5, chart.SlotID(0, 1))

	f.svc = attendance.NewService(attendance.Options{
		Slots:        f.slots,
		Lessons:      lesson.NewService(f.lessons),
		Messenger:    messenger,
		Logger:       f.logger,
		Location:     tokyo,
		ReplyTimeout: 50 * time.Millisecond,
	})
	return f
}

func (f fixture) absences(t *testing.T) int {
	t.Helper()
	lsn, err := f.lessons.GetLesson(context.Background(), f.lesson.ID)
	require.NoError(t, err)
	return lsn.Absences
}

func TestService_Check(t *testing.T) {
	tests := []struct {
		name         string
		at           time.Time
		text         string
		wantOutcome  attendance.Outcome
		wantSlot     int
		wantReply    string
		wantAbsences int
	}{
		{name: "present", at: monday9, text: "出席", wantOutcome: attendance.OutcomePresent, wantSlot: 1, wantReply: "「Math」の出席を確認しました。", wantAbsences: 5},
		{name: "absent", at: monday9, text: "欠席", wantOutcome: attendance.OutcomeAbsent, wantSlot: 1, wantReply: "「Math」の欠席を記録しました。残り4回です。", wantAbsences: 4},
		{name: "any other text", at: monday9, text: "hello", wantOutcome: attendance.OutcomeAbsent, wantSlot: 1, wantReply: "「Math」の欠席を記録しました。残り4回です。", wantAbsences: 4},
		{name: "keyword with spaces", at: monday9, text: " 出席 ", wantOutcome: attendance.OutcomeAbsent, wantSlot: 1, wantAbsences: 4},
		{name: "out of hours", at: monday9.Add(9 * time.Hour), text: "欠席", wantOutcome: attendance.OutcomeOutOfHours, wantReply: attendance.ReplyOutOfHours, wantAbsences: 5},
		{name: "break", at: monday9.Add(time.Hour), text: "欠席", wantOutcome: attendance.OutcomeOutOfHours, wantAbsences: 5},
		{name: "weekend", at: monday9.AddDate(0, 0, 5), text: "欠席", wantOutcome: attendance.OutcomeOutOfHours, wantAbsences: 5},
		{name: "no lesson", at: tuesday9, text: "欠席", wantOutcome: attendance.OutcomeNoLesson, wantSlot: 10, wantReply: attendance.ReplyNoLesson, wantAbsences: 5},
		{name: "utc clock", at: monday9.UTC(), text: "欠席", wantOutcome: attendance.OutcomeAbsent, wantSlot: 1, wantAbsences: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, nil)

			res, err := f.svc.Check(context.Background(), tt.at, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.Equal(t, tt.wantSlot, res.SlotID)
			if tt.wantReply != "" {
				assert.Equal(t, tt.wantReply, res.Reply)
			}
			assert.NotEmpty(t, res.Reply)
			assert.Equal(t, tt.wantAbsences, f.absences(t))
		})
	}
}

func TestService_Check_unseededSlot(t *testing.T) {
	db := inmemdb.Open()
	logger := &testutil.Logger{}
	svc := attendance.NewService(attendance.Options{
		Slots:     inmemdb.NewChartRepository(db),
		Lessons:   lesson.NewService(inmemdb.NewLessonRepository(db)),
		Messenger: msgsvc.NewConsoleService(logger),
		Logger:    logger,
		Location:  tokyo,
	})

	res, err := svc.Check(context.Background(), monday9, "出席")
	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomeNoLesson, res.Outcome)
	assert.Contains(t, logger.Messages(), "chart slot not seeded")
}

func TestService_Check_nearMiss(t *testing.T) {
	f := setup(t, nil)

	res, err := f.svc.Check(context.Background(), monday9, "出席。")
	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomeAbsent, res.Outcome, "only the exact keyword is present")
	assert.Contains(t, f.logger.Messages(), "text close to the present keyword recorded as absence")

	f = setup(t, nil)
	_, err = f.svc.Check(context.Background(), monday9, "欠席")
	require.NoError(t, err)
	assert.NotContains(t, f.logger.Messages(), "text close to the present keyword recorded as absence")
}

func TestService_Check_repeated(t *testing.T) {
	f := setup(t, nil)
	for want := 4; want >= -1; want-- {
		res, err := f.svc.Check(context.Background(), monday9, "欠席")
		require.NoError(t, err)
		assert.Equal(t, want, res.Lesson.Absences)
	}
	assert.Equal(t, -1, f.absences(t))
}

func TestService_Handle(t *testing.T) {
	msg := attendance.Message{Sender: "U1", Text: "出席", ReplyToken: "r1", ReceivedAt: monday9}

	t.Run("reply", func(t *testing.T) {
		messenger := msgsvc.NewConsoleService(&testutil.Logger{})
		f := setup(t, messenger)

		res, err := f.svc.Handle(context.Background(), msg)
		require.NoError(t, err)
		assert.Equal(t, []msgsvc.SentReply{{ReplyToken: "r1", Text: res.Reply}}, messenger.Sent())
	})

	t.Run("fallback after a failed reply", func(t *testing.T) {
		messenger := msgsvc.NewConsoleServiceMock(&testutil.Logger{}, 1)
		f := setup(t, messenger)

		_, err := f.svc.Handle(context.Background(), msg)
		require.NoError(t, err)
		assert.Equal(t, []msgsvc.SentReply{{ReplyToken: "r1", Text: attendance.ReplyFallback}}, messenger.Sent())
		assert.Contains(t, f.logger.Messages(), "relaying reply")
	})

	t.Run("failed fallback is only logged", func(t *testing.T) {
		messenger := msgsvc.NewConsoleServiceMock(&testutil.Logger{}, 2)
		f := setup(t, messenger)

		res, err := f.svc.Handle(context.Background(), msg)
		require.NoError(t, err)
		assert.Equal(t, attendance.OutcomePresent, res.Outcome)
		assert.Empty(t, messenger.Sent())
		assert.Contains(t, f.logger.Messages(), "relaying fallback reply")
	})

	t.Run("slow transport is cut off", func(t *testing.T) {
		messenger := &blockingMessenger{}
		f := setup(t, messenger)

		start := time.Now()
		_, err := f.svc.Handle(context.Background(), msg)
		require.NoError(t, err)
		assert.Less(t, time.Since(start), time.Second)
		assert.Equal(t, 2, messenger.calls, "one reply and one fallback")
	})

	t.Run("no reply token", func(t *testing.T) {
		messenger := msgsvc.NewConsoleService(&testutil.Logger{})
		f := setup(t, messenger)

		noToken := msg
		noToken.ReplyToken = ""
		_, err := f.svc.Handle(context.Background(), noToken)
		require.NoError(t, err)
		assert.Empty(t, messenger.Sent())
	})
}

// blockingMessenger never answers before its context is done.
type blockingMessenger struct {
	calls int
}

func (m *blockingMessenger) Reply(ctx context.Context, replyToken, text string) error {
	m.calls++
	<-ctx.Done()
	return errors.Wrap(core.ErrTransport, ctx.Err().Error())
}
