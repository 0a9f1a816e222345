package testutil

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/kadai/core"
	"github.com/trezcool/kadai/core/chart"
	"github.com/trezcool/kadai/core/homework"
	"github.com/trezcool/kadai/core/lesson"
	"github.com/trezcool/kadai/storage/database"
)

// PrepareDB opens, migrates and empties the test database.
// Tests are skipped when ENV is not TEST or the database cannot be reached.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if os.Getenv("ENV") != "TEST" {
		t.Skip("ENV=TEST required for database tests")
	}

	conf := core.NewConfig()
	if err := database.CreateIfNotExist(conf); err != nil {
		t.Skipf("database unavailable: %v", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	ResetDB(t, db)
	return db
}

func ResetDB(t *testing.T, db *sqlx.DB) {
	t.Helper()
	if _, err := db.Exec(`TRUNCATE chart, lesson_homework, homework, lesson RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("ResetDB() failed: %v", err)
	}
}

func SeedChart(t *testing.T, repo chart.Repository) {
	t.Helper()
	if err := repo.SeedSlots(context.Background(), chart.DefaultSlots(chart.DefaultTimetable)); err != nil {
		t.Fatalf("SeedChart() failed: %v", err)
	}
}

func CreateLesson(t *testing.T, repo lesson.Repository, name string, absences int, slotID ...int) lesson.Lesson {
	t.Helper()
	var slot int
	if len(slotID) > 0 {
		slot = slotID[0]
	}
	lsn, err := repo.CreateLesson(context.Background(), lesson.Lesson{Name: name, Absences: absences}, slot)
	if err != nil {
		t.Fatalf("CreateLesson() failed: %v", err)
	}
	return lsn
}

func CreateHomework(
	t *testing.T,
	repo homework.Repository,
	lessonID int,
	description, due string,
	status homework.Status,
) homework.Homework {
	t.Helper()
	hw := homework.Homework{
		Description: description,
		Due:         homework.DueFromString(due),
		Status:      status,
	}
	hw, err := repo.CreateHomework(context.Background(), hw, lessonID)
	if err != nil {
		t.Fatalf("CreateHomework() failed: %v", err)
	}
	return hw
}

// Logger discards everything but keeps the messages, for assertions.
type Logger struct {
	mu       sync.Mutex
	messages []string
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *Logger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log(msg) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log(msg) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log(msg) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log(msg) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log(msg) }
