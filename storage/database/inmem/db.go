package inmemdb

import (
	"sync"

	"github.com/trezcool/kadai/core/chart"
	"github.com/trezcool/kadai/core/homework"
	"github.com/trezcool/kadai/core/lesson"
)

type lessonHomework struct {
	id         int
	lessonID   int
	homeworkID int
}

// DB keeps every table behind one lock so multi table writes are atomic.
type DB struct {
	mutex sync.RWMutex

	lessons   map[int]*lesson.Lesson
	homeworks map[int]*homework.Homework
	links     map[int]*lessonHomework
	slots     map[int]*chart.Slot

	lessonSeq   int
	homeworkSeq int
	linkSeq     int
}

func Open() *DB {
	return &DB{
		lessons:   make(map[int]*lesson.Lesson),
		homeworks: make(map[int]*homework.Homework),
		links:     make(map[int]*lessonHomework),
		slots:     make(map[int]*chart.Slot),
	}
}

// LinkCount returns the number of lesson/homework association rows, orphans included.
func (db *DB) LinkCount() int {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return len(db.links)
}
