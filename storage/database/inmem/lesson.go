package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/kadai/core/chart"
	"github.com/trezcool/kadai/core/lesson"
)

type lessonRepository struct {
	db *DB
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *DB) lesson.Repository {
	return &lessonRepository{db: db}
}

func (repo *lessonRepository) CreateLesson(ctx context.Context, lsn lesson.Lesson, slotID int) (lesson.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var slot *chart.Slot
	if slotID != 0 {
		var ok bool
		if slot, ok = repo.db.slots[slotID]; !ok {
			return lesson.Lesson{}, chart.ErrNotFound
		}
	}

	repo.db.lessonSeq++
	lsn.ID = repo.db.lessonSeq
	repo.db.lessons[lsn.ID] = &lsn

	if slot != nil {
		id := lsn.ID
		slot.LessonID = &id
	}
	return lsn, nil
}

func (repo *lessonRepository) GetLesson(ctx context.Context, id int) (lesson.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if lsn, ok := repo.db.lessons[id]; ok {
		return *lsn, nil
	}
	return lesson.Lesson{}, lesson.ErrNotFound
}

func (repo *lessonRepository) QueryLessons(ctx context.Context) ([]lesson.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	lessons := make([]lesson.Lesson, 0, len(repo.db.lessons))
	for _, lsn := range repo.db.lessons {
		lessons = append(lessons, *lsn)
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].ID < lessons[j].ID })
	return lessons, nil
}

func (repo *lessonRepository) UpdateLesson(ctx context.Context, lsn lesson.Lesson) (lesson.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.lessons[lsn.ID]
	if !ok {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	orig.Name = lsn.Name
	orig.Absences = lsn.Absences
	return *orig, nil
}

func (repo *lessonRepository) DecrementAbsences(ctx context.Context, id int) (lesson.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	lsn, ok := repo.db.lessons[id]
	if !ok {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	lsn.Absences--
	return *lsn, nil
}
