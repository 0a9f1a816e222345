package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/kadai/core"
	"github.com/trezcool/kadai/core/homework"
	"github.com/trezcool/kadai/core/lesson"
)

type homeworkRepository struct {
	db *DB
}

var _ homework.Repository = (*homeworkRepository)(nil) // interface compliance check

func NewHomeworkRepository(db *DB) homework.Repository {
	return &homeworkRepository{db: db}
}

func (repo *homeworkRepository) lessonOf(hwID int) (int, bool) {
	for _, l := range repo.db.links {
		if l.homeworkID == hwID {
			return l.lessonID, true
		}
	}
	return 0, false
}

func (repo *homeworkRepository) CreateHomework(ctx context.Context, hw homework.Homework, lessonID int) (homework.Homework, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.lessons[lessonID]; !ok {
		return homework.Homework{}, lesson.ErrNotFound
	}

	repo.db.homeworkSeq++
	hw.ID = repo.db.homeworkSeq
	repo.db.homeworks[hw.ID] = &hw

	repo.db.linkSeq++
	repo.db.links[repo.db.linkSeq] = &lessonHomework{id: repo.db.linkSeq, lessonID: lessonID, homeworkID: hw.ID}
	return hw, nil
}

func (repo *homeworkRepository) GetHomework(ctx context.Context, id int) (homework.Homework, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if hw, ok := repo.db.homeworks[id]; ok {
		return *hw, nil
	}
	return homework.Homework{}, homework.ErrNotFound
}

func (repo *homeworkRepository) QueryHomeworks(ctx context.Context, filter homework.QueryFilter, ordering []core.DBOrdering) ([]homework.Homework, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	homeworks := make([]homework.Homework, 0, len(repo.db.homeworks))
	for _, hw := range repo.db.homeworks {
		if filter.Status != nil && hw.Status != *filter.Status {
			continue
		}
		if filter.LessonID != 0 {
			if lessonID, ok := repo.lessonOf(hw.ID); !ok || lessonID != filter.LessonID {
				continue
			}
		}
		homeworks = append(homeworks, *hw)
	}

	sort.SliceStable(homeworks, func(i, j int) bool { return homeworks[i].ID < homeworks[j].ID })
	for k := len(ordering) - 1; k >= 0; k-- {
		ord := ordering[k]
		sort.SliceStable(homeworks, func(i, j int) bool {
			a, b := homeworks[i], homeworks[j]
			if !ord.Ascending {
				a, b = b, a
			}
			switch ord.Field {
			case "limit_time":
				return a.Due.String() < b.Due.String()
			case "contest":
				return a.Description < b.Description
			default:
				return a.ID < b.ID
			}
		})
	}
	return homeworks, nil
}

func (repo *homeworkRepository) QueryHomeworkLessons(ctx context.Context) ([]homework.HomeworkLesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	links := make([]*lessonHomework, 0, len(repo.db.links))
	for _, l := range repo.db.links {
		links = append(links, l)
	}
	sort.Slice(links, func(i, j int) bool { return links[i].id < links[j].id })

	pairs := make([]homework.HomeworkLesson, 0, len(links))
	for _, l := range links {
		hw, ok := repo.db.homeworks[l.homeworkID]
		if !ok {
			continue
		}
		lsn, ok := repo.db.lessons[l.lessonID]
		if !ok {
			continue
		}
		pairs = append(pairs, homework.HomeworkLesson{Homework: *hw, Lesson: *lsn})
	}
	return pairs, nil
}

func (repo *homeworkRepository) UpdateHomework(ctx context.Context, hw homework.Homework) (homework.Homework, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save editable fields
	orig, ok := repo.db.homeworks[hw.ID]
	if !ok {
		return homework.Homework{}, homework.ErrNotFound
	}
	orig.Description = hw.Description
	orig.Due = hw.Due
	orig.OnceAWeek = hw.OnceAWeek
	return *orig, nil
}

func (repo *homeworkRepository) SetStatus(ctx context.Context, id int, to homework.Status) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	hw, ok := repo.db.homeworks[id]
	if !ok {
		return homework.ErrNotFound
	}
	hw.Status = to
	return nil
}

func (repo *homeworkRepository) SwapStatus(ctx context.Context, id int, from, to homework.Status) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	hw, ok := repo.db.homeworks[id]
	if !ok || hw.Status != from {
		return false, nil
	}
	hw.Status = to
	return true, nil
}

func (repo *homeworkRepository) DeleteHomework(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.homeworks[id]; !ok {
		return homework.ErrNotFound
	}
	delete(repo.db.homeworks, id)
	return nil
}
