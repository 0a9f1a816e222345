package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/kadai/core/chart"
)

type chartRepository struct {
	db *DB
}

var _ chart.Repository = (*chartRepository)(nil) // interface compliance check

func NewChartRepository(db *DB) chart.Repository {
	return &chartRepository{db: db}
}

func copySlot(s *chart.Slot) chart.Slot {
	slot := *s
	if s.LessonID != nil {
		id := *s.LessonID
		slot.LessonID = &id
	}
	return slot
}

func (repo *chartRepository) GetSlot(ctx context.Context, id int) (chart.Slot, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if slot, ok := repo.db.slots[id]; ok {
		return copySlot(slot), nil
	}
	return chart.Slot{}, chart.ErrNotFound
}

func (repo *chartRepository) QuerySlots(ctx context.Context) ([]chart.Slot, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	slots := make([]chart.Slot, 0, len(repo.db.slots))
	for _, s := range repo.db.slots {
		slots = append(slots, copySlot(s))
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].ID < slots[j].ID })
	return slots, nil
}

func (repo *chartRepository) SeedSlots(ctx context.Context, slots []chart.Slot) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, s := range slots {
		if orig, ok := repo.db.slots[s.ID]; ok {
			orig.StartTime = s.StartTime
			orig.FinishTime = s.FinishTime
			orig.DayOfWeek = s.DayOfWeek
			continue
		}
		slot := s
		slot.LessonID = nil
		repo.db.slots[s.ID] = &slot
	}
	return nil
}
