// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"habit-quest-system/models"
	"habit-quest-system/streak"

	"github.com/go-co-op/gocron/v2"
)

// StartStreakScheduler refreshes the denormalized CurrentStreak snapshot on
// every active habit once an hour. Streaks decay without any user event (a
// missed day zeroes them at the second midnight), so the snapshots go stale
// on their own and need a clock-driven recompute.
func (s *GormStore) StartStreakScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			var habits []models.Habit
			if err := s.DB.Where("is_active = ?", true).Find(&habits).Error; err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			now := time.Now()
			refreshed := 0
			for _, h := range habits {
				var completions []models.Completion
				if err := s.DB.Where("habit_id = ?", h.ID).Find(&completions).Error; err != nil {
					log.Printf("[Scheduler] Failed to load completions for habit %s: %v", h.ID, err)
					continue
				}
				days := make(map[string]struct{}, len(completions))
				for _, c := range completions {
					days[c.Date] = struct{}{}
				}
				current := streak.Compute(days, now)
				if current == h.CurrentStreak {
					continue
				}
				if err := s.SetHabitStreak(context.Background(), h.ID, current); err != nil {
					log.Printf("[Scheduler] Failed to refresh streak for habit %s: %v", h.ID, err)
					continue
				}
				refreshed++
			}
			if refreshed > 0 {
				log.Printf("✅ Refreshed %d streak snapshots", refreshed)
			}
		}),
	)
}
