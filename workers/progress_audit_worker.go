// workers/progress_audit_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"habit-quest-system/leveling"
	"habit-quest-system/models"

	"gorm.io/gorm"
)

// ProgressAuditWorker periodically verifies that every stored level still
// matches the level derived from TotalXP. TotalXP is the source of truth;
// the cached level only exists for cheap reads, so any disagreement is drift
// left behind by older writes and gets repaired in place.
type ProgressAuditWorker struct {
	db       *gorm.DB
	interval time.Duration
}

func NewProgressAuditWorker(db *gorm.DB, interval time.Duration) *ProgressAuditWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &ProgressAuditWorker{db: db, interval: interval}
}

func (w *ProgressAuditWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Progress Audit Worker (total_xp → level verification)…")
	go w.run(ctx)
}

func (w *ProgressAuditWorker) run(ctx context.Context) {
	// Initial pass on startup so restarts surface drift immediately.
	w.auditBatch()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.auditBatch()
		case <-ctx.Done():
			log.Println("⏹️ Progress Audit Worker stopped")
			return
		}
	}
}

func (w *ProgressAuditWorker) auditBatch() {
	const batchSize = 500

	var repaired, scanned int
	var rows []models.UserProgress
	err := w.db.FindInBatches(&rows, batchSize, func(tx *gorm.DB, _ int) error {
		for _, prog := range rows {
			scanned++
			want := leveling.LevelFromTotalXP(prog.TotalXP)
			if want == prog.Level {
				continue
			}
			log.Printf("⚠️ [AUDIT] level drift for %s: stored=%d computed=%d (xp=%d)",
				prog.ExternalUserID, prog.Level, want, prog.TotalXP)
			if err := w.db.Model(&models.UserProgress{}).
				Where("id = ?", prog.ID).
				Update("level", want).Error; err != nil {
				log.Printf("❌ [AUDIT] failed to repair %s: %v", prog.ExternalUserID, err)
				continue
			}
			repaired++
		}
		return nil
	}).Error
	if err != nil {
		log.Printf("❌ [AUDIT] scan failed: %v", err)
		return
	}
	if repaired > 0 {
		log.Printf("✅ [AUDIT] repaired %d/%d progress rows", repaired, scanned)
	}
}
