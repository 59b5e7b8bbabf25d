// handlers/habit_routes.go
package handlers

import (
	"errors"
	"path/filepath"
	"time"

	"habit-quest-system/leveling"
	"habit-quest-system/middleware"
	"habit-quest-system/models"
	"habit-quest-system/services"
	"habit-quest-system/streak"
	"habit-quest-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupHabitRoutes(app *fiber.App, progression *services.ProgressionService, store services.Store) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/habits", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		ledger, err := progression.Ledger(c.Context(), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(ledger.ActiveHabits())
	})

	securedGroup.Post("/habits", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var draft models.HabitDraft
		if err := c.BodyParser(&draft); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		ledger, err := progression.Ledger(c.Context(), userID)
		if err != nil {
			return respondError(c, err)
		}
		habit, err := ledger.CreateHabit(c.Context(), draft)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(habit)
	})

	securedGroup.Patch("/habits/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		habitID := c.Params("id")

		var patch models.HabitPatch
		if err := c.BodyParser(&patch); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		ledger, err := progression.Ledger(c.Context(), userID)
		if err != nil {
			return respondError(c, err)
		}
		if err := ledger.UpdateHabit(c.Context(), habitID, patch); err != nil {
			return respondError(c, err)
		}
		habit, err := ledger.Habit(habitID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(habit)
	})

	// Icon upload is optional: it only works when R2 is configured.
	securedGroup.Post("/habits/:id/icon", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		habitID := c.Params("id")

		if !utils.R2Enabled() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "icon storage is not configured"})
		}

		ledger, err := progression.Ledger(c.Context(), userID)
		if err != nil {
			return respondError(c, err)
		}
		if _, err := ledger.Habit(habitID); err != nil {
			return respondError(c, err)
		}

		iconFile, err := c.FormFile("icon")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "icon file is required"})
		}

		iconExt := filepath.Ext(iconFile.Filename)
		if iconExt == "" {
			iconExt = ".png"
		}
		iconKey := "icons/" + uuid.NewString() + iconExt
		iconURL, err := utils.UploadIconToR2(iconFile, iconKey)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		if err := store.SetHabitIcon(c.Context(), habitID, iconURL); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"icon_url": iconURL})
	})

	securedGroup.Post("/habits/:id/complete", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		habitID := c.Params("id")

		// The client may pass its local calendar day; midnight is a local
		// concept and the server's clock is only a fallback.
		var body struct {
			Date string `json:"date"`
		}
		_ = c.BodyParser(&body)

		asOf := time.Now()
		if body.Date != "" {
			parsed, err := streak.ParseDay(body.Date)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success":    false,
					"error":      "date must be YYYY-MM-DD",
					"error_kind": "Validation",
				})
			}
			asOf = parsed
		}

		result, err := progression.CompleteHabit(c.Context(), userID, habitID, asOf)
		if err != nil {
			return respondCompletionError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":          true,
			"xp_gained":        result.XPGained,
			"total_xp":         result.TotalXP,
			"new_level":        result.NewLevel,
			"leveled_up":       result.LeveledUp,
			"current_level_xp": result.CurrentLevelXP,
			"xp_to_next_level": result.XPToNextLevel,
			"new_streak":       result.NewStreak,
			"new_achievements": result.NewAchievements,
		})
	})

	securedGroup.Get("/habits/:id/stats", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		habitID := c.Params("id")

		ledger, err := progression.Ledger(c.Context(), userID)
		if err != nil {
			return respondError(c, err)
		}
		habit, err := ledger.Habit(habitID)
		if err != nil {
			return respondError(c, err)
		}
		stats, err := ledger.Stats(habitID, time.Now())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"habit_id":          habitID,
			"name":              habit.Name,
			"category":          utils.DisplayCategory(habit.Category),
			"current_streak":    stats.CurrentStreak,
			"completion_rate":   stats.CompletionRate,
			"total_completions": stats.TotalCompletions,
			"streak_bonus":      leveling.StreakBonus(stats.CurrentStreak, habit.XPValue),
		})
	})
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	var persistenceErr *services.PersistenceError
	switch {
	case errors.Is(err, services.ErrHabitNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error(), "error_kind": "NotFound"})
	case errors.Is(err, services.ErrAlreadyCompleted):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error(), "error_kind": "AlreadyCompleted"})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "error_kind": "Validation"})
	case errors.As(err, &persistenceErr):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "persistence failure, try again", "error_kind": "Persistence"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

// respondCompletionError is respondError shaped to the completion contract:
// already-completed is a benign "already done" state, not an error banner.
func respondCompletionError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrAlreadyCompleted) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success":           false,
			"already_completed": true,
			"error_kind":        "AlreadyCompleted",
		})
	}
	var persistenceErr *services.PersistenceError
	switch {
	case errors.Is(err, services.ErrHabitNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false, "error": err.Error(), "error_kind": "NotFound",
		})
	case errors.As(err, &persistenceErr):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false, "error": "persistence failure, try again", "error_kind": "Persistence",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": err.Error(),
		})
	}
}
