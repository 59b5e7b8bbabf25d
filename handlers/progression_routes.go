// handlers/progression_routes.go
package handlers

import (
	"fmt"
	"strings"
	"time"

	"habit-quest-system/middleware"
	"habit-quest-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(app *fiber.App, progression *services.ProgressionService, coach *services.CoachClient) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/user/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		snapshot, err := progression.Progress(c.Context(), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(snapshot)
	})

	securedGroup.Get("/user/achievements", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		defs, err := progression.UnlockedAchievements(c.Context(), userID)
		if err != nil {
			return respondError(c, err)
		}

		type unlockedAchievement struct {
			Code        string `json:"code"`
			Name        string `json:"name"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
			Rarity      string `json:"rarity"`
		}
		res := make([]unlockedAchievement, len(defs))
		for i, def := range defs {
			res[i] = unlockedAchievement{
				Code:        def.Code,
				Name:        def.Name,
				Description: def.Description,
				Icon:        def.Icon,
				Rarity:      def.Rarity,
			}
		}
		return c.JSON(res)
	})

	securedGroup.Get("/user/xp-events", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		events, err := progression.RecentXPEvents(c.Context(), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(events)
	})

	// Coach text is cosmetic; the endpoint always answers 200 with either
	// generated text or the static fallback.
	securedGroup.Post("/user/reflection", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			JournalEntry string `json:"journal_entry"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		snapshot, err := progression.Progress(c.Context(), userID)
		if err != nil {
			return respondError(c, err)
		}
		ledger, err := progression.Ledger(c.Context(), userID)
		if err != nil {
			return respondError(c, err)
		}
		var completed []string
		for _, h := range ledger.ActiveHabits() {
			if h.CurrentStreak > 0 {
				completed = append(completed, h.Name)
			}
		}

		text := coach.GenerateDailyReflection(req.JournalEntry, snapshot.Level, completed)
		return c.JSON(fiber.Map{"reflection": text})
	})

	securedGroup.Post("/user/weekly-boss", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		snapshot, err := progression.Progress(c.Context(), userID)
		if err != nil {
			return respondError(c, err)
		}
		ledger, err := progression.Ledger(c.Context(), userID)
		if err != nil {
			return respondError(c, err)
		}

		var summary []string
		missedDays := 0
		for _, h := range ledger.ActiveHabits() {
			stats, err := ledger.Stats(h.ID, time.Now())
			if err != nil {
				continue
			}
			summary = append(summary, fmt.Sprintf("%s (streak %d, rate %d%%)", h.Name, stats.CurrentStreak, stats.CompletionRate))
			if stats.CurrentStreak == 0 {
				missedDays++
			}
		}

		text := coach.GenerateWeeklyBoss(strings.Join(summary, "; "), snapshot.Level, missedDays)
		return c.JSON(fiber.Map{"boss": text})
	})
}
