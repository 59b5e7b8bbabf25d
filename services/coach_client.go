// habit-quest-system/services/coach_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Static fallbacks used whenever the generation service is absent or fails.
// The progression engine never depends on this collaborator.
const (
	fallbackReflection = "Great work today! Every step forward is progress. Keep building those positive habits - you're on an amazing journey of growth!"
	fallbackWeeklyBoss = "**The Procrastination Shadow**\n\nThis week, a familiar foe emerges from the depths of delay. " +
		"Face it with small, immediate actions: break large tasks into tiny steps, set 5-minute timers, and celebrate each small victory."
)

type CoachClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

type generateResponse struct {
	Text string `json:"text"`
}

// NewCoachClient returns a client for the text-generation service. An empty
// baseURL is valid and means "always fall back".
func NewCoachClient(baseURL, token string) *CoachClient {
	return &CoachClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GenerateDailyReflection asks the coach for feedback on a journal entry.
// Never returns an error: generation is cosmetic, so failures degrade to the
// static fallback.
func (c *CoachClient) GenerateDailyReflection(journalEntry string, level int, completedHabits []string) string {
	prompt := map[string]interface{}{
		"kind":             "daily_reflection",
		"journal_entry":    journalEntry,
		"user_level":       level,
		"completed_habits": completedHabits,
	}
	return c.generate(prompt, fallbackReflection)
}

// GenerateWeeklyBoss asks the coach for an RPG-style boss write-up of the
// week's habit data.
func (c *CoachClient) GenerateWeeklyBoss(habitSummary string, level, missedDays int) string {
	prompt := map[string]interface{}{
		"kind":          "weekly_boss",
		"habit_summary": habitSummary,
		"user_level":    level,
		"missed_days":   missedDays,
	}
	return c.generate(prompt, fallbackWeeklyBoss)
}

func (c *CoachClient) generate(promptContext map[string]interface{}, fallback string) string {
	if c.BaseURL == "" {
		return fallback
	}

	jsonData, _ := json.Marshal(promptContext)
	url := fmt.Sprintf("%s/generate", c.BaseURL)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fallback
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		log.Printf("⚠️ [COACH] generation request failed: %v", err)
		return fallback
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Printf("⚠️ [COACH] /generate returned %d: %s", resp.StatusCode, string(body))
		return fallback
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil || out.Text == "" {
		return fallback
	}
	return out.Text
}
