package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoachClient_UsesGeneratedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"You crushed it today."}`))
	}))
	defer srv.Close()

	coach := NewCoachClient(srv.URL, "secret")
	got := coach.GenerateDailyReflection("journaled a bit", 3, []string{"Read"})
	assert.Equal(t, "You crushed it today.", got)
}

func TestCoachClient_FallsBackWhenUnconfigured(t *testing.T) {
	coach := NewCoachClient("", "")
	assert.Equal(t, fallbackReflection, coach.GenerateDailyReflection("x", 1, nil))
	assert.Equal(t, fallbackWeeklyBoss, coach.GenerateWeeklyBoss("y", 1, 2))
}

func TestCoachClient_FallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	coach := NewCoachClient(srv.URL, "secret")
	assert.Equal(t, fallbackReflection, coach.GenerateDailyReflection("x", 1, nil))
}

func TestCoachClient_FallsBackOnEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":""}`))
	}))
	defer srv.Close()

	coach := NewCoachClient(srv.URL, "secret")
	assert.Equal(t, fallbackReflection, coach.GenerateDailyReflection("x", 1, nil))
}
