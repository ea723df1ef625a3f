package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/syriashof/shof/internal/models"
)

func TestDiscordNotifyPostsEmbed(t *testing.T) {
	var received discordPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	notifier := NewDiscordNotifier(server.URL)
	require.True(t, notifier.Enabled())

	report := &models.Report{
		ID:          "report-1",
		Category:    "broken_link",
		Description: "الرابط لا يعمل",
		ContactInfo: "@viewer",
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, notifier.Notify(context.Background(), report, "فيلم الصيف"))

	require.Len(t, received.Embeds, 1)
	embed := received.Embeds[0]
	require.Contains(t, embed.Title, "بلاغ جديد")
	require.Equal(t, "الرابط لا يعمل", embed.Description)
	require.Equal(t, 0xE74C3C, embed.Color)
	require.Len(t, embed.Fields, 3)
	require.Equal(t, "رابط لا يعمل", embed.Fields[0].Value)
	require.Equal(t, "فيلم الصيف", embed.Fields[1].Value)
	require.Equal(t, "@viewer", embed.Fields[2].Value)
	require.Equal(t, "2025-06-01T12:00:00Z", embed.Timestamp)
}

func TestDiscordNotifySkipsEmptyFields(t *testing.T) {
	var received discordPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	notifier := NewDiscordNotifier(server.URL)
	report := &models.Report{Category: "suggestion", Description: "اقتراح"}

	require.NoError(t, notifier.Notify(context.Background(), report, ""))
	require.Len(t, received.Embeds[0].Fields, 1)
}

func TestDiscordNotifyReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	notifier := NewDiscordNotifier(server.URL)
	report := &models.Report{Category: "other", Description: "بلاغ"}

	err := notifier.Notify(context.Background(), report, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "500")
}

func TestDiscordNotifierDisabled(t *testing.T) {
	notifier := NewDiscordNotifier("  ")
	require.False(t, notifier.Enabled())

	// No URL means no request and no error.
	require.NoError(t, notifier.Notify(context.Background(), &models.Report{}, ""))
	notifier.NotifyAsync(&models.Report{}, "")
}
