package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/syriashof/shof/internal/models"
	"github.com/syriashof/shof/pkg/logger"
)

const discordTimeout = 10 * time.Second

// Category presentation for the Discord embed.
var categoryNames = map[string]string{
	"playback":    "مشكلة في التشغيل",
	"subtitle":    "مشكلة في الترجمة",
	"audio":       "مشكلة في الصوت",
	"broken_link": "رابط لا يعمل",
	"content":     "مشكلة في المحتوى",
	"suggestion":  "اقتراح",
	"other":       "أخرى",
}

var categoryEmoji = map[string]string{
	"playback":    "🎬",
	"subtitle":    "💬",
	"audio":       "🔊",
	"broken_link": "🔗",
	"content":     "📋",
	"suggestion":  "💡",
	"other":       "❓",
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Color       int                 `json:"color"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Timestamp   string              `json:"timestamp"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// DiscordNotifier pushes new problem reports into a Discord channel via
// an incoming webhook. Delivery is best effort.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
	log        *zap.Logger
}

// NewDiscordNotifier builds a notifier. An empty URL yields a disabled
// notifier whose Notify calls are no-ops.
func NewDiscordNotifier(webhookURL string) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: strings.TrimSpace(webhookURL),
		client:     &http.Client{Timeout: discordTimeout},
		log:        logger.WithModule("webhook"),
	}
}

// Enabled reports whether a webhook URL is configured.
func (n *DiscordNotifier) Enabled() bool {
	return n != nil && n.webhookURL != ""
}

// NotifyAsync posts the report in the background.
func (n *DiscordNotifier) NotifyAsync(report *models.Report, movieTitle string) {
	if !n.Enabled() || report == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), discordTimeout)
		defer cancel()
		if err := n.Notify(ctx, report, movieTitle); err != nil {
			n.log.Warn("discord notification failed",
				zap.String("report_id", report.ID),
				zap.Error(err),
			)
		}
	}()
}

// Notify posts the report synchronously.
func (n *DiscordNotifier) Notify(ctx context.Context, report *models.Report, movieTitle string) error {
	if !n.Enabled() {
		return nil
	}
	if report == nil {
		return errors.New("discord: report is required")
	}

	name, ok := categoryNames[report.Category]
	if !ok {
		name = report.Category
	}
	emoji, ok := categoryEmoji[report.Category]
	if !ok {
		emoji = "❓"
	}

	fields := []discordEmbedField{
		{Name: "التصنيف", Value: name, Inline: true},
	}
	if movieTitle != "" {
		fields = append(fields, discordEmbedField{Name: "الفيلم", Value: movieTitle, Inline: true})
	}
	if report.ContactInfo != "" {
		fields = append(fields, discordEmbedField{Name: "للتواصل", Value: report.ContactInfo, Inline: true})
	}

	payload := discordPayload{
		Embeds: []discordEmbed{{
			Title:       fmt.Sprintf("%s بلاغ جديد", emoji),
			Description: report.Description,
			Color:       0xE74C3C,
			Fields:      fields,
			Timestamp:   report.CreatedAt.UTC().Format(time.RFC3339),
		}},
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("discord: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("discord: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("discord: post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord: webhook returned %d", resp.StatusCode)
	}
	return nil
}
