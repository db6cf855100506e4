package ingest

import (
	"context"
	"log/slog"
)

const chatSystemPrompt = "You are ChatGPT-4. You are a helpful assistant."

// Enricher generates a localized title and summary for each inserted
// record. Failures are per record: a chat error or an unusable reply
// skips that record without affecting its siblings.
type Enricher struct {
	chat ChatClient
}

func NewEnricher(chat ChatClient) *Enricher {
	return &Enricher{
		chat: chat,
	}
}

func (e *Enricher) Run(ctx context.Context, src Source, prefs UserPrefs, records []Record) []EnrichmentUpdate {
	updates := make([]EnrichmentUpdate, 0, len(records))

	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}

		prompt, temperature := src.BuildPrompt(rec, prefs)

		reply, err := e.chat.Chat(ctx, chatSystemPrompt, prompt, temperature)
		if err != nil {
			slog.Error("Failed to enrich record", "source", src.Name(), "native_id", rec.NativeID, "error", err)
			continue
		}

		title, summary := src.ParseReply(reply)
		if title == "" || summary == "" {
			slog.Warn("Enrichment reply unusable, skipping", "source", src.Name(), "native_id", rec.NativeID)
			continue
		}

		updates = append(updates, EnrichmentUpdate{
			NativeID: rec.NativeID,
			Title:    title,
			Summary:  summary,
		})
	}

	return updates
}
