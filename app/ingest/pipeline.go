package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Pipeline runs one ingestion pass for a (user, source) pair: fetch
// through the actor, filter, insert in one commit, then enrich and
// commit the updates. The caller owns sequencing across sources and
// the user's last-scraped bookkeeping.
type Pipeline struct {
	actor        ActorClient
	records      RecordStore
	refs         RefStore
	filterer     *Filterer
	enricher     *Enricher
	lookbackDays int
	now          func() time.Time
}

// NewPipeline wires the pipeline collaborators. A nil chat client
// disables the enrichment phase entirely.
func NewPipeline(actor ActorClient, chat ChatClient, records RecordStore, refs RefStore, lookbackDays int) *Pipeline {
	p := &Pipeline{
		actor:        actor,
		records:      records,
		refs:         refs,
		filterer:     NewFilterer(records),
		lookbackDays: lookbackDays,
		now:          time.Now,
	}
	if chat != nil {
		p.enricher = NewEnricher(chat)
	}
	return p
}

func (p *Pipeline) Run(ctx context.Context, prefs UserPrefs, src Source) (Outcome, error) {
	outcome := Outcome{
		Source: src.Name(),
		Stage:  StageIdle,
	}

	refs, err := p.refs.GetProfileRefs(prefs.ID, src.Name())
	if err != nil {
		outcome.Stage = StageAborted
		return outcome, fmt.Errorf("failed to load profile references: %w", err)
	}

	valid := make([]string, 0, len(refs))
	for _, ref := range refs {
		if NormalizeHandle(ref) != "" {
			valid = append(valid, ref)
		}
	}
	if len(valid) == 0 {
		slog.Debug("No valid profile references, skipping", "user", prefs.Name, "source", src.Name())
		outcome.Stage = StageAborted
		return outcome, nil
	}

	window := NewWindow(p.now(), p.lookbackDays)

	outcome.Stage = StageFetching
	datasetID, err := p.actor.RunActorSync(ctx, src.ActorID(), src.BuildRunInput(valid, window))
	if err != nil {
		outcome.Stage = StageAborted
		return outcome, fmt.Errorf("failed to run actor: %w", err)
	}

	items, err := p.actor.DatasetItems(ctx, datasetID)
	if err != nil {
		outcome.Stage = StageAborted
		return outcome, fmt.Errorf("failed to read dataset: %w", err)
	}
	outcome.Fetched = len(items)

	outcome.Stage = StageFiltering
	accepted, discards, err := p.filterer.FilterItems(prefs.ID, src, window, items)
	if err != nil {
		outcome.Stage = StageAborted
		return outcome, fmt.Errorf("failed to filter items: %w", err)
	}
	outcome.Accepted = len(accepted)
	outcome.Discards = discards

	if len(accepted) == 0 {
		slog.Info("No new items in window",
			"user", prefs.Name,
			"source", src.Name(),
			"start", window.StartDate(),
			"until", window.UntilDate(),
			"fetched", outcome.Fetched,
			"demo", discards.Demo,
			"wrong_type", discards.WrongType,
			"missing", discards.Missing,
			"out_of_window", discards.OutOfWindow,
			"duplicate", discards.Duplicate)
		outcome.Stage = StageDone
		return outcome, nil
	}

	records := make([]Record, 0, len(accepted))
	for _, a := range accepted {
		records = append(records, src.MapRecord(a.Item, prefs.ID, a.PostedAt))
	}

	outcome.Stage = StageInserting
	inserted, err := p.records.InsertRecords(records)
	if err != nil {
		outcome.Stage = StageAborted
		return outcome, fmt.Errorf("failed to insert records: %w", err)
	}
	outcome.Inserted = inserted
	slog.Info("Inserted records", "user", prefs.Name, "source", src.Name(), "count", inserted)

	if p.enricher == nil {
		slog.Info("Enrichment not configured, skipping", "user", prefs.Name, "source", src.Name())
		outcome.Stage = StageDone
		return outcome, nil
	}

	outcome.Stage = StageEnriching
	updates := p.enricher.Run(ctx, src, prefs, records)
	if len(updates) > 0 {
		enriched, err := p.records.UpdateEnrichments(prefs.ID, src.Name(), updates)
		if err != nil {
			outcome.Stage = StageAborted
			return outcome, fmt.Errorf("failed to commit enrichment updates: %w", err)
		}
		outcome.Enriched = enriched
	}
	slog.Info("Enriched records", "user", prefs.Name, "source", src.Name(), "enriched", outcome.Enriched, "inserted", outcome.Inserted)

	outcome.Stage = StageDone
	return outcome, nil
}
