package corpus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/poiesic/simcheck/core"
)

// SnapshotVersion is the current snapshot format version. Bump it when
// the snapshot structure changes incompatibly.
const SnapshotVersion = 1

// Snapshot is the portable serialized form of the corpus: format
// version, the embedding model that produced the vectors, and every
// entry with its vector as a plain numeric list.
type Snapshot struct {
	Version int             `json:"version"`
	Model   string          `json:"model"`
	Entries []SnapshotEntry `json:"entries"`
}

// SnapshotEntry is one corpus entry in snapshot form.
type SnapshotEntry struct {
	SourceID  string    `json:"source_id"`
	SegmentID int       `json:"segment_id"`
	Text      string    `json:"text"`
	Vector    []float32 `json:"vector"`
}

// Marshal encodes the snapshot as JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot decodes a snapshot from JSON bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}
	return &snap, nil
}

// Snapshot captures the current corpus state. The returned structure
// shares no memory with the store.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]SnapshotEntry, len(s.entries))
	for i := range s.entries {
		vector := make([]float32, len(s.entries[i].Vector))
		copy(vector, s.entries[i].Vector)
		entries[i] = SnapshotEntry{
			SourceID:  s.entries[i].SourceID,
			SegmentID: s.entries[i].SegmentID,
			Text:      s.entries[i].Text,
			Vector:    vector,
		}
	}

	return &Snapshot{
		Version: SnapshotVersion,
		Model:   s.model,
		Entries: entries,
	}
}

// Restore replaces the corpus wholesale with the snapshot contents.
// Entries whose vectors are missing are re-embedded from their text;
// if the snapshot was produced by a different model, every entry is
// re-embedded so queries stay comparable with the live embedder. A
// structurally invalid snapshot fails before any in-memory state is
// touched: Restore either fully replaces the corpus or leaves it as it
// was.
func (s *Store) Restore(ctx context.Context, snap *Snapshot) (int, error) {
	if snap == nil {
		return 0, ErrMalformedSnapshot
	}
	if snap.Version < 1 || snap.Version > SnapshotVersion {
		return 0, fmt.Errorf("%w: version %d", ErrUnsupportedSnapshot, snap.Version)
	}

	reembedAll := snap.Model != "" && snap.Model != s.model
	if reembedAll {
		s.logger.Warn("snapshot produced by different embedding model, re-embedding all entries",
			"snapshot_model", snap.Model, "model", s.model)
	}

	entries := make([]core.CorpusEntry, 0, len(snap.Entries))
	for i := range snap.Entries {
		se := &snap.Entries[i]
		entry := core.CorpusEntry{
			SourceID:  se.SourceID,
			SegmentID: se.SegmentID,
			Text:      se.Text,
		}
		if err := core.ValidateCorpusEntry(&entry); err != nil {
			return 0, fmt.Errorf("%w: entry %d: %w", ErrMalformedSnapshot, i, err)
		}

		if !reembedAll && len(se.Vector) > 0 {
			entry.Vector = make([]float32, len(se.Vector))
			copy(entry.Vector, se.Vector)
		} else {
			vector, err := s.embedder.GetOrCompute(ctx, se.Text)
			if err != nil {
				return 0, fmt.Errorf("re-embedding snapshot entry %d: %w", i, err)
			}
			entry.Vector = vector
		}
		entries = append(entries, entry)
	}

	s.mu.Lock()
	if s.repo != nil {
		// One atomic swap: a failure here leaves both the persisted and
		// the in-memory corpus as they were.
		if err := s.repo.ReplaceEntries(ctx, s.model, entries...); err != nil {
			s.mu.Unlock()
			return 0, err
		}
		s.modelSynced = true
	}
	s.entries = entries
	s.seen = make(map[core.ID]struct{}, len(entries))
	for _, entry := range entries {
		s.seen[core.IDFromEntry(entry.SourceID, entry.SegmentID, entry.Text)] = struct{}{}
	}
	s.mu.Unlock()

	s.logger.Info("corpus restored from snapshot", "entries", len(entries), "reembedded", reembedAll)
	return len(entries), nil
}
