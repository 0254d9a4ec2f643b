package sync

import (
	"encoding/json"

	"github.com/grievease/petition-client-go/internal/model"
)

// Mode selects how an inbound snapshot is folded into the local view.
type Mode int

const (
	// ModeList mirrors the whole collection: pushed snapshots replace it.
	ModeList Mode = iota
	// ModeDetail mirrors a single record: pushed entries are merged into
	// the matching id only, everything else is ignored.
	ModeDetail
)

// Action tells the caller what, if anything, to do after applying a
// message.
type Action int

const (
	ActionNone Action = iota
	// ActionRefetch means the server signalled a change without inlining
	// the payload; the caller should re-fetch the authoritative state.
	ActionRefetch
)

// envelope is the framed message shape. Petitions stays nil when the
// array is absent, which is distinct from an empty array.
type envelope struct {
	Type      string             `json:"type"`
	Petitions *[]json.RawMessage `json:"petitions"`
}

// Apply folds one inbound push message into the current view and
// returns the next view. It is a pure function of its inputs: no
// transport, no clock, no ordering state. Consistency is last message
// wins; messages carry no sequence numbers.
//
// Three shapes are accepted: a bare petition array, an update envelope
// carrying a petitions array, and an update envelope with no array
// (which requests an authoritative re-fetch). Anything else is an
// error and leaves the view untouched.
func Apply(view []model.Petition, raw []byte, mode Mode) ([]model.Petition, Action, error) {
	// Bare array first; it is also valid envelope-shaped JSON only in
	// the other direction, so probe it directly.
	var bare []json.RawMessage
	if err := json.Unmarshal(raw, &bare); err == nil {
		next, err := fold(view, bare, mode)
		return next, ActionNone, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return view, ActionNone, err
	}
	if env.Petitions == nil {
		return view, ActionRefetch, nil
	}
	next, err := fold(view, *env.Petitions, mode)
	return next, ActionNone, err
}

func fold(view []model.Petition, entries []json.RawMessage, mode Mode) ([]model.Petition, error) {
	if mode == ModeDetail {
		return mergeByID(view, entries)
	}
	return replaceAll(entries)
}

func replaceAll(entries []json.RawMessage) ([]model.Petition, error) {
	next := make([]model.Petition, 0, len(entries))
	for _, entry := range entries {
		var p model.Petition
		if err := json.Unmarshal(entry, &p); err != nil {
			return nil, err
		}
		next = append(next, p)
	}
	return next, nil
}

// mergeByID overlays pushed entries onto the matching records in the
// view. Unmarshalling the partial payload into a copy of the existing
// struct overwrites exactly the fields present in the payload and
// preserves the rest. Ids not already in the view are ignored.
func mergeByID(view []model.Petition, entries []json.RawMessage) ([]model.Petition, error) {
	next := make([]model.Petition, len(view))
	copy(next, view)

	for _, entry := range entries {
		var key struct {
			PetitionID int64 `json:"petition_id"`
		}
		if err := json.Unmarshal(entry, &key); err != nil {
			return view, err
		}
		for i := range next {
			if next[i].PetitionID != key.PetitionID {
				continue
			}
			merged := next[i]
			if err := json.Unmarshal(entry, &merged); err != nil {
				return view, err
			}
			next[i] = merged
			break
		}
	}
	return next, nil
}
