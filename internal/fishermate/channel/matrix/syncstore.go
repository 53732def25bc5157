package matrix

import (
	"context"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"
)

var _ mautrix.SyncStore = (*syncStore)(nil)

// StateStore persists small per-account values across restarts.
type StateStore interface {
	SaveSyncState(ctx context.Context, userID, key, value string) error
	LoadSyncState(ctx context.Context, userID, key string) (string, error)
}

// syncStore keeps the sync filter and next_batch token in a StateStore so
// a restarted bot does not answer old messages again.
type syncStore struct {
	state StateStore
}

func (s *syncStore) SaveFilterID(ctx context.Context, userID id.UserID, filterID string) error {
	return s.state.SaveSyncState(ctx, userID.String(), "filter_id", filterID)
}

func (s *syncStore) LoadFilterID(ctx context.Context, userID id.UserID) (string, error) {
	return s.state.LoadSyncState(ctx, userID.String(), "filter_id")
}

func (s *syncStore) SaveNextBatch(ctx context.Context, userID id.UserID, nextBatchToken string) error {
	return s.state.SaveSyncState(ctx, userID.String(), "next_batch", nextBatchToken)
}

func (s *syncStore) LoadNextBatch(ctx context.Context, userID id.UserID) (string, error) {
	return s.state.LoadSyncState(ctx, userID.String(), "next_batch")
}
