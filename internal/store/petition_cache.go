package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/grievease/petition-client-go/internal/model"
)

// PetitionCache keeps the last-seen petition snapshots so listings work
// offline and views seed instantly before the first sync event. The
// server record is always authoritative.
type PetitionCache interface {
	ReplaceAll(ctx context.Context, petitions []model.Petition) error
	Upsert(ctx context.Context, petition model.Petition) error
	All(ctx context.Context) ([]model.Petition, error)
	Get(ctx context.Context, id int64) (*model.Petition, error)
	// PruneStale drops snapshots not refreshed within olderThan and
	// returns how many were removed.
	PruneStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type petitionCache struct {
	db  *DB
	now func() time.Time
}

func NewPetitionCache(db *DB) PetitionCache {
	return &petitionCache{db: db, now: time.Now}
}

func (c *petitionCache) ReplaceAll(ctx context.Context, petitions []model.Petition) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM petition_cache`); err != nil {
		return err
	}
	now := c.now()
	for _, p := range petitions {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO petition_cache (petition_id, data, fetched_at) VALUES (?, ?, ?)
		`, p.PetitionID, string(data), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (c *petitionCache) Upsert(ctx context.Context, petition model.Petition) error {
	data, err := json.Marshal(petition)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO petition_cache (petition_id, data, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT (petition_id) DO UPDATE SET data = excluded.data, fetched_at = excluded.fetched_at
	`, petition.PetitionID, string(data), c.now())
	return err
}

func (c *petitionCache) PruneStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM petition_cache WHERE fetched_at < ?`, c.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *petitionCache) All(ctx context.Context) ([]model.Petition, error) {
	var rows []struct {
		Data string `db:"data"`
	}
	if err := c.db.SelectContext(ctx, &rows, `SELECT data FROM petition_cache ORDER BY petition_id`); err != nil {
		return nil, err
	}

	petitions := make([]model.Petition, 0, len(rows))
	for _, row := range rows {
		var p model.Petition
		if err := json.Unmarshal([]byte(row.Data), &p); err != nil {
			continue
		}
		petitions = append(petitions, p)
	}
	return petitions, nil
}

func (c *petitionCache) Get(ctx context.Context, id int64) (*model.Petition, error) {
	var data string
	err := c.db.GetContext(ctx, &data, `SELECT data FROM petition_cache WHERE petition_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p model.Petition
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, nil
	}
	return &p, nil
}
