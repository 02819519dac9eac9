package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SnapshotRepo stores snapshots in PostgreSQL, keeping the most recent few.
type SnapshotRepo struct {
	db   *DB
	keep int
}

func NewSnapshotRepo(db *DB, keep int) *SnapshotRepo {
	if keep < 1 {
		keep = 1
	}
	return &SnapshotRepo{db: db, keep: keep}
}

var snapshotColumns = []string{
	"snapshot_id", "slot", "serial", "type_id", "name", "faction",
	"x", "y", "z", "hp", "max_hp", "friendly", "pet", "hallucination", "died",
}

// Save writes snap and prunes older snapshots in one transaction.
func (r *SnapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	snap.normalize()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO creature_snapshots (turn, saved_at, creatures)
		 VALUES ($1, $2, $3) RETURNING id`,
		int64(snap.Turn), snap.SavedAt, len(snap.Creatures),
	).Scan(&id); err != nil {
		return fmt.Errorf("snapshot insert: %w", err)
	}

	rows := make([][]any, len(snap.Creatures))
	for i, c := range snap.Creatures {
		rows[i] = []any{
			id, c.Slot, c.Serial, c.Type, c.Name, c.Faction,
			c.X, c.Y, c.Z, c.HP, c.MaxHP, c.Friendly, c.Pet, c.Hallucination, c.Died,
		}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"snapshot_creatures"}, snapshotColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("snapshot copy creatures: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM creature_snapshots
		 WHERE id NOT IN (SELECT id FROM creature_snapshots ORDER BY id DESC LIMIT $1)`,
		r.keep,
	); err != nil {
		return fmt.Errorf("snapshot prune: %w", err)
	}

	return tx.Commit(ctx)
}

// Load returns the newest snapshot with its creatures in slot order.
func (r *SnapshotRepo) Load(ctx context.Context) (*Snapshot, error) {
	var (
		id   int64
		turn int64
		snap Snapshot
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, turn, saved_at FROM creature_snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&id, &turn, &snap.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot latest: %w", err)
	}
	snap.Turn = uint64(turn)

	rows, err := r.db.Pool.Query(ctx,
		`SELECT slot, serial, type_id, name, faction, x, y, z,
		        hp, max_hp, friendly, pet, hallucination, died
		 FROM snapshot_creatures
		 WHERE snapshot_id = $1
		 ORDER BY slot`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot creatures: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c CreatureRecord
		if err := rows.Scan(
			&c.Slot, &c.Serial, &c.Type, &c.Name, &c.Faction, &c.X, &c.Y, &c.Z,
			&c.HP, &c.MaxHP, &c.Friendly, &c.Pet, &c.Hallucination, &c.Died,
		); err != nil {
			return nil, fmt.Errorf("snapshot scan: %w", err)
		}
		snap.Creatures = append(snap.Creatures, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot rows: %w", err)
	}
	return &snap, nil
}

// Count returns how many snapshots are stored.
func (r *SnapshotRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM creature_snapshots`).Scan(&n)
	return n, err
}
