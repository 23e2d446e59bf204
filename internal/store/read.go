package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when no run exists for a token.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is the runs-table row without its species and reactions.
type RunSummary struct {
	Token            string
	ModelName        string
	ModelHash        string
	Fingerprint      string
	Iterations       int
	Converged        bool
	Truncated        bool
	TruncationReason string
	DroppedOversize  int
	EngineVersion    string
	IRVersion        string
	CreatedAt        string
}

// SpeciesRow is one stored species in admission order.
type SpeciesRow struct {
	Index       int
	Seq         int64
	Certificate string
	Quantity    float64
	Constant    bool
	Compartment string
	Seed        bool
}

// ReactionRow is one stored reaction in admission order.
type ReactionRow struct {
	Index        int
	Seq          int64
	Rule         string
	Reactants    []int
	Products     []int
	Rate         float64
	RateExpr     string
	Multiplicity int
}

// RunRecord is a complete stored run.
type RunRecord struct {
	RunSummary
	Species   []SpeciesRow
	Reactions []ReactionRow
}

// ListRuns returns all run summaries, newest token first (UUIDv7 tokens
// sort chronologically, so token order is creation order).
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, model_name, model_hash, fingerprint, iterations,
		       converged, truncated, truncation_reason, dropped_oversize,
		       engine_version, ir_version, created_at
		FROM runs
		ORDER BY token COLLATE BINARY DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	summaries := []RunSummary{}
	for rows.Next() {
		var rs RunSummary
		if err := rows.Scan(
			&rs.Token, &rs.ModelName, &rs.ModelHash, &rs.Fingerprint,
			&rs.Iterations, &rs.Converged, &rs.Truncated, &rs.TruncationReason,
			&rs.DroppedOversize, &rs.EngineVersion, &rs.IRVersion, &rs.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		summaries = append(summaries, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return summaries, nil
}

// ReadRun loads a complete run. Species and reactions come back in
// admission order (ORDER BY idx), matching the generator's output exactly.
func (s *Store) ReadRun(ctx context.Context, token string) (*RunRecord, error) {
	rec := &RunRecord{}
	err := s.db.QueryRowContext(ctx, `
		SELECT token, model_name, model_hash, fingerprint, iterations,
		       converged, truncated, truncation_reason, dropped_oversize,
		       engine_version, ir_version, created_at
		FROM runs WHERE token = ?
	`, token).Scan(
		&rec.Token, &rec.ModelName, &rec.ModelHash, &rec.Fingerprint,
		&rec.Iterations, &rec.Converged, &rec.Truncated, &rec.TruncationReason,
		&rec.DroppedOversize, &rec.EngineVersion, &rec.IRVersion, &rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, token)
	}
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}

	if rec.Species, err = s.readSpecies(ctx, token); err != nil {
		return nil, err
	}
	if rec.Reactions, err = s.readReactions(ctx, token); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) readSpecies(ctx context.Context, token string) ([]SpeciesRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, seq, certificate, quantity, constant, compartment, seed
		FROM species WHERE run_token = ?
		ORDER BY idx ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("read species: %w", err)
	}
	defer rows.Close()

	species := []SpeciesRow{}
	for rows.Next() {
		var sp SpeciesRow
		if err := rows.Scan(&sp.Index, &sp.Seq, &sp.Certificate,
			&sp.Quantity, &sp.Constant, &sp.Compartment, &sp.Seed); err != nil {
			return nil, fmt.Errorf("read species: scan: %w", err)
		}
		species = append(species, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read species: %w", err)
	}
	return species, nil
}

func (s *Store) readReactions(ctx context.Context, token string) ([]ReactionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, seq, rule, reactants, products, rate, rate_expr, multiplicity
		FROM reactions WHERE run_token = ?
		ORDER BY idx ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("read reactions: %w", err)
	}
	defer rows.Close()

	reactions := []ReactionRow{}
	for rows.Next() {
		var rx ReactionRow
		var reactants, products string
		if err := rows.Scan(&rx.Index, &rx.Seq, &rx.Rule,
			&reactants, &products, &rx.Rate, &rx.RateExpr, &rx.Multiplicity); err != nil {
			return nil, fmt.Errorf("read reactions: scan: %w", err)
		}
		if rx.Reactants, err = unmarshalIndices(reactants); err != nil {
			return nil, fmt.Errorf("read reactions: %w", err)
		}
		if rx.Products, err = unmarshalIndices(products); err != nil {
			return nil, fmt.Errorf("read reactions: %w", err)
		}
		reactions = append(reactions, rx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read reactions: %w", err)
	}
	return reactions, nil
}
