package store

import (
	"context"
	"fmt"
	"strings"
)

// SpeciesFilter narrows a stored run's species listing. Zero values mean
// no constraint.
type SpeciesFilter struct {
	Certificate string // exact canonical name
	SeedOnly    bool
	Compartment string
	Limit       int
}

// ReactionFilter narrows a stored run's reaction listing. Zero values
// mean no constraint.
type ReactionFilter struct {
	Rule            string
	Touching        int // species index among reactants or products
	MinMultiplicity int
	Limit           int
}

// QuerySpecies lists a run's species matching the filter. The compiled
// SQL is always parameterized and always carries ORDER BY idx, so results
// are deterministic regardless of filter shape.
func (s *Store) QuerySpecies(ctx context.Context, token string, f SpeciesFilter) ([]SpeciesRow, error) {
	query, params := compileSpeciesQuery(token, f)
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query species: %w", err)
	}
	defer rows.Close()

	species := []SpeciesRow{}
	for rows.Next() {
		var sp SpeciesRow
		if err := rows.Scan(&sp.Index, &sp.Seq, &sp.Certificate,
			&sp.Quantity, &sp.Constant, &sp.Compartment, &sp.Seed); err != nil {
			return nil, fmt.Errorf("query species: scan: %w", err)
		}
		species = append(species, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query species: %w", err)
	}
	return species, nil
}

// QueryReactions lists a run's reactions matching the filter, in
// admission order.
func (s *Store) QueryReactions(ctx context.Context, token string, f ReactionFilter) ([]ReactionRow, error) {
	query, params := compileReactionQuery(token, f)
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query reactions: %w", err)
	}
	defer rows.Close()

	reactions := []ReactionRow{}
	for rows.Next() {
		var rx ReactionRow
		var reactants, products string
		if err := rows.Scan(&rx.Index, &rx.Seq, &rx.Rule,
			&reactants, &products, &rx.Rate, &rx.RateExpr, &rx.Multiplicity); err != nil {
			return nil, fmt.Errorf("query reactions: scan: %w", err)
		}
		var err error
		if rx.Reactants, err = unmarshalIndices(reactants); err != nil {
			return nil, fmt.Errorf("query reactions: %w", err)
		}
		if rx.Products, err = unmarshalIndices(products); err != nil {
			return nil, fmt.Errorf("query reactions: %w", err)
		}
		reactions = append(reactions, rx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query reactions: %w", err)
	}
	return reactions, nil
}

// compileSpeciesQuery builds parameterized SQL for a species filter.
// Values are never interpolated into the query text.
func compileSpeciesQuery(token string, f SpeciesFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT idx, seq, certificate, quantity, constant, compartment, seed
		FROM species WHERE run_token = ?`)
	params := []any{token}

	if f.Certificate != "" {
		b.WriteString(" AND certificate = ?")
		params = append(params, f.Certificate)
	}
	if f.SeedOnly {
		b.WriteString(" AND seed = 1")
	}
	if f.Compartment != "" {
		b.WriteString(" AND compartment = ?")
		params = append(params, f.Compartment)
	}
	b.WriteString(" ORDER BY idx ASC")
	if f.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, f.Limit)
	}
	return b.String(), params
}

// compileReactionQuery builds parameterized SQL for a reaction filter.
func compileReactionQuery(token string, f ReactionFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT idx, seq, rule, reactants, products, rate, rate_expr, multiplicity
		FROM reactions WHERE run_token = ?`)
	params := []any{token}

	if f.Rule != "" {
		b.WriteString(" AND rule = ?")
		params = append(params, f.Rule)
	}
	if f.Touching > 0 {
		// Index lists are stored as JSON arrays, so membership is a
		// json_each scan over both sides.
		b.WriteString(` AND (EXISTS (SELECT 1 FROM json_each(reactants) WHERE json_each.value = ?)
			OR EXISTS (SELECT 1 FROM json_each(products) WHERE json_each.value = ?))`)
		params = append(params, f.Touching, f.Touching)
	}
	if f.MinMultiplicity > 1 {
		b.WriteString(" AND multiplicity >= ?")
		params = append(params, f.MinMultiplicity)
	}
	b.WriteString(" ORDER BY idx ASC")
	if f.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, f.Limit)
	}
	return b.String(), params
}
