package store

import (
	"context"
	"fmt"

	"github.com/bionetgo/rxnet/internal/engine"
	"github.com/bionetgo/rxnet/internal/ir"
)

// WriteRun persists a complete network in one transaction: the run row,
// then species and reactions in admission order. Idempotent by run token
// (ON CONFLICT DO NOTHING), so re-writing a run is a silent no-op and
// partial writes never survive a failure.
func (s *Store) WriteRun(ctx context.Context, net *engine.Network) error {
	fingerprint, err := net.Fingerprint()
	if err != nil {
		return fmt.Errorf("write run: fingerprint: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(token, model_name, model_hash, fingerprint, iterations, converged,
		 truncated, truncation_reason, dropped_oversize, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		net.RunToken,
		net.ModelName,
		net.ModelHash,
		fingerprint,
		net.Iterations,
		net.Converged,
		net.Truncated,
		string(net.TruncationReason),
		net.DroppedOversize,
		ir.EngineVersion,
		ir.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Run already stored; admission order is immutable so there is
		// nothing to update.
		return nil
	}

	spStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO species
		(run_token, idx, seq, certificate, quantity, constant, compartment, seed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run: prepare species: %w", err)
	}
	defer spStmt.Close()
	for _, sp := range net.Species {
		if _, err := spStmt.ExecContext(ctx,
			net.RunToken, sp.Index, sp.Seq, sp.Certificate,
			sp.Quantity, sp.Constant, sp.Compartment, sp.Seed,
		); err != nil {
			return fmt.Errorf("write run: species %d: %w", sp.Index, err)
		}
	}

	rxStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reactions
		(run_token, idx, seq, rule, reactants, products, rate, rate_expr, multiplicity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run: prepare reactions: %w", err)
	}
	defer rxStmt.Close()
	for _, rx := range net.Reactions {
		reactants, err := marshalIndices(rx.Reactants)
		if err != nil {
			return fmt.Errorf("write run: reaction %d: %w", rx.Index, err)
		}
		products, err := marshalIndices(rx.Products)
		if err != nil {
			return fmt.Errorf("write run: reaction %d: %w", rx.Index, err)
		}
		if _, err := rxStmt.ExecContext(ctx,
			net.RunToken, rx.Index, rx.Seq, rx.RuleName,
			reactants, products, rx.Rate, rx.RateExpr, rx.Multiplicity,
		); err != nil {
			return fmt.Errorf("write run: reaction %d: %w", rx.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}
