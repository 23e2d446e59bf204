package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/bionetgo/rxnet/internal/canon"
	"github.com/bionetgo/rxnet/internal/ir"
	"github.com/bionetgo/rxnet/internal/match"
	"github.com/bionetgo/rxnet/internal/model"
	"github.com/bionetgo/rxnet/internal/rewrite"
)

// DefaultCertCacheSize bounds the generator-owned certificate cache.
const DefaultCertCacheSize = 100000

// Generator expands a compiled model into its reaction network.
//
// Construction validates the whole model (types, seeds, rules); Generate
// may then be called multiple times, each call producing an independent
// Network. All mutation happens on the calling goroutine.
type Generator struct {
	log       *slog.Logger
	mdl       ir.Model
	modelHash string
	tt        *model.TypeTable
	rules     []*rewrite.Rule
	seeds     []seedSpecies
	limits    Limits
	volumes   map[string]float64
	tokens    RunTokenGenerator
	progress  ProgressFunc
	cacheMax  int
}

type seedSpecies struct {
	graph *model.Species
	def   ir.SeedDef
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(g *Generator) { g.log = log }
}

// WithTokenGenerator sets the run token source. Default: UUIDv7Generator.
func WithTokenGenerator(gen RunTokenGenerator) Option {
	return func(g *Generator) { g.tokens = gen }
}

// WithProgress installs a per-iteration progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(g *Generator) { g.progress = fn }
}

// WithCertCacheSize bounds the certificate cache. Default:
// DefaultCertCacheSize; <= 0 disables bounding.
func WithCertCacheSize(n int) Option {
	return func(g *Generator) { g.cacheMax = n }
}

// New validates the model and builds a generator for it.
func New(m ir.Model, opts ...Option) (*Generator, error) {
	tt, err := model.NewTypeTable(m.Types)
	if err != nil {
		return nil, err
	}

	defs, err := splitRules(m)
	if err != nil {
		return nil, err
	}
	rules, err := buildRules(tt, defs)
	if err != nil {
		return nil, err
	}

	seeds := make([]seedSpecies, 0, len(m.Seeds))
	for _, def := range m.Seeds {
		sp, err := model.ParseSpecies(tt, def.Species)
		if err != nil {
			return nil, fmt.Errorf("seed %q: %w", def.Species, err)
		}
		seeds = append(seeds, seedSpecies{graph: sp, def: def})
	}

	volumes := make(map[string]float64, len(m.Compartments))
	for _, c := range m.Compartments {
		if c.Size <= 0 {
			return nil, fmt.Errorf("compartment %s: size must be positive, got %v", c.Name, c.Size)
		}
		volumes[c.Name] = c.Size
	}
	for _, def := range m.Seeds {
		if def.Compartment != "" {
			if _, ok := volumes[def.Compartment]; !ok {
				return nil, fmt.Errorf("seed %q: unknown compartment %q", def.Species, def.Compartment)
			}
		}
	}

	hash, err := ir.ModelHash(m)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		log:       slog.Default(),
		mdl:       m,
		modelHash: hash,
		tt:        tt,
		rules:     rules,
		seeds:     seeds,
		limits:    ResolveLimits(m.Config),
		volumes:   volumes,
		tokens:    UUIDv7Generator{},
		cacheMax:  DefaultCertCacheSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Types returns the generator's molecule type table.
func (g *Generator) Types() *model.TypeTable { return g.tt }

// run is the per-Generate working state, dropped when Generate returns.
type run struct {
	net     *Network
	clock   *Clock
	certs   *canon.Cache
	index   map[string]int // certificate -> 1-based species index
	ledger  *reactionLedger
	iter    int
	halted  bool
	haltWhy TruncationReason
}

// Generate runs the fixed-point expansion and returns the network. On
// context cancellation the partial network is returned alongside the
// context's error.
func (g *Generator) Generate(ctx context.Context) (*Network, error) {
	started := time.Now()
	r := &run{
		net: &Network{
			RunToken:  g.tokens.Generate(),
			ModelName: g.mdl.Name,
			ModelHash: g.modelHash,
		},
		clock:  NewClock(),
		certs:  canon.NewCache(canon.NewRefinementStrategy(), g.cacheMax),
		index:  make(map[string]int),
		ledger: newReactionLedger(),
	}
	log := g.log.With("run", r.net.RunToken, "model", g.mdl.Name)

	if err := g.admitSeeds(r, log); err != nil {
		return nil, err
	}
	if r.halted {
		g.finish(r, log)
		return r.net, nil
	}

	frontierLo := 0
	for iter := 1; ; iter++ {
		if err := ctx.Err(); err != nil {
			return r.net, err
		}
		if !g.limits.AdmitsIteration(iter) {
			if frontierLo < len(r.net.Species) {
				r.halted = true
				r.haltWhy = TruncIterations
			}
			break
		}
		r.iter = iter
		frontierHi := len(r.net.Species)
		speciesBefore := len(r.net.Species)
		reactionsBefore := len(r.net.Reactions)

		for _, rule := range g.rules {
			if rule.Arity() == 0 {
				if iter == 1 {
					if err := g.fireZeroOrder(r, rule, log); err != nil {
						return nil, err
					}
				}
			} else {
				if err := g.fireRule(r, rule, frontierLo, frontierHi, log); err != nil {
					return nil, err
				}
			}
			if r.halted {
				break
			}
		}

		r.net.Iterations = iter
		if g.progress != nil {
			g.progress(Progress{
				Iteration:    iter,
				Species:      len(r.net.Species),
				Reactions:    len(r.net.Reactions),
				NewSpecies:   len(r.net.Species) - speciesBefore,
				NewReactions: len(r.net.Reactions) - reactionsBefore,
				Elapsed:      time.Since(started),
			})
		}
		log.Debug("iteration complete",
			"iteration", iter,
			"species", len(r.net.Species),
			"reactions", len(r.net.Reactions))

		if r.halted {
			break
		}
		if len(r.net.Species) == frontierHi {
			// Nothing new: fixed point.
			r.net.Converged = true
			break
		}
		frontierLo = frontierHi
	}

	g.finish(r, log)
	return r.net, nil
}

func (g *Generator) finish(r *run, log *slog.Logger) {
	if r.halted {
		r.net.Truncated = true
		r.net.TruncationReason = r.haltWhy
		log.Warn("generation truncated",
			"reason", string(r.haltWhy),
			"species", len(r.net.Species),
			"reactions", len(r.net.Reactions))
		return
	}
	log.Info("generation complete",
		"iterations", r.net.Iterations,
		"species", len(r.net.Species),
		"reactions", len(r.net.Reactions))
}

// admitSeeds installs the seed species. Seeds that canonicalize to the
// same species merge: quantities sum, the constant flag sticks.
func (g *Generator) admitSeeds(r *run, log *slog.Logger) error {
	for _, seed := range g.seeds {
		cert, err := r.certs.Certificate(seed.graph)
		if err != nil {
			return fmt.Errorf("seed %q: %w", seed.def.Species, err)
		}
		if idx, seen := r.index[cert]; seen {
			entry := &r.net.Species[idx-1]
			entry.Quantity += seed.def.Quantity
			entry.Constant = entry.Constant || seed.def.Constant
			log.Warn("duplicate seed merged", "species", cert)
			continue
		}
		if !g.limits.AdmitsSpeciesCount(len(r.net.Species) + 1) {
			r.halted = true
			r.haltWhy = TruncSpecies
			return nil
		}
		r.net.Species = append(r.net.Species, SpeciesEntry{
			Index:       len(r.net.Species) + 1,
			Seq:         r.clock.Next(),
			Certificate: cert,
			Graph:       seed.graph.Clone(),
			Quantity:    seed.def.Quantity,
			Constant:    seed.def.Constant,
			Compartment: seed.def.Compartment,
			Seed:        true,
		})
		r.index[cert] = len(r.net.Species)
	}
	return nil
}

// admitSpecies interns a derived species, returning its 1-based index.
// Returns 0 with halted set when the species bound trips.
func (g *Generator) admitSpecies(r *run, sp *model.Species, cert, compartment string) int {
	if idx, seen := r.index[cert]; seen {
		return idx
	}
	if !g.limits.AdmitsSpeciesCount(len(r.net.Species) + 1) {
		r.halted = true
		r.haltWhy = TruncSpecies
		return 0
	}
	r.net.Species = append(r.net.Species, SpeciesEntry{
		Index:       len(r.net.Species) + 1,
		Seq:         r.clock.Next(),
		Certificate: cert,
		Graph:       sp,
		Compartment: compartment,
	})
	r.index[cert] = len(r.net.Species)
	return len(r.net.Species)
}

// admitReaction records one reaction candidate, deduplicating by content
// key. Symmetric repeats within the creating iteration raise multiplicity;
// later re-derivations are dropped.
func (g *Generator) admitReaction(r *run, ruleName string, reactants, products []int, rate float64, rateExpr string) error {
	certsOf := func(indices []int) []string {
		out := make([]string, len(indices))
		for i, idx := range indices {
			out[i] = r.net.Species[idx-1].Certificate
		}
		return out
	}
	key, err := ir.ReactionKey(ruleName, certsOf(reactants), certsOf(products))
	if err != nil {
		return err
	}

	if idx, created := r.ledger.Admit(key, len(r.net.Reactions), r.iter); !created {
		if r.ledger.Iteration(key) == r.iter {
			r.net.Reactions[idx].Multiplicity++
		}
		return nil
	}
	if !g.limits.AdmitsReactionCount(len(r.net.Reactions) + 1) {
		r.halted = true
		r.haltWhy = TruncReactions
		return nil
	}
	r.net.Reactions = append(r.net.Reactions, Reaction{
		Index:        len(r.net.Reactions) + 1,
		Seq:          r.clock.Next(),
		RuleName:     ruleName,
		Reactants:    append([]int(nil), reactants...),
		Products:     append([]int(nil), products...),
		Rate:         rate,
		RateExpr:     rateExpr,
		Multiplicity: 1,
	})
	return nil
}

// fireZeroOrder applies a synthesis-only rule (no reactants). It can fire
// at most once per run; the reaction ledger makes repeats harmless anyway.
func (g *Generator) fireZeroOrder(r *run, rule *rewrite.Rule, log *slog.Logger) error {
	products, err := rewrite.Apply(rule, nil, nil)
	if err != nil {
		return err
	}
	indices, ok, err := g.admitProducts(r, rule, products, "", log)
	if err != nil || !ok || r.halted {
		return err
	}
	return g.admitReaction(r, rule.Name, nil, indices, rule.Rate, rule.RateExpr)
}

// fireRule enumerates every applicable reactant combination for one rule
// and records the induced reactions. Combinations draw from the species
// known at iteration start ([0, frontierHi)) and must involve at least one
// frontier species ([frontierLo, frontierHi)); identical adjacent patterns
// take non-decreasing indices so symmetric pairs are visited once.
func (g *Generator) fireRule(r *run, rule *rewrite.Rule, frontierLo, frontierHi int, log *slog.Logger) error {
	arity := rule.Arity()

	// Embeddings per slot per species, computed lazily: most species match
	// few patterns and the table is discarded after the rule.
	embs := make([]map[int][]match.Match, arity)
	for s := range embs {
		embs[s] = make(map[int][]match.Match)
	}
	embeddingsFor := func(slot, speciesIdx int) []match.Match {
		if ms, ok := embs[slot][speciesIdx]; ok {
			return ms
		}
		ms := match.FindEmbeddings(rule.Reactants[slot], r.net.Species[speciesIdx].Graph)
		embs[slot][speciesIdx] = ms
		return ms
	}

	samePattern := make([]bool, arity)
	for s := 1; s < arity; s++ {
		samePattern[s] = rule.Reactants[s].String() == rule.Reactants[s-1].String()
	}

	combo := make([]int, arity)
	var walk func(slot int, touchedFrontier bool) error
	walk = func(slot int, touchedFrontier bool) error {
		if r.halted {
			return nil
		}
		if slot == arity {
			if !touchedFrontier {
				return nil
			}
			matchSets := make([][]match.Match, arity)
			for s, idx := range combo {
				matchSets[s] = embeddingsFor(s, idx)
			}
			return g.fireCombination(r, rule, combo, matchSets, log)
		}
		lo := 0
		if samePattern[slot] {
			lo = combo[slot-1]
		}
		if slot == arity-1 && !touchedFrontier && frontierLo > lo {
			// The last slot must supply the frontier species.
			lo = frontierLo
		}
		for i := lo; i < frontierHi; i++ {
			if len(embeddingsFor(slot, i)) == 0 {
				continue
			}
			combo[slot] = i
			if err := walk(slot+1, touchedFrontier || i >= frontierLo); err != nil {
				return err
			}
			if r.halted {
				return nil
			}
		}
		return nil
	}
	return walk(0, false)
}

// fireCombination runs the cartesian product of per-slot embeddings for
// one fixed species combination.
func (g *Generator) fireCombination(r *run, rule *rewrite.Rule, combo []int, matchSets [][]match.Match, log *slog.Logger) error {
	arity := rule.Arity()
	sources := make([]*model.Species, arity)
	reactants := make([]int, arity)
	for s, idx := range combo {
		sources[s] = r.net.Species[idx].Graph
		reactants[s] = idx + 1
	}

	rate := rule.Rate / g.volumeFactor(r, reactants)
	compartment := r.net.Species[combo[0]].Compartment

	tuple := make([]match.Match, arity)
	var walk func(slot int) error
	walk = func(slot int) error {
		if r.halted {
			return nil
		}
		if slot == arity {
			return g.fireEmbedding(r, rule, tuple, sources, reactants, rate, compartment, log)
		}
		for _, m := range matchSets[slot] {
			tuple[slot] = m
			if err := walk(slot + 1); err != nil {
				return err
			}
			if r.halted {
				return nil
			}
		}
		return nil
	}
	return walk(0)
}

// fireEmbedding applies the rule to one concrete embedding tuple and
// records the resulting reaction.
func (g *Generator) fireEmbedding(r *run, rule *rewrite.Rule, tuple []match.Match, sources []*model.Species, reactants []int, rate float64, compartment string, log *slog.Logger) error {
	products, err := rewrite.Apply(rule, tuple, sources)
	if err != nil {
		if rewrite.IsBondConflict(err) {
			log.Debug("embedding skipped", "rule", rule.Name, "cause", err)
			return nil
		}
		return err
	}

	indices, ok, err := g.admitProducts(r, rule, products, compartment, log)
	if err != nil || !ok || r.halted {
		return err
	}
	return g.admitReaction(r, rule.Name, reactants, indices, rate, rule.RateExpr)
}

// admitProducts interns a candidate's product species. Returns ok=false
// when a product violates the aggregate or stoichiometry bounds, which
// drops the whole candidate.
func (g *Generator) admitProducts(r *run, rule *rewrite.Rule, products []*model.Species, compartment string, log *slog.Logger) ([]int, bool, error) {
	indices := make([]int, 0, len(products))
	for _, sp := range products {
		if err := g.limits.CheckComplex(sp); err != nil {
			r.net.DroppedOversize++
			log.Debug("oversize product dropped", "rule", rule.Name, "cause", err)
			return nil, false, nil
		}
		cert, err := r.certs.Certificate(sp)
		if err != nil {
			return nil, false, fmt.Errorf("rule %s: %w", rule.Name, err)
		}
		idx := g.admitSpecies(r, sp, cert, compartment)
		if r.halted {
			return nil, false, nil
		}
		indices = append(indices, idx)
	}
	return indices, true, nil
}

// volumeFactor is the rate denominator V^(n-1) for an n-molecular
// reaction: bimolecular and higher rate constants scale inversely with the
// reaction volume. The volume is the reactants' shared compartment size;
// on a mismatch the smallest participating compartment governs, and
// species without a compartment live in the unit-size default.
func (g *Generator) volumeFactor(r *run, reactants []int) float64 {
	if len(reactants) <= 1 {
		return 1
	}
	v := math.Inf(1)
	for _, idx := range reactants {
		name := r.net.Species[idx-1].Compartment
		size := 1.0
		if name != "" {
			size = g.volumes[name]
		}
		if size < v {
			v = size
		}
	}
	return math.Pow(v, float64(len(reactants)-1))
}
