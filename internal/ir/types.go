package ir

// ComponentDef declares one component slot on a molecule type.
// Components with the same name on one type are symmetric sites and are
// deliberately allowed; the canonical labeling layer resolves the ambiguity.
type ComponentDef struct {
	Name   string   `json:"name"`
	States []string `json:"states,omitempty"` // allowed states; empty = stateless
}

// MoleculeTypeDef declares a molecule type: its name and the ordered list
// of component slots every instance carries.
type MoleculeTypeDef struct {
	Name       string         `json:"name"`
	Components []ComponentDef `json:"components,omitempty"`
}

// SeedDef declares one seed species installed before generation starts.
// Species is the flat text form, e.g. "L(r)" or "A(b!1).B(a!1)".
type SeedDef struct {
	Species     string  `json:"species"`
	Quantity    float64 `json:"quantity"`
	Constant    bool    `json:"constant,omitempty"`    // boundary species: quantity fixed
	Compartment string  `json:"compartment,omitempty"` // empty = default compartment
}

// RuleDef declares one rewriting rule in text form. Bidirectional rules are
// split by the compiler into two unidirectional RuleDefs; the engine only
// ever sees Bidirectional=false.
type RuleDef struct {
	Name        string   `json:"name"`
	Reactants   []string `json:"reactants"` // pattern text forms, one per reactant
	Products    []string `json:"products"`
	Rate        float64  `json:"rate"`                // numeric rate constant
	RateExpr    string   `json:"rate_expr,omitempty"` // symbolic expression, if not a literal
	ReverseRate float64  `json:"reverse_rate,omitempty"`
	ReverseExpr string   `json:"reverse_expr,omitempty"`

	Bidirectional bool `json:"bidirectional,omitempty"`
}

// CompartmentDef declares a spatial compartment. Size is a volume (3D) or
// an area (2D); bimolecular rate constants are scaled by the reaction
// compartment's size relative to the default at recording time.
type CompartmentDef struct {
	Name   string  `json:"name"`
	Dim    int     `json:"dim"` // 2 or 3
	Size   float64 `json:"size"`
	Parent string  `json:"parent,omitempty"`
}

// ObservableKind distinguishes the two observable semantics.
type ObservableKind string

const (
	// ObservableMolecules sums pattern embeddings weighted by degeneracy.
	ObservableMolecules ObservableKind = "molecules"
	// ObservableSpecies counts each matching species once.
	ObservableSpecies ObservableKind = "species"
)

// ObservableDef declares a named quantity evaluated over the finished
// network by the observe package.
type ObservableDef struct {
	Name     string         `json:"name"`
	Kind     ObservableKind `json:"kind"`
	Patterns []string       `json:"patterns"`
}

// GenConfig carries the generation bounds. A zero value means unlimited.
type GenConfig struct {
	MaxSpecies    int `json:"max_species,omitempty" yaml:"maxSpecies"`
	MaxReactions  int `json:"max_reactions,omitempty" yaml:"maxReactions"`
	MaxIterations int `json:"max_iterations,omitempty" yaml:"maxIterations"`
	// MaxAgg bounds molecules per connected complex (blocks unbounded
	// polymerization).
	MaxAgg int `json:"max_agg,omitempty" yaml:"maxAgg"`
	// MaxStoichDefault bounds copies of any one molecule type per complex;
	// MaxStoich overrides it per type.
	MaxStoichDefault int            `json:"max_stoich_default,omitempty" yaml:"maxStoich"`
	MaxStoich        map[string]int `json:"max_stoich,omitempty" yaml:"maxStoichPerType"`
	// ReverseRateDefaultsForward controls whether a bidirectional rule with
	// no reverse rate inherits the forward rate (reference-tool convention).
	ReverseRateDefaultsForward bool `json:"reverse_rate_defaults_forward,omitempty" yaml:"reverseRateDefaultsForward"`
}

// Model is the complete compiled model handed to the engine.
type Model struct {
	Name         string            `json:"name"`
	Types        []MoleculeTypeDef `json:"types"`
	Seeds        []SeedDef         `json:"seeds"`
	Rules        []RuleDef         `json:"rules"`
	Compartments []CompartmentDef  `json:"compartments,omitempty"`
	Observables  []ObservableDef   `json:"observables,omitempty"`
	Config       GenConfig         `json:"config"`
}
