package pipeline

import "fmt"

// VMType selects which datapath organization a run uses.
type VMType uint8

const (
	VMSingleStage VMType = iota
	VMMultiStage
)

// DataHazardMode selects the RAW-hazard policy the ID stage enforces.
type DataHazardMode uint8

const (
	HazardIdeal DataHazardMode = iota
	HazardStallOnly
	HazardForwarding
)

// BranchStage selects which pipeline stage resolves a branch's outcome.
type BranchStage uint8

const (
	BranchInEX BranchStage = iota
	BranchInID
)

// Config holds every externally configurable knob spec.md §6 names. Build
// one with NewConfig and functional Options, then call Validate before
// constructing a Pipeline from it.
type Config struct {
	VMType         VMType
	DataHazardMode DataHazardMode
	BranchPredictor PredictorKind
	BranchStage    BranchStage
	RunStepDelayMS uint64

	MExtensionEnabled bool
	FExtensionEnabled bool
	DExtensionEnabled bool

	DataSectionStart uint64
	TextSectionStart uint64
	BSSSectionStart  uint64
}

// Option configures a Config under construction.
type Option func(*Config)

// WithVMType sets the datapath organization.
func WithVMType(t VMType) Option { return func(c *Config) { c.VMType = t } }

// WithDataHazardMode sets the RAW-hazard policy.
func WithDataHazardMode(m DataHazardMode) Option {
	return func(c *Config) { c.DataHazardMode = m }
}

// WithBranchPredictor sets the branch-resolution predictor variant.
func WithBranchPredictor(k PredictorKind) Option {
	return func(c *Config) { c.BranchPredictor = k }
}

// WithBranchStage sets which stage resolves branch outcomes.
func WithBranchStage(s BranchStage) Option { return func(c *Config) { c.BranchStage = s } }

// WithRunStepDelay sets the debug-run inter-tick pacing, in milliseconds.
func WithRunStepDelay(ms uint64) Option { return func(c *Config) { c.RunStepDelayMS = ms } }

// WithExtensions sets the M/F/D extension availability flags. The flags
// are recorded on the Config only: the decoder always decodes M-extension
// opcodes and always rejects F/D opcodes, whatever these flags say.
func WithExtensions(m, f, d bool) Option {
	return func(c *Config) {
		c.MExtensionEnabled = m
		c.FExtensionEnabled = f
		c.DExtensionEnabled = d
	}
}

// WithSections sets the data/text/bss base addresses.
func WithSections(data, text, bss uint64) Option {
	return func(c *Config) {
		c.DataSectionStart = data
		c.TextSectionStart = text
		c.BSSSectionStart = bss
	}
}

// NewConfig builds a Config with M-extension enabled and everything else
// at its zero value (single-stage, ideal hazard handling, EX-resolved
// static-not-taken branches), then applies opts.
func NewConfig(opts ...Option) *Config {
	c := &Config{
		VMType:            VMSingleStage,
		DataHazardMode:    HazardIdeal,
		BranchPredictor:   PredictorStaticNotTaken,
		BranchStage:       BranchInEX,
		MExtensionEnabled: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate rejects the configuration combinations spec.md §6 forbids:
// a hazard mode on the single-stage datapath, a branch predictor or
// branch stage choice when hazard handling is ideal, and an ID-resolved
// branch stage (which needs a BTB lookup before the IF/ID latch even
// exists) when that combination cannot be backed by a BTB.
func (c *Config) Validate() error {
	if c.VMType == VMSingleStage && c.DataHazardMode != HazardIdeal {
		return fmt.Errorf("data_hazard_mode is not applicable to vm_type=single_stage")
	}
	if c.DataHazardMode == HazardIdeal {
		if c.BranchPredictor != PredictorStaticNotTaken {
			return fmt.Errorf("branch_predictor cannot be configured when data_hazard_mode=ideal")
		}
		if c.BranchStage != BranchInEX {
			return fmt.Errorf("branch_stage cannot be configured when data_hazard_mode=ideal")
		}
	}
	if c.BranchStage == BranchInID && c.VMType != VMMultiStage {
		return fmt.Errorf("branch_stage=id requires vm_type=multi_stage")
	}
	return nil
}
