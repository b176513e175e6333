package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
)

// DetectionConfig holds the recurring-obligation detector parameters.
type DetectionConfig struct {
	MinHistoryDays  int             // minimum ledger span before detection runs
	AmountTolerance decimal.Decimal // relative, e.g. 0.10 for ±10%
	ConfidenceFloor float64         // below this an obligation is flagged low-confidence
}

// ForecastConfig holds the projection parameters.
type ForecastConfig struct {
	HorizonDays          int
	ExcludeLowConfidence bool // drop low-confidence obligations from the projection
}

// SafetyConfig holds the buffer and taper parameters. ReserveThreshold and
// the taper model are safety-critical: a run must abort rather than evaluate
// without them.
type SafetyConfig struct {
	ReserveThreshold decimal.Decimal
	CautionMargin    decimal.Decimal
	Taper            domain.TaperModel
}

// Validate returns a ConfigurationError when a safety parameter is unset.
func (c SafetyConfig) Validate() error {
	if c.ReserveThreshold.LessThanOrEqual(decimal.Zero) {
		return &domain.ConfigurationError{Field: "reserve_threshold"}
	}
	if c.CautionMargin.LessThanOrEqual(decimal.Zero) {
		return &domain.ConfigurationError{Field: "caution_margin"}
	}
	if c.Taper.TaperRate.LessThanOrEqual(decimal.Zero) {
		return &domain.ConfigurationError{Field: "taper_rate"}
	}
	if c.Taper.WorkAllowance.IsNegative() {
		return &domain.ConfigurationError{Field: "work_allowance"}
	}
	return nil
}

// PipelineConfig bundles every stage's parameters, enumerated once at
// pipeline entry.
type PipelineConfig struct {
	Detection         DetectionConfig
	Forecast          ForecastConfig
	Safety            SafetyConfig
	LookbackDays      int // ledger window fed to the detector
	SummaryWindowDays int // trailing window for the run summary
}

// DefaultPipelineConfig mirrors the documented defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Detection: DetectionConfig{
			MinHistoryDays:  60,
			AmountTolerance: decimal.NewFromFloat(0.10),
			ConfidenceFloor: 0.5,
		},
		Forecast: ForecastConfig{
			HorizonDays: 90,
		},
		Safety: SafetyConfig{
			CautionMargin: decimal.NewFromFloat(0.25),
		},
		LookbackDays:      365,
		SummaryWindowDays: 30,
	}
}
