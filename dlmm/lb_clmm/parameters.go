package lb_clmm

import (
	"fmt"
	stdmath "math"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
)

// FeeParameter is the admin input of a fee update.
type FeeParameter struct {
	ProtocolShare uint16
	BaseFactor    uint16
}

// DefaultStaticParameters mirrors the program defaults.
func DefaultStaticParameters() StaticParameters {
	return StaticParameters{
		BaseFactor:               10_000,
		FilterPeriod:             30,
		DecayPeriod:              600,
		ReductionFactor:          500,
		VariableFeeControl:       40_000,
		ProtocolShare:            1_000,
		MaxVolatilityAccumulator: 350_000,
		MinBinID:                 stdmath.MinInt32,
		MaxBinID:                 stdmath.MaxInt32,
	}
}

// Update applies a fee update. The base factor may move by at most 100% of
// its current value and by at most MaxBaseFactorStep per update.
func (s *StaticParameters) Update(parameter FeeParameter) error {
	var delta uint16
	if parameter.BaseFactor > s.BaseFactor {
		delta = parameter.BaseFactor - s.BaseFactor
	} else {
		delta = s.BaseFactor - parameter.BaseFactor
	}

	if delta > s.BaseFactor || delta > shared.MaxBaseFactorStep {
		return fmt.Errorf("base factor %d -> %d: %w", s.BaseFactor, parameter.BaseFactor, shared.ErrExcessiveFeeUpdate)
	}
	if parameter.ProtocolShare > shared.MaxProtocolShare {
		return fmt.Errorf("protocol share %d: %w", parameter.ProtocolShare, shared.ErrExcessiveFeeUpdate)
	}

	s.ProtocolShare = parameter.ProtocolShare
	s.BaseFactor = parameter.BaseFactor
	return nil
}

// UpdateVolatilityAccumulator sets
// va = min(vr + |index_reference - activeID| * 10000, max_va).
func (v *VariableParameters) UpdateVolatilityAccumulator(activeID int32, static *StaticParameters) error {
	delta := int64(v.IndexReference) - int64(activeID)
	if delta < 0 {
		delta = -delta
	}

	va := uint64(v.VolatilityReference) + uint64(delta)*shared.BasisPointMax
	if maxVa := uint64(static.MaxVolatilityAccumulator); va > maxVa {
		va = maxVa
	}
	if va > stdmath.MaxUint32 {
		return fmt.Errorf("volatility accumulator %d: %w", va, shared.ErrOverflow)
	}
	v.VolatilityAccumulator = uint32(va)
	return nil
}

// UpdateReferences moves the reference bin and decays the volatility
// reference according to the time since the last update.
func (v *VariableParameters) UpdateReferences(activeID int32, now int64, static *StaticParameters) error {
	elapsed := now - v.LastUpdateTimestamp
	if (now < 0) != (v.LastUpdateTimestamp < 0) && (elapsed < 0) != (now < 0) {
		return fmt.Errorf("elapsed since %d: %w", v.LastUpdateTimestamp, shared.ErrOverflow)
	}

	if elapsed < int64(static.FilterPeriod) {
		// high frequency trade, keep the references
		return nil
	}

	v.IndexReference = activeID
	if elapsed < int64(static.DecayPeriod) {
		vr := uint64(v.VolatilityAccumulator) * uint64(static.ReductionFactor) / shared.BasisPointMax
		v.VolatilityReference = uint32(vr)
	} else {
		v.VolatilityReference = 0
	}
	return nil
}

// UpdateVolatilityParameter runs UpdateReferences then UpdateVolatilityAccumulator.
func (v *VariableParameters) UpdateVolatilityParameter(activeID int32, now int64, static *StaticParameters) error {
	if err := v.UpdateReferences(activeID, now, static); err != nil {
		return err
	}
	return v.UpdateVolatilityAccumulator(activeID, static)
}
