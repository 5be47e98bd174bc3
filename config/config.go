// Package config holds the tunables the fusion core consults, loadable
// either programmatically or via a pflag.FlagSet, following moby-moby's
// cmd/dockerd flag-registration convention.
package config

import (
	"errors"

	"github.com/spf13/pflag"
)

var errInvalidThreads = errors.New("config: integrator_threads must be >= 1")

// Config collects every tunable the fusion core consults.
type Config struct {
	// EnablePairwiseConfidenceMerging gates the label assigner's pairwise
	// candidate stages and the merge manager.
	EnablePairwiseConfidenceMerging bool

	// PairwiseConfidenceRatioThreshold is the overlap-ratio gate (count/N)
	// past which a label becomes a merge candidate for a segment.
	PairwiseConfidenceRatioThreshold float32

	// PairwiseConfidenceThreshold is the co-occurrence count a pair must
	// exceed to trigger a swap in mergeLabels.
	PairwiseConfidenceThreshold int

	// CapConfidence enables saturating the matching-label accumulator.
	CapConfidence bool

	// ConfidenceCapValue is the saturation ceiling when CapConfidence is set.
	ConfidenceCapValue uint32

	// IntegratorThreads is the worker count for the Worker Pool Driver.
	IntegratorThreads int

	// The remaining fields drive the core's side of the external RayCaster
	// contract rather than the base integrator itself.

	// AntiGrazing suppresses redundant surface-pass updates already covered
	// by another bundle.
	AntiGrazing bool

	// Carving controls whether clearing rays carve through occupied space.
	Carving bool

	// MaxRayLength caps how far a cast ray travels from the sensor origin.
	MaxRayLength float64

	// TruncationDistance is the TSDF truncation band passed through to the
	// external RayCaster.
	TruncationDistance float64
}

// Default returns the core's recommended default configuration.
func Default() Config {
	return Config{
		EnablePairwiseConfidenceMerging: false,
		PairwiseConfidenceRatioThreshold: 0.05,
		PairwiseConfidenceThreshold:     2,
		CapConfidence:                    false,
		ConfidenceCapValue:               10,
		IntegratorThreads:                1,
		AntiGrazing:                      true,
		Carving:                          true,
		MaxRayLength:                     5.0,
		TruncationDistance:               0.1,
	}
}

// RegisterFlags binds this Config's fields to a flag set so a cmd/ main can
// parse them from the command line, mirroring moby-moby's cli/flags layer.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.EnablePairwiseConfidenceMerging, "enable-pairwise-confidence-merging", c.EnablePairwiseConfidenceMerging,
		"enable co-occurrence based label merging")
	fs.Float32Var(&c.PairwiseConfidenceRatioThreshold, "pairwise-confidence-ratio-threshold", c.PairwiseConfidenceRatioThreshold,
		"overlap ratio above which a label becomes a merge candidate for a segment")
	fs.IntVar(&c.PairwiseConfidenceThreshold, "pairwise-confidence-threshold", c.PairwiseConfidenceThreshold,
		"co-occurrence count a label pair must exceed to trigger a swap")
	fs.BoolVar(&c.CapConfidence, "cap-confidence", c.CapConfidence,
		"saturate matching-label confidence at confidence-cap-value")
	fs.Uint32Var(&c.ConfidenceCapValue, "confidence-cap-value", c.ConfidenceCapValue,
		"saturation ceiling for matching-label confidence")
	fs.IntVar(&c.IntegratorThreads, "integrator-threads", c.IntegratorThreads,
		"number of worker goroutines used to fuse a batch")
	fs.BoolVar(&c.AntiGrazing, "anti-grazing", c.AntiGrazing,
		"skip redundant surface-pass voxel updates already covered by another bundle")
	fs.BoolVar(&c.Carving, "carving", c.Carving,
		"let clearing rays carve through previously occupied space")
	fs.Float64Var(&c.MaxRayLength, "max-ray-length", c.MaxRayLength,
		"maximum distance a cast ray travels from the sensor origin")
	fs.Float64Var(&c.TruncationDistance, "truncation-distance", c.TruncationDistance,
		"TSDF truncation band passed through to the ray caster")
}

// Validate enforces the precondition that there is at least one worker.
func (c Config) Validate() error {
	if c.IntegratorThreads < 1 {
		return errInvalidThreads
	}
	return nil
}
