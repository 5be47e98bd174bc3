package config

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestValidateRejectsZeroThreads(t *testing.T) {
	cfg := Default()
	cfg.IntegratorThreads = 0
	if err := cfg.Validate(); err != errInvalidThreads {
		t.Fatalf("Validate() error = %v, want %v", err, errInvalidThreads)
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() failed Validate(): %v", err)
	}
}

func TestRegisterFlagsParsesOverrides(t *testing.T) {
	cfg := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)

	if err := fs.Parse([]string{
		"--integrator-threads=4",
		"--enable-pairwise-confidence-merging",
		"--pairwise-confidence-threshold=5",
	}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.IntegratorThreads != 4 {
		t.Fatalf("IntegratorThreads = %d, want 4", cfg.IntegratorThreads)
	}
	if !cfg.EnablePairwiseConfidenceMerging {
		t.Fatalf("EnablePairwiseConfidenceMerging not set by flag")
	}
	if cfg.PairwiseConfidenceThreshold != 5 {
		t.Fatalf("PairwiseConfidenceThreshold = %d, want 5", cfg.PairwiseConfidenceThreshold)
	}
}
