package main

import (
	"math"
	"testing"

	"github.com/jones139/AgilentDMM/pkg/config"
	"github.com/jones139/AgilentDMM/pkg/dmm"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		mean float64
		std  float64
	}{
		{"empty", nil, 0, 0},
		{"single", []float64{1.5}, 1.5, 0},
		{"constant", []float64{2, 2, 2}, 2, 0},
		{"spread", []float64{1, 2, 3}, 2, math.Sqrt(2.0 / 3.0)},
	}
	for _, tt := range tests {
		mean, std := summarize(tt.in)
		if math.Abs(mean-tt.mean) > 1e-12 || math.Abs(std-tt.std) > 1e-12 {
			t.Fatalf("%s: got (%v, %v) want (%v, %v)", tt.name, mean, std, tt.mean, tt.std)
		}
	}
}

func TestAcquireWithFakeMeter(t *testing.T) {
	meter := dmm.NewFakeMeter(1.0, 0.0)
	rec, err := acquire(meter, nil, 4)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if rec.NSamples != 4 {
		t.Fatalf("n samples: got %d want 4", rec.NSamples)
	}
	if math.Abs(rec.Mean-1.0) > 1e-12 || rec.Std != 0 {
		t.Fatalf("summary: got mean=%v std=%v", rec.Mean, rec.Std)
	}
	if rec.ElapsedS < 0 {
		t.Fatalf("elapsed: got %v", rec.ElapsedS)
	}
	if rec.Temps != nil {
		t.Fatalf("temps should be empty without a monitor, got %v", rec.Temps)
	}
}

func TestInitMeterSimulation(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MeterType = "simulation"
	meter, err := initMeter(cfg)
	if err != nil {
		t.Fatalf("init meter: %v", err)
	}
	defer meter.Close()
	if _, ok := meter.(*dmm.FakeMeter); !ok {
		t.Fatalf("expected FakeMeter, got %T", meter)
	}
}

func TestInitOutputsDefaultsToConsole(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Outputs = nil
	outs, err := initOutputs(cfg)
	if err != nil {
		t.Fatalf("init outputs: %v", err)
	}
	defer closeOutputs(outs)
	if len(outs) != 1 {
		t.Fatalf("outputs len: got %d want 1", len(outs))
	}
}

func TestInitOutputsUnknownType(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Outputs = []config.OutputConfig{{Type: "carrier-pigeon"}}
	if _, err := initOutputs(cfg); err == nil {
		t.Fatalf("expected error for unknown output type")
	}
}
