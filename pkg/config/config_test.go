package config

import (
	"strings"
	"testing"
)

const minimalYAML = `
forecaster:
  service_url: http://localhost:8500
tuning:
  grid:
    architectures: [lstm]
    window_sizes: [30]
    learning_rates: [0.001]
    batch_sizes: [32]
    epochs: [50]
symbols: [AAPL]
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("default port = %d", cfg.Server.Port)
	}
	if cfg.Market.BenchmarkSymbol != "^GSPC" || cfg.Market.VolatilitySymbol != "^VIX" {
		t.Fatalf("market defaults = %q %q", cfg.Market.BenchmarkSymbol, cfg.Market.VolatilitySymbol)
	}
	if cfg.Tuning.MinObservations != 200 {
		t.Fatalf("min observations = %d", cfg.Tuning.MinObservations)
	}
	if cfg.Prediction.Days != 7 || cfg.Prediction.ErrorGrowth != "sqrt" {
		t.Fatalf("prediction defaults = %+v", cfg.Prediction)
	}
	if !cfg.Market.FeatureConfig.Enabled || !cfg.Market.FeatureConfig.IncludeBeta {
		t.Fatalf("feature toggles not defaulted on: %+v", cfg.Market.FeatureConfig)
	}
	if cfg.ClickHouse.QuotesTable != "daily_quotes" {
		t.Fatalf("quotes table = %q", cfg.ClickHouse.QuotesTable)
	}
}

func TestParseExplicitFalseSurvivesDefaults(t *testing.T) {
	yaml := minimalYAML + `
market:
  feature_config:
    include_vix: false
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Market.FeatureConfig.IncludeVix {
		t.Fatal("explicit include_vix: false was clobbered by the default")
	}
	if !cfg.Market.FeatureConfig.IncludeBeta {
		t.Fatal("untouched toggles must keep their defaults")
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	yaml := minimalYAML + `
predicton:
  days: 7
`
	if _, err := Parse([]byte(yaml)); err == nil {
		t.Fatal("misspelled section must be rejected")
	}
}

func TestParseValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing forecaster url", `
tuning:
  grid:
    architectures: [lstm]
    window_sizes: [30]
    learning_rates: [0.001]
    batch_sizes: [32]
    epochs: [50]
symbols: [AAPL]
`},
		{"no symbols", `
forecaster:
  service_url: http://localhost:8500
tuning:
  grid:
    architectures: [lstm]
    window_sizes: [30]
    learning_rates: [0.001]
    batch_sizes: [32]
    epochs: [50]
`},
		{"unknown architecture", minimalYAML + `
model:
  architecture: transformer
`},
		{"empty grid dimension", strings.Replace(minimalYAML, "architectures: [lstm]", "architectures: []", 1)},
		{"inverted thresholds", minimalYAML + `
prediction:
  buy_threshold: -0.05
  sell_threshold: 0.05
`},
		{"kafka enabled without brokers", minimalYAML + `
kafka:
  enabled: true
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.yaml)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestModelConfig(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	hp := cfg.ModelConfig()
	if hp.Architecture != "lstm" || hp.WindowSize != 30 || hp.Epochs != 50 {
		t.Fatalf("model config = %+v", hp)
	}
}
