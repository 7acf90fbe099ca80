package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Server configuration
	Server struct {
		Port         int    `env:"PORT" envDefault:"5250"`
		DatabasePath string `env:"DATABASE_PATH" envDefault:"database/comps.db"`
	}

	// Comps engine policy. The similarity weights themselves are fixed
	// (they must match the scores precomputed by the research pipeline),
	// but the threshold constants are tunable.
	Comps struct {
		// Similarity score assigned to the subject's own past sales
		SelfHistoryScore float64 `env:"COMPS_SELF_HISTORY_SCORE" envDefault:"0.5"`

		// Minimum similarity for a portfolio sibling to qualify as a comp
		SiblingFloor float64 `env:"COMPS_SIBLING_FLOOR" envDefault:"0.3"`

		// Percentage band around zero treated as a stable price trend
		TrendBandPct float64 `env:"COMPS_TREND_BAND_PCT" envDefault:"2"`

		// Percentage band around the comp median treated as at-market
		PositionBandPct float64 `env:"COMPS_POSITION_BAND_PCT" envDefault:"5"`

		// Minimum dated, priced comps required for a trend classification
		MinTrendSamples int `env:"COMPS_MIN_TREND_SAMPLES" envDefault:"3"`

		// Maximum research comps (sales and rentals each) per report
		MaxResearchComps int `env:"COMPS_MAX_RESEARCH" envDefault:"20"`

		// Maximum portfolio siblings scanned and returned
		MaxSiblingCandidates int `env:"COMPS_SIBLING_CANDIDATES" envDefault:"50"`
		MaxSiblings          int `env:"COMPS_MAX_SIBLINGS" envDefault:"10"`
	}

	// BatchProcessing configuration for the ingest pipeline
	BatchProcessing struct {
		// Maximum number of batches buffered before ingest returns 503
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
