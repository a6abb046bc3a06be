package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pw2/beta-binomial-regression-for-priors/internal/config"
)

// Factory creates SeasonSource implementations based on configuration
type Factory struct {
	logger *logrus.Logger
}

// NewFactory creates a new data source factory
func NewFactory(logger *logrus.Logger) *Factory {
	return &Factory{logger: logger}
}

// NewSeasonSource creates a single SeasonSource from its configuration
func (f *Factory) NewSeasonSource(cfg config.SourceConfig, httpClient *RateLimitedHTTPClient) (SeasonSource, error) {
	switch cfg.Name {
	case balldontlieSourceName:
		if httpClient == nil {
			return nil, fmt.Errorf("HTTP client is required for %s", cfg.Name)
		}
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("balldontlie API key is required")
		}
		return NewBalldontlieClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Enabled, f.logger), nil

	case csvSourceName:
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("csv source requires a file path")
		}
		return NewCSVFileSource(cfg.FilePath, cfg.Enabled, f.logger), nil

	default:
		return nil, fmt.Errorf("unknown data source: %s", cfg.Name)
	}
}

// NewSeasonSources creates all enabled season sources from configuration
func (f *Factory) NewSeasonSources(dataCfg config.DataSourceConfig, httpClient *RateLimitedHTTPClient) ([]SeasonSource, error) {
	var sources []SeasonSource

	for _, srcCfg := range dataCfg.Sources {
		if !srcCfg.Enabled {
			if f.logger != nil {
				f.logger.Debugf("Skipping disabled data source: %s", srcCfg.Name)
			}
			continue
		}

		source, err := f.NewSeasonSource(srcCfg, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create data source %s: %w", srcCfg.Name, err)
		}
		sources = append(sources, source)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no enabled data sources configured")
	}

	return sources, nil
}
