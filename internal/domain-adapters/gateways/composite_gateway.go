package gateways

import (
	"github.com/ochairo/pkgverify/internal/domain/entities"
	"github.com/ochairo/pkgverify/internal/domain/interfaces"
	"github.com/ochairo/pkgverify/internal/domain/interfaces/gateways"
)

// CompositeGateway groups every gateway a verification run needs, built from one Config
type CompositeGateway struct {
	Fetcher  gateways.Fetcher
	Digester gateways.Digester
	Keyring  gateways.KeyringResolver
	Registry gateways.RegistryGateway
	Engines  EngineSet
}

// NewCompositeGateway wires the default gateway implementations for cfg
func NewCompositeGateway(cfg entities.Config, opts EngineOptions, logger interfaces.Logger) (*CompositeGateway, error) {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	engines, err := SelectEngine(cfg, opts, logger)
	if err != nil {
		return nil, err
	}

	return &CompositeGateway{
		Fetcher:  NewDownloader(cfg.HTTPTimeout, cfg.UserAgent, logger),
		Digester: NewChecksumVerifier(cfg.BlockSize),
		Keyring:  NewKeyringResolver(cfg.KeyringDir),
		Registry: NewRubyGemsGateway(cfg.RegistryURL, cfg.HTTPTimeout, cfg.UserAgent, logger),
		Engines:  engines,
	}, nil
}
