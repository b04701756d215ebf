package httpapi

import (
	"sync/atomic"

	"jobpay-engine/internal/config"
	"jobpay-engine/internal/events"
	"jobpay-engine/internal/insights"
	"jobpay-engine/internal/store"
)

type Deps struct {
	Service   *insights.Service
	Refresher *insights.Refresher
	// Importer is nil unless the configured source is the sqlite store.
	Importer *insights.Importer
	Store    *store.DB

	Hub *events.Hub

	// Atomic stores
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
