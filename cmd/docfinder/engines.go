package main

import (
	"github.com/kailas-cloud/docfinder/internal/config"
	"github.com/kailas-cloud/docfinder/internal/domain/collection"
	searchuc "github.com/kailas-cloud/docfinder/internal/usecase/search"
)

// engineConfigs maps the search section of the config onto per-collection engine setups.
func engineConfigs(cfg config.SearchConfig) map[collection.Name]searchuc.EngineConfig {
	defaults := searchuc.DefaultCollectionConfigs()
	return map[collection.Name]searchuc.EngineConfig{
		collection.Documents: engineConfig(cfg.Documents, defaults[collection.Documents]),
		collection.Manual:    engineConfig(cfg.Manual, defaults[collection.Manual]),
	}
}

func engineConfig(cc config.CollectionConfig, base searchuc.EngineConfig) searchuc.EngineConfig {
	out := base
	w := &out.Weights
	override(&w.Title, cc.Weights.Title)
	override(&w.Tag, cc.Weights.Tag)
	override(&w.Section, cc.Weights.Section)
	override(&w.IntentSection, cc.Weights.IntentSection)
	override(&w.HighPriorityFactor, cc.Weights.HighPriorityFactor)

	if tb := searchuc.TieBreak(cc.TieBreak); tb.IsValid() {
		out.TieBreak = tb
	}
	if cc.DetectType != nil {
		out.DetectType = *cc.DetectType
	}
	return out
}

func override(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
