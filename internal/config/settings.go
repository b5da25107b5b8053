package config

import (
	"github.com/phyten/tagfilter/internal/engine/opts"
)

// Snapshot is the fully resolved state for one process: where the settings
// came from plus the filter and presentation values.
type Snapshot struct {
	Path     string
	Where    string
	Settings Settings
	UI       UISettings
}

// Resolve loads path (which may be empty), overlays the environment and
// normalizes the result. Flags are applied by the caller afterwards.
func Resolve(path, where string, getenv func(string) string) (Snapshot, error) {
	snap := Snapshot{Path: path, Where: where}
	fileCfg, err := Load(path)
	if err != nil {
		return snap, err
	}
	envCfg, err := FromEnv(getenv)
	if err != nil {
		return snap, err
	}

	settings := MergeSettings(DefaultSettings(), fileCfg.Filter, envCfg.Filter)
	settings, err = NormalizeSettings(settings)
	if err != nil {
		return snap, err
	}
	ui := MergeUI(UISettingsFromOptions(opts.Defaults()), fileCfg.UI, envCfg.UI)
	ui, err = NormalizeUI(ui)
	if err != nil {
		return snap, err
	}
	snap.Settings = settings
	snap.UI = ui
	return snap, nil
}
