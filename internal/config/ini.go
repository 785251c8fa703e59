package config

import (
	"strings"

	"gopkg.in/ini.v1"
)

const iniSection = "Settings"

// Load reads a Snapshot from an ini file at path, falling back to Default()
// for any key that is absent — the same "value or default" contract as the
// original's QSettings::value(key, default). A missing file is not an
// error: it yields Default().
func Load(path string) (Snapshot, error) {
	cfg := Default()
	f, err := ini.LooseLoad(path)
	if err != nil {
		return cfg, err
	}
	sec := f.Section(iniSection)

	cfg.APIAddress = sec.Key("api_address").MustString(cfg.APIAddress)
	cfg.APIKey = sec.Key("api_key").MustString(cfg.APIKey)
	cfg.ModelName = sec.Key("model_name").MustString(cfg.ModelName)
	cfg.Port = sec.Key("port").MustInt(cfg.Port)
	cfg.SystemPrompt = sec.Key("system_prompt").MustString(cfg.SystemPrompt)
	cfg.PrePrompt = sec.Key("pre_prompt").MustString(cfg.PrePrompt)
	cfg.ContextNum = sec.Key("context_num").MustInt(cfg.ContextNum)
	cfg.Temperature = sec.Key("temperature").MustFloat64(cfg.Temperature)
	cfg.MaxThreads = sec.Key("max_threads").MustInt(cfg.MaxThreads)
	cfg.Language = sec.Key("language").MustInt(cfg.Language)
	cfg.EnableGlossary = sec.Key("enable_glossary").MustBool(cfg.EnableGlossary)
	cfg.GlossaryPath = sec.Key("glossary_path").MustString(cfg.GlossaryPath)
	if raw := sec.Key("glossary_history").String(); raw != "" {
		cfg.GlossaryHistory = strings.Split(raw, ";")
	}

	return cfg, nil
}

// Save writes cfg to path as an ini file under the "[Settings]" section,
// mirroring ConfigManager::saveConfig's QSettings persistence.
func Save(path string, cfg Snapshot) error {
	f := ini.Empty()
	sec, err := f.NewSection(iniSection)
	if err != nil {
		return err
	}
	sec.Key("api_address").SetValue(cfg.APIAddress)
	sec.Key("api_key").SetValue(cfg.APIKey)
	sec.Key("model_name").SetValue(cfg.ModelName)
	sec.Key("port").SetValue(itoa(cfg.Port))
	sec.Key("system_prompt").SetValue(cfg.SystemPrompt)
	sec.Key("pre_prompt").SetValue(cfg.PrePrompt)
	sec.Key("context_num").SetValue(itoa(cfg.ContextNum))
	sec.Key("temperature").SetValue(ftoa(cfg.Temperature))
	sec.Key("max_threads").SetValue(itoa(cfg.MaxThreads))
	sec.Key("language").SetValue(itoa(cfg.Language))
	sec.Key("enable_glossary").SetValue(btoa(cfg.EnableGlossary))
	sec.Key("glossary_path").SetValue(cfg.GlossaryPath)
	sec.Key("glossary_history").SetValue(strings.Join(cfg.GlossaryHistory, ";"))

	return f.SaveTo(path)
}
