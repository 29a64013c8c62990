package config

import (
	"boostlend/core"
	"encoding/json"
	"fmt"

	"github.com/fox-one/pkg/config"
)

// Load load config file, BOOSTLEND_* env vars override file values.
// Values are decoded through their json form so addresses and decimals
// use their text unmarshalers.
func Load(cfgFile string, cfg *core.Config) error {
	config.AutomaticLoadEnv("BOOSTLEND")

	var raw map[string]interface{}
	if err := config.LoadYaml(cfgFile, &raw); err != nil {
		return err
	}

	data, err := json.Marshal(normalize(raw))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	defaultApp(&cfg.App)
	return nil
}

func defaultApp(app *core.App) {
	if app.AccrueSchedule == "" {
		app.AccrueSchedule = "@every 1m"
	}
}

// yaml decoders may produce map[interface{}]interface{}, which json rejects
func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = normalize(v)
		}
		return m
	case map[string]interface{}:
		for k, v := range x {
			x[k] = normalize(v)
		}
		return x
	case []interface{}:
		for i, v := range x {
			x[i] = normalize(v)
		}
		return x
	default:
		return v
	}
}
