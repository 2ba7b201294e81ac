package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Template renders DefaultConfig plus one example rule of each action.
func Template() (string, error) {
	cfg := DefaultConfig()
	cfg.Rules = []Rule{
		{
			Name:      "rename-user",
			Direction: DirectionRequest,
			URI:       "/user/profile",
			Action:    ActionReplace,
			Find:      "alice",
			Replace:   "bob",
		},
		{
			Name:      "mask-order-ids",
			Direction: DirectionResponse,
			URIRegex:  "^/order/",
			Action:    ActionReplaceRegex,
			Find:      `order-(\d+)`,
			Replace:   "order-0",
		},
		{
			Name:      "force-status",
			Direction: DirectionBoth,
			CmdIDs:    []int{300},
			Action:    ActionPatch,
			Patch:     `{"1":0}`,
		},
	}
	b, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("config template: %w", err)
	}
	return string(b), nil
}

func WriteTemplate(path string, overwrite bool) error {
	template, err := Template()
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}
