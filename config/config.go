package config

import (
	"encoding/json"
	"os"
	"sync"

	"dealdesk/valuation"
)

// Config is the persisted application configuration. The discount policy and
// high-potential basis are deliberately explicit knobs: acquisition teams
// disagree on both, so neither is hard-coded.
type Config struct {
	UploadFolderPath    string  `json:"uploadFolderPath"`
	GeneratedFolderPath string  `json:"generatedFolderPath"`
	TemplatePath        string  `json:"templatePath"`
	DiscountPolicy      string  `json:"discountPolicy"`     // "flat" or "condition"
	FlatDiscountRate    float64 `json:"flatDiscountRate"`   // offer = ARV * rate
	HighPotentialBasis  string  `json:"highPotentialBasis"` // "arv" or "listing"
	HighPotentialRatio  float64 `json:"highPotentialRatio"`
	RenderPDF           bool    `json:"renderPDF"`
	BusinessName        string  `json:"businessName"`
	UserName            string  `json:"userName"`
	UserEmail           string  `json:"userEmail"`
}

var (
	cfg Config
	mu  sync.RWMutex
)

const configFilePath = "./dealdesk_config.json"

func applyDefaults(c *Config) {
	if c.UploadFolderPath == "" {
		c.UploadFolderPath = "uploads"
	}
	if c.GeneratedFolderPath == "" {
		c.GeneratedFolderPath = "generated_lois"
	}
	if c.DiscountPolicy == "" {
		c.DiscountPolicy = string(valuation.DiscountFlat)
	}
	if c.FlatDiscountRate == 0 {
		c.FlatDiscountRate = 0.60
	}
	if c.HighPotentialBasis == "" {
		c.HighPotentialBasis = string(valuation.BasisARV)
	}
	if c.HighPotentialRatio == 0 {
		c.HighPotentialRatio = 0.55
	}
}

// LoadConfig reads the config file, falling back to defaults when it does
// not exist yet.
func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	file, err := os.ReadFile(configFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			applyDefaults(&cfg)
			return cfg, nil
		}
		return Config{}, err
	}

	var tempCfg Config
	if err := json.Unmarshal(file, &tempCfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&tempCfg)
	cfg = tempCfg
	return cfg, nil
}

// SaveConfig persists and activates a new configuration.
func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	applyDefaults(&newCfg)

	file, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFilePath, file, 0644); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Policy converts the stored knobs into the calculator's policy object.
func (c Config) Policy() valuation.Policy {
	p := valuation.Policy{
		Discount:       valuation.DiscountPolicy(c.DiscountPolicy),
		FlatRate:       c.FlatDiscountRate,
		RepairRates:    valuation.DefaultRepairRates(),
		Potential:      valuation.Basis(c.HighPotentialBasis),
		PotentialRatio: c.HighPotentialRatio,
	}
	if p.Discount != valuation.DiscountByRepair {
		p.Discount = valuation.DiscountFlat
	}
	if p.Potential != valuation.BasisListing {
		p.Potential = valuation.BasisARV
	}
	return p
}
