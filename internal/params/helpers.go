package params

import (
	"strconv"

	"FXSentinel/internal/model"
	"FXSentinel/internal/risk"
)

// LoadRisk reads the multipliers, falling back to def for any value that is
// missing, unparseable or not positive.
func LoadRisk(s Store, def model.RiskParameters) model.RiskParameters {
	return model.RiskParameters{
		SLMultiplier: loadPositive(s, KeySLMultiplier, def.SLMultiplier),
		TPMultiplier: loadPositive(s, KeyTPMultiplier, def.TPMultiplier),
	}
}

// SaveRisk validates and stores both multipliers.
func SaveRisk(s Store, p model.RiskParameters) error {
	if err := risk.Validate(p); err != nil {
		return err
	}
	if err := s.Set(KeySLMultiplier, formatFloat(p.SLMultiplier)); err != nil {
		return err
	}
	return s.Set(KeyTPMultiplier, formatFloat(p.TPMultiplier))
}

// LoadPair returns the stored pair if known reports it valid, else def.
func LoadPair(s Store, def string, known func(string) bool) string {
	pair := s.Get(KeyPair, def)
	if known != nil && !known(pair) {
		return def
	}
	return pair
}

// SavePair stores the selected pair.
func SavePair(s Store, pair string) error {
	return s.Set(KeyPair, pair)
}

func loadPositive(s Store, key string, def float64) float64 {
	raw := s.Get(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
