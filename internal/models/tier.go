package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tier — уровень подписки. Значения упорядочены: Basic < Deluxe < Premium.
type Tier int

// Уровни подписки в порядке возрастания ранга.
const (
	TierBasic Tier = iota
	TierDeluxe
	TierPremium
)

var tierNames = [...]string{"Basic", "Deluxe", "Premium"}

// ParseTier разбирает название уровня без учёта регистра.
func ParseTier(s string) (Tier, error) {
	for i, name := range tierNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return Tier(i), nil
		}
	}
	return 0, NewValidationError("tier", fmt.Sprintf("unknown tier %q", s))
}

// Valid сообщает, входит ли значение в перечисление.
func (t Tier) Valid() bool {
	return t >= TierBasic && t <= TierPremium
}

// Rank возвращает позицию уровня в иерархии.
func (t Tier) Rank() int {
	return int(t)
}

func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// Prefix — первые две буквы названия в верхнем регистре, используется в трек-номерах.
func (t Tier) Prefix() string {
	return strings.ToUpper(t.String()[:2])
}

// MarshalJSON сериализует уровень его названием.
func (t Tier) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("models.Tier: invalid value %d", int(t))
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON принимает название уровня.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return NewValidationError("tier", "tier must be a string")
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
