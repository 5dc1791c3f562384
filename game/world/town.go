package world

import "github.com/kurohane/tenka/game/params"

// Town generates income for the castle it belongs to. TotalInvestment only
// grows, except for battle damage, and feeds the income-cap tier curve.
type Town struct {
	ID       ID  `json:"id"`
	Pos      Pos `json:"pos"`
	CastleID ID  `json:"castle_id"`

	GoldIncome    float64 `json:"gold_income"`
	FoodIncome    float64 `json:"food_income"`
	GoldIncomeMax float64 `json:"gold_income_max"`
	FoodIncomeMax float64 `json:"food_income_max"`

	TotalInvestment int `json:"total_investment"`
	DevLevel        int `json:"dev_level"`
}

// Invest accumulates investment and recomputes the income caps through the
// tier curve.
func (t *Town) Invest(amount int) {
	t.TotalInvestment += amount
	mult := InvestmentMultiplier(t.TotalInvestment)
	t.GoldIncomeMax = baseGoldIncomeMax * mult
	t.FoodIncomeMax = baseFoodIncomeMax * mult
	t.DevLevel = t.TotalInvestment / params.InvestTierSize
}

const (
	baseGoldIncomeMax = 30.0
	baseFoodIncomeMax = 40.0
)

// InvestmentMultiplier maps total investment to an income-cap multiplier
// with diminishing returns above each tier boundary. The first tier is
// worth a full +50%, each later tier adds progressively less.
func InvestmentMultiplier(invested int) float64 {
	mult := 1.0
	for tier := 1; tier <= params.InvestTierCount; tier++ {
		if invested < tier*params.InvestTierSize {
			break
		}
		mult += 0.5 / float64(tier)
	}
	return mult
}

// AddGoldIncome raises gold income, capped.
func (t *Town) AddGoldIncome(delta float64) {
	t.GoldIncome += delta
	if t.GoldIncome > t.GoldIncomeMax {
		t.GoldIncome = t.GoldIncomeMax
	}
	if t.GoldIncome < 0 {
		t.GoldIncome = 0
	}
}

// AddFoodIncome raises food income, capped.
func (t *Town) AddFoodIncome(delta float64) {
	t.FoodIncome += delta
	if t.FoodIncome > t.FoodIncomeMax {
		t.FoodIncome = t.FoodIncomeMax
	}
	if t.FoodIncome < 0 {
		t.FoodIncome = 0
	}
}

// BattleDamage scars the town: income drops by the given fraction. This is
// the one path where investment effects regress.
func (t *Town) BattleDamage(frac float64) {
	t.GoldIncome *= 1 - frac
	t.FoodIncome *= 1 - frac
	if t.GoldIncome < 0 {
		t.GoldIncome = 0
	}
	if t.FoodIncome < 0 {
		t.FoodIncome = 0
	}
}
