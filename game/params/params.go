// Package params collects every tunable numeric constant of the simulation
// in one place. The engine never hard-codes these values inline; balance
// work happens here.
package params

// Calendar.
const (
	DaysPerMonth  = 30
	MonthsPerYear = 12
)

// Relations and diplomacy.
const (
	RelationMin     = 0
	RelationMax     = 110
	AllyThreshold   = 100 // relation required before an alliance is even considered
	AllySentinel    = 999 // relation value meaning "allied"
	RelationDecay   = 0.5 // monthly drift toward neutral
	RelationNeutral = 50

	GoodwillGold         = 20  // gold transferred by a goodwill gift
	GoodwillRelationGain = 5
	RejectionRelationHit = 3   // relation lost when a proposal is refused
	AllianceMaxPartners  = 2   // targets with this many allies refuse outright
	AllianceDistanceMax  = 12.0
)

// Loyalty, contribution, prestige.
const (
	LoyaltyMin          = 0
	LoyaltyMax          = 110
	LoyaltyMonthlyDecay = 1
	BonusLoyaltyGain    = 10 // loyalty restored by one bonus grant
	BonusGoldCost       = 10
	LowLoyaltyThreshold = 70 // below this a vassal is considered restless
)

// Monthly upkeep.
const (
	MonthlyWageGold     = 5   // paid to every garrisoned character
	MonthlyActionPoints = 100 // restored at month start
	ActionPointsMax     = 300
	IncapacitationDays  = 15 // bed rest after losing every soldier
)

// Action gauges.
const (
	GaugeMax = 100

	// Gauge step = base + stat/divisor, computed per character per tick.
	PersonalGaugeBase    = 2.0
	PersonalGaugeStatDiv = 40.0 // uses the character's best stat
	StrategyGaugeBase    = 1.0
	StrategyGaugeStatDiv = 50.0 // uses intelligence
)

// Soldiers.
const (
	SoldierSlots     = 15
	RowCount         = 3
	RowSize          = 5
	SoldierHPBase    = 10.0
	SoldierHPPerLvl  = 2.0
	SoldierMaxLevel  = 30
	ExpPerLevel      = 100
	HireSoldierLevel = 1

	// Passive daily regeneration fractions of max HP.
	RegenGarrison = 0.05
	RegenMoving   = 0.02
	RegenStarving = 0.005
	// Each consecutive battle multiplies regen by this factor.
	RegenFatigueFactor = 0.8

	// Training.
	TrainExpBase       = 8.0
	TrainDrillmasterMul = 1.5
	TrainKnightMul      = 1.25
)

// Economy.
const (
	DevelopBaseRate   = 4.0
	FortifyBaseRate   = 6.0
	FortifyCatchUpMul = 1.5 // bonus while strength is below the development level
	InvestAmount      = 50

	// Income cap growth per invested tier (diminishing returns).
	InvestTierSize  = 1000
	InvestTierCount = 7

	StarvationFoodLevel = 0 // castle food income at or below this starves deployed forces
)

// Action costs (gold / action points / castle gold).
const (
	CostDevelopAP      = 20
	CostFortifyAP      = 20
	CostInvestAP       = 15
	CostHireSoldierAP  = 10
	CostHireSoldierGold = 2
	CostTrainAP        = 15
	CostGoodwillAP     = 25
	CostAllianceAP     = 40
	CostBreakAP        = 10
	CostHireVassalAP   = 30
	CostHireVassalGold = 10
	CostFireVassalAP   = 10
	CostMoveVassalAP   = 20
	CostBonusAP        = 5
	CostDeployAP       = 30
	CostTransportAP    = 25
	CostRebelAP        = 50
	CostSeizeAP        = 50
	CostResignAP       = 0
)

// AI decision making.
const (
	ObjectiveContinuityWeight = 5.0 // same objective kind as last quarter
	ObjectiveQuarterMonths    = 3

	HireSearchIntDiv  = 10 // pool size = max(1, ceil(int/div) - HireSearchBias)
	HireSearchBias    = 5
	FireVassalMax     = 3
	DeficitGoldFloor  = 0

	SafeRelationMin   = 70 // castle counts as safe when min neighbor relation >= this
	DangerRelationMax = 30 // castle counts as endangered at or below this

	DeployPowerRatioMin = 1.2 // attack only when local power exceeds target's by this
	DeployBaseChance    = 0.3
	HateRelationPivot   = 40.0

	DangerRange = 4.0 // enemy force within this distance marks a castle in danger

	// Betrayal probability = (pivot - loyalty + ambition/2) * scale, clamped to [0,1].
	BetrayalLoyaltyPivot = 90.0
	BetrayalAmbitionDiv  = 2.0
	BetrayalScale        = 0.01
	BetrayalFealtyShield = 80 // fealty at or above this halves the probability
)

// Battle.
const (
	TacticSwapCost  = 33.0
	TacticRestCost  = 66.0
	RetreatGaugeMax = 100.0

	SubRoundsMin = 5
	SubRoundsMax = 10

	DamageNoise        = 0.2
	DamageLevelDiv     = 10.0
	StatDiffDiv        = 100.0
	IntRampTicks       = 5
	TerrainAdjStep     = 0.1
	CastleDefenseDiv   = 200.0
	TerritoryBonus     = 0.1
	ExpeditionPenalty  = 0.15
	AmphibiousBonus    = 0.3
	TraitTerrainBonus  = 0.2

	PermanentDeathChance = 0.45

	RestHealFraction     = 0.15
	ReserveRegenFraction = 0.03

	TacticsGaugeDiv = 25.0 // gauge growth = (str + 2*int) / div
	// Retreat step = (base + enemyInt - ownInt) / div: positive for the
	// outsmarted side, negative once own intelligence leads by more than
	// the base.
	RetreatGaugeBase = 20.0
	RetreatGaugeDiv  = 20.0

	FrontRowCriticalHP = 0.25 // front row counts as critical below this HP fraction

	// Hard cap: mutual regeneration must not stall a battle forever.
	MaxBattleTicks = 500
)

// Post-battle.
const (
	RecoveryWinRate      = 0.6
	RecoveryLoseRate     = 0.3
	RecoveryIntDiv       = 400.0
	PrestigeTransferFrac = 1.0 / 3.0
	PrestigeFlatBonus    = 5
	ContributionWinner   = 50
	ContributionLoser    = 20

	SiegeStrengthDamage  = 0.2 // fraction of castle strength lost when defender loses
	FieldIncomeDamage    = 0.1 // fraction of town income lost where a battle raged
	ConsecutiveBattleCap = 5
)

// Castles.
const (
	CastleMaxMembers     = 8
	NeighborDistance     = 8.0
	CastleStrengthFloor  = 0
	ReinforceRecallRatio = 0.8 // recall a force when defenders are this badly outmatched
)
