package skill

import "fmt"

// ID identifies a main skill. The zero value is not a skill.
type ID int

const (
	None ID = iota
	ChargeStrengthS
	ChargeStrengthM
	ChargeStrengthSRange
	ChargeStrengthSStockpile
	BadDreams
	IngredientMagnetS
	IngredientMagnetSPlus
	IngredientDrawS
	CookingPowerUpS
	CookingPowerUpSMinus
	TastyChanceS
	ChargeEnergyS
	Moonlight
	EnergizingCheerS
	EnergyForEveryoneS
	LunarBlessing
	ExtraHelpfulS
	HelperBoost
	DreamShardMagnetS
	DreamShardMagnetSRange
	Metronome
	SkillCopy
	BerryBurst
	BerryBurstDisguise
	IngredientDrawSSuperLuck
	IngredientDrawSHyperCutter
	IngredientMagnetSPresent
	EnergizingCheerSNuzzle
	CookingAssistSBulkUp
	SkillCopyMimic
	SkillCopyTransform

	numIDs
)

var idKeys = [numIDs]string{
	None:                       "NONE",
	ChargeStrengthS:            "CHARGE_STRENGTH_S",
	ChargeStrengthM:            "CHARGE_STRENGTH_M",
	ChargeStrengthSRange:       "CHARGE_STRENGTH_S_RANGE",
	ChargeStrengthSStockpile:   "CHARGE_STRENGTH_S_STOCKPILE",
	BadDreams:                  "BAD_DREAMS",
	IngredientMagnetS:          "INGREDIENT_MAGNET_S",
	IngredientMagnetSPlus:      "INGREDIENT_MAGNET_S_PLUS",
	IngredientDrawS:            "INGREDIENT_DRAW_S",
	CookingPowerUpS:            "COOKING_POWER_UP_S",
	CookingPowerUpSMinus:       "COOKING_POWER_UP_S_MINUS",
	TastyChanceS:               "TASTY_CHANCE_S",
	ChargeEnergyS:              "CHARGE_ENERGY_S",
	Moonlight:                  "MOONLIGHT",
	EnergizingCheerS:           "ENERGIZING_CHEER_S",
	EnergyForEveryoneS:         "ENERGY_FOR_EVERYONE_S",
	LunarBlessing:              "LUNAR_BLESSING",
	ExtraHelpfulS:              "EXTRA_HELPFUL_S",
	HelperBoost:                "HELPER_BOOST",
	DreamShardMagnetS:          "DREAM_SHARD_MAGNET_S",
	DreamShardMagnetSRange:     "DREAM_SHARD_MAGNET_S_RANGE",
	Metronome:                  "METRONOME",
	SkillCopy:                  "SKILL_COPY",
	BerryBurst:                 "BERRY_BURST",
	BerryBurstDisguise:         "BERRY_BURST_DISGUISE",
	IngredientDrawSSuperLuck:   "INGREDIENT_DRAW_S_SUPER_LUCK",
	IngredientDrawSHyperCutter: "INGREDIENT_DRAW_S_HYPER_CUTTER",
	IngredientMagnetSPresent:   "INGREDIENT_MAGNET_S_PRESENT",
	EnergizingCheerSNuzzle:     "ENERGIZING_CHEER_S_NUZZLE",
	CookingAssistSBulkUp:       "COOKING_ASSIST_S_BULK_UP",
	SkillCopyMimic:             "SKILL_COPY_MIMIC",
	SkillCopyTransform:         "SKILL_COPY_TRANSFORM",
}

// IDs lists every real skill identity in declaration order.
func IDs() []ID {
	out := make([]ID, 0, numIDs-1)
	for id := None + 1; id < numIDs; id++ {
		out = append(out, id)
	}
	return out
}

// Key is the game data key of the skill.
func (id ID) Key() string {
	if id < 0 || id >= numIDs {
		return fmt.Sprintf("ID(%d)", int(id))
	}
	return idKeys[id]
}

func (id ID) String() string { return id.Key() }

// UnknownSkillError is returned for a game data key with no skill identity.
type UnknownSkillError struct {
	Key string
}

func (e *UnknownSkillError) Error() string {
	return fmt.Sprintf("unknown main skill %q", e.Key)
}

func ParseID(key string) (ID, error) {
	for id := None + 1; id < numIDs; id++ {
		if idKeys[id] == key {
			return id, nil
		}
	}
	return None, &UnknownSkillError{Key: key}
}
