// Package errors provides structured error handling with machine-readable codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Character errors
	CodeCharacterEmptyID          Code = "CHARACTER_EMPTY_ID"
	CodeCharacterEmptyName        Code = "CHARACTER_EMPTY_NAME"
	CodeCharacterMissingAttribute Code = "CHARACTER_MISSING_ATTRIBUTE"
	CodeCharacterInvalidSkill     Code = "CHARACTER_INVALID_SKILL"
	CodeCharacterBondCapReached   Code = "CHARACTER_BOND_CAP_REACHED"
	CodeCharacterBondDuplicate    Code = "CHARACTER_BOND_DUPLICATE"

	// Economy errors
	CodeEconomyEmptyReason  Code = "ECONOMY_EMPTY_REASON"
	CodeEconomyVoidRange    Code = "ECONOMY_VOID_OUT_OF_RANGE"
	CodeEconomyUnknownActor Code = "ECONOMY_UNKNOWN_ACTOR"

	// Clock errors
	CodeClockEmptyName   Code = "CLOCK_EMPTY_NAME"
	CodeClockDuplicate   Code = "CLOCK_DUPLICATE_NAME"
	CodeClockUnknown     Code = "CLOCK_UNKNOWN_NAME"
	CodeClockInvalidMax  Code = "CLOCK_INVALID_MAX"
	CodeClockOutOfRange  Code = "CLOCK_OUT_OF_RANGE"
	CodeClockEmptyReason Code = "CLOCK_EMPTY_REASON"

	// Roster errors
	CodeEnemyUnknown        Code = "ENEMY_UNKNOWN"
	CodeEnemyInvalidTier    Code = "ENEMY_INVALID_TIER"
	CodeEnemyInvalidCount   Code = "ENEMY_INVALID_COUNT"
	CodeEnemyInvalidRemoval Code = "ENEMY_INVALID_REMOVAL_KIND"
	CodeEnemyEmptyReason    Code = "ENEMY_EMPTY_REASON"

	// Round errors
	CodeRoundPhase            Code = "ROUND_INVALID_PHASE"
	CodeRoundDuplicateMain    Code = "ROUND_DUPLICATE_MAIN_ACTION"
	CodeRoundUnknownActor     Code = "ROUND_UNKNOWN_ACTOR"
	CodeRoundUnknownAttribute Code = "ROUND_UNKNOWN_ATTRIBUTE"
	CodeRoundAborted          Code = "ROUND_ABORTED"
	CodeRoundSealed           Code = "ROUND_SEALED"
	CodeRoundEmptyDeclaring   Code = "ROUND_NO_DECLARATIONS"

	// Scenario errors
	CodeScenarioInvalid Code = "SCENARIO_INVALID"

	// Storage errors
	CodeStorageAppend Code = "STORAGE_APPEND_FAILED"
)
