package models

// PlayerSlot is one squad slot of the focal team for a given match.
// Slots are numbered 1..16 (starting eleven plus bench); a row may carry
// fewer slots when the source appearance file is incomplete.
type PlayerSlot struct {
	Slot     int     `json:"slot"`
	PlayerID int     `json:"player_id"`
	Name     string  `json:"name"`
	Position string  `json:"position"`
	Rating   float64 `json:"rating"`
	Minutes  int     `json:"minutes"`
}

// PlayerAppearance is one row of the appearances source file: which
// player filled which slot in which match.
type PlayerAppearance struct {
	MatchID  int     `json:"match_id"`
	Slot     int     `json:"slot"`
	PlayerID int     `json:"player_id"`
	Name     string  `json:"name"`
	Position string  `json:"position"`
	Rating   float64 `json:"rating"`
	Minutes  int     `json:"minutes"`
}
