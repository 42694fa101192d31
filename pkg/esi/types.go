package esi

import "time"

// ServerStatus is the payload of get_status.
type ServerStatus struct {
	Players       int       `json:"players"              yaml:"players"`
	ServerVersion string    `json:"server_version"       yaml:"server_version"`
	StartTime     time.Time `json:"start_time"           yaml:"start_time"`
	VIP           bool      `json:"vip,omitempty"        yaml:"vip,omitempty"`
}

// Alliance is the payload of get_alliances_alliance_id.
type Alliance struct {
	Name                  string    `json:"name"                              yaml:"name"`
	Ticker                string    `json:"ticker"                            yaml:"ticker"`
	CreatorID             int64     `json:"creator_id"                        yaml:"creator_id"`
	CreatorCorporationID  int64     `json:"creator_corporation_id"            yaml:"creator_corporation_id"`
	ExecutorCorporationID int64     `json:"executor_corporation_id,omitempty" yaml:"executor_corporation_id,omitempty"`
	FactionID             int64     `json:"faction_id,omitempty"              yaml:"faction_id,omitempty"`
	DateFounded           time.Time `json:"date_founded"                      yaml:"date_founded"`
}

// UniverseName is one element of the post_universe_names payload.
type UniverseName struct {
	ID       int64  `json:"id"       yaml:"id"`
	Name     string `json:"name"     yaml:"name"`
	Category string `json:"category" yaml:"category"`
}
