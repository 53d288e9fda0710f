package domain

import "encoding/json"

// Signaling payloads are opaque to the server: offers, answers and ICE
// candidates are forwarded verbatim as raw JSON, never parsed.

// CallerInfo identifies the originator of a call offer.
type CallerInfo struct {
	ConnID ConnID `json:"connectionId"`
	UserID UserID `json:"userId"`
	Name   string `json:"name"`
	Icon   string `json:"icon"`
}

// CallOffer is forwarded to the target connection of a call-offer event.
type CallOffer struct {
	Offer  json.RawMessage `json:"offer"`
	RoomID RoomID          `json:"roomId"`
	From   CallerInfo      `json:"from"`
}

// CallAnswer is forwarded to the target connection of a call-answer event.
type CallAnswer struct {
	Answer json.RawMessage `json:"answer"`
	From   ConnID          `json:"from"`
}

// CallCandidate is forwarded to the target connection of a call-ice-candidate event.
type CallCandidate struct {
	Candidate json.RawMessage `json:"candidate"`
	From      ConnID          `json:"from"`
}

// CallEnd announces to the target that the sender tore the call down.
type CallEnd struct {
	From ConnID `json:"from"`
}
