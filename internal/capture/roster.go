package capture

// Player is a roster member. The engine refers to players by ID only; the
// name is used for events and spectator views.
type Player struct {
	ID   string
	Name string
}

// Roster is one team's fixed line-up for a match.
type Roster struct {
	ID      string
	Name    string
	Players []Player
}

// Has reports whether playerID is a member of the roster.
func (r Roster) Has(playerID string) bool {
	for _, p := range r.Players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}
