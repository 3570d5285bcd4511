// Package registry tracks which team each connected session is viewing and
// the single operator-driven player highlight. It holds no transport state,
// so the mapping can be exercised without a live connection. Not safe for
// concurrent use; the room's loop is the only caller.
package registry

type Registry struct {
	viewing     map[string]int64
	highlighted *int64
}

func New() *Registry {
	return &Registry{viewing: make(map[string]int64)}
}

// Subscribe registers a session with its default team view.
func (r *Registry) Subscribe(sessionID string, teamID int64) {
	r.viewing[sessionID] = teamID
}

func (r *Registry) Unsubscribe(sessionID string) {
	delete(r.viewing, sessionID)
}

// SelectTeam repoints a session's view. Returns false if the session was
// never subscribed.
func (r *Registry) SelectTeam(sessionID string, teamID int64) bool {
	if _, ok := r.viewing[sessionID]; !ok {
		return false
	}
	r.viewing[sessionID] = teamID
	return true
}

// Viewing reports the team a session currently targets.
func (r *Registry) Viewing(sessionID string) (int64, bool) {
	teamID, ok := r.viewing[sessionID]
	return teamID, ok
}

// Viewers returns the session ids whose view targets teamID.
func (r *Registry) Viewers(teamID int64) []string {
	var out []string
	for sid, tid := range r.viewing {
		if tid == teamID {
			out = append(out, sid)
		}
	}
	return out
}

func (r *Registry) Len() int { return len(r.viewing) }

// Highlight sets the process-wide highlighted player. There is exactly one
// highlight for the whole auction: the operator drives a single shared
// spectacle, so this is deliberately not per-session.
func (r *Registry) Highlight(playerID int64) {
	r.highlighted = &playerID
}

func (r *Registry) Highlighted() (int64, bool) {
	if r.highlighted == nil {
		return 0, false
	}
	return *r.highlighted, true
}

// ClearHighlight drops the highlight, used on reset.
func (r *Registry) ClearHighlight() {
	r.highlighted = nil
}
