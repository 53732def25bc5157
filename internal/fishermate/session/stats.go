package session

import "time"

// Stats summarizes a channel's sessions.
type Stats struct {
	Total     int            `json:"total_sessions"`
	Active    int            `json:"active_sessions"`
	Messages  int            `json:"total_messages"`
	Average   float64        `json:"average_messages_per_user"`
	Languages map[string]int `json:"languages"`
	Nav       map[Nav]int    `json:"menu_usage,omitempty"`
}

// Summarize computes Stats over sessions; a session is active when its
// last activity is within window of now.
func Summarize(sessions []*Session, now time.Time, window time.Duration) Stats {
	st := Stats{Languages: make(map[string]int)}
	for _, s := range sessions {
		st.Total++
		st.Messages += s.MessageCount
		st.Languages[s.Language]++
		if now.Sub(s.LastActivity) <= window {
			st.Active++
		}
		if s.Nav != "" {
			if st.Nav == nil {
				st.Nav = make(map[Nav]int)
			}
			st.Nav[s.Nav]++
		}
	}
	if st.Total > 0 {
		st.Average = float64(st.Messages) / float64(st.Total)
	}
	return st
}
