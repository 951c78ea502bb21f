// ABOUTME: TUI update helpers for the server
// ABOUTME: Collects watcher and stage state into a ServerStatus
package server

import "sort"

// status snapshots the server for display
func (s *Server) status() ServerStatus {
	s.clientsMu.RLock()
	clients := make([]ClientInfo, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, ClientInfo{
			Name:    c.Name,
			ID:      c.ID,
			Dropped: c.dropped.Load(),
		})
	}
	s.clientsMu.RUnlock()
	sort.Slice(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })

	title, artist, _ := s.stage.Metadata()
	track := title
	if artist != "" {
		track = artist + " - " + title
	}

	frame := s.stage.Latest()
	stats := s.stage.Stats()

	return ServerStatus{
		Name:         s.config.Name,
		Port:         s.config.Port,
		Clients:      clients,
		Track:        track,
		Paused:       s.stage.Paused(),
		Dancers:      len(frame.Dancers),
		Formation:    frame.Formation,
		SyncMode:     frame.SyncMode,
		SyncMove:     frame.SyncMove,
		Ticks:        stats.Ticks,
		Frozen:       stats.Frozen,
		AudioDropped: stats.AudioDropped,
		FramesSent:   s.sent.Load(),
	}
}

// updateTUI sends current server state to the TUI
func (s *Server) updateTUI() {
	if s.tui == nil {
		return
	}
	s.tui.Update(s.status())
}
