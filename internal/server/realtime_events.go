package server

import (
	"reelhub/internal/models"
	"reelhub/internal/notifications"
)

// publishVideoEvent announces a change on videoID to its subscribers and to
// the user the change concerns (0 for none).
func (s *Server) publishVideoEvent(eventType string, actorID, videoID, userID uint, payload map[string]any) {
	s.notifier.PublishAsync(notifications.Event{
		Type:    eventType,
		ActorID: actorID,
		VideoID: videoID,
		UserID:  userID,
		Payload: payload,
	})
}

func (s *Server) publishUserEvent(eventType string, actorID, userID uint, payload map[string]any) {
	s.notifier.PublishAsync(notifications.Event{
		Type:    eventType,
		ActorID: actorID,
		UserID:  userID,
		Payload: payload,
	})
}

func (s *Server) publishReaction(likeEvent, unlikeEvent string, actorID, videoID uint, res models.ToggleResult) {
	eventType := unlikeEvent
	if res.Active {
		eventType = likeEvent
	}
	s.publishVideoEvent(eventType, actorID, videoID, 0, map[string]any{
		"count": res.Count,
	})
}
