package reminders

import (
	"context"

	"petcare-plus/internal/platform/logger"
)

// LoggerCue deja el aviso en el log; el cliente real reproduce el sonido.
type LoggerCue struct {
	Log logger.Logger
}

func (c LoggerCue) PlayCue(_ context.Context, r Reminder) error {
	if c.Log == nil {
		return nil
	}
	c.Log.Info("reminder due", map[string]any{
		"reminder_id": r.ID,
		"pet_id":      r.PetID,
		"type":        string(r.Kind),
	})
	return nil
}
