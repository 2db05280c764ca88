package calendar

import (
	"context"
	"sort"
	"strings"

	"petcare-plus/internal/platform/apperr"
	"petcare-plus/internal/platform/logger"
)

// Exporter junta los eventos de todas las fuentes de una mascota y los serializa.
type Exporter struct {
	sources []EventSource
	ser     *Serializer
	log     logger.Logger
}

func NewExporter(ser *Serializer, log logger.Logger, sources ...EventSource) *Exporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Exporter{sources: sources, ser: ser, log: log}
}

// Events devuelve los eventos de la mascota sin duplicar ids, ordenados por fecha e id.
func (e *Exporter) Events(ctx context.Context, petID string) ([]Event, error) {
	if strings.TrimSpace(petID) == "" {
		return nil, apperr.Validation("pet_id", "is required")
	}

	seen := map[string]bool{}
	out := make([]Event, 0)
	for _, src := range e.sources {
		items, err := src.CalendarEvents(ctx, petID)
		if err != nil {
			return nil, err
		}
		for _, ev := range items {
			if ev.ID != "" && seen[ev.ID] {
				continue
			}
			seen[ev.ID] = true
			out = append(out, ev)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ExportPet serializa y entrega el .ics por el Downloader recibido.
func (e *Exporter) ExportPet(ctx context.Context, petID string, dl Downloader) (int, error) {
	events, err := e.Events(ctx, petID)
	if err != nil {
		return 0, err
	}
	data := e.ser.Serialize(events)
	if err := dl.Download(FileName, MIMEType, data); err != nil {
		return 0, err
	}
	e.log.Info("calendar exported", map[string]any{"pet_id": petID, "events": len(events)})
	return len(events), nil
}
