package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
	"github.com/mrverrall/philips-heater-coap/internal/domain/service"
	"github.com/mrverrall/philips-heater-coap/internal/ports"
)

const defaultHistoryLimit = 100

type HeaterHandler struct {
	log      *slog.Logger
	heater   *service.HeaterService
	readings ports.ReadingStore
}

func NewHeaterHandler(log *slog.Logger, heater *service.HeaterService, readings ports.ReadingStore) *HeaterHandler {
	return &HeaterHandler{log: log, heater: heater, readings: readings}
}

func (h *HeaterHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.heater.State())
}

// GetSnapshot exposes the raw field values, mainly for debugging new
// firmware codes.
func (h *HeaterHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.heater.Snapshot())
}

func (h *HeaterHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.readings == nil {
		http.Error(w, "history not enabled", http.StatusNotFound)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 10000 {
			http.Error(w, "invalid limit, must be in [1;10000]", http.StatusBadRequest)
			return
		}
		limit = v
	}

	readings, err := h.readings.Recent(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if readings == nil {
		readings = []model.Reading{}
	}
	writeJSON(w, http.StatusOK, readings)
}

func (h *HeaterHandler) SetHVACMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode model.HVACMode `json:"mode"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.command(w, r, func() error {
		return h.heater.SetHVACMode(r.Context(), req.Mode)
	})
}

func (h *HeaterHandler) SetPreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Preset model.Preset `json:"preset"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.command(w, r, func() error {
		return h.heater.SetPreset(r.Context(), req.Preset)
	})
}

func (h *HeaterHandler) SetOscillation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		On bool `json:"on"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.command(w, r, func() error {
		return h.heater.SetOscillation(r.Context(), req.On)
	})
}

func (h *HeaterHandler) SetTargetTemperature(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Temperature float64 `json:"temperature"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.command(w, r, func() error {
		return h.heater.SetTargetTemperature(r.Context(), req.Temperature)
	})
}

func (h *HeaterHandler) SetPower(w http.ResponseWriter, r *http.Request) {
	var req struct {
		On bool `json:"on"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.command(w, r, func() error {
		if req.On {
			return h.heater.TurnOn(r.Context())
		}
		return h.heater.TurnOff(r.Context())
	})
}

// command runs the write, maps validation errors to 422 and transport
// failures to 502, and returns the resulting state on success.
func (h *HeaterHandler) command(w http.ResponseWriter, r *http.Request, fn func() error) {
	if err := fn(); err != nil {
		switch {
		case errors.Is(err, model.ErrUnknownPreset),
			errors.Is(err, model.ErrUnknownHVACMode),
			errors.Is(err, model.ErrTemperatureRange):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			h.log.Error("device command failed", "err", err)
			http.Error(w, err.Error(), http.StatusBadGateway)
		}
		return
	}
	writeJSON(w, http.StatusOK, h.heater.State())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
