// Package homeassistant publishes the derived climate state to a Home
// Assistant instance over its REST API.
package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
)

type Client struct {
	entityID   string
	friendly   string
	httpClient *http.Client
	mu         sync.RWMutex
	url        string
	token      string
}

// NewClient builds a publisher for the given entity, e.g.
// "climate.bedroom_heater". Configure must be called before publishing.
func NewClient(entityID, friendlyName string) *Client {
	return &Client{
		entityID:   entityID,
		friendly:   friendlyName,
		httpClient: &http.Client{},
	}
}

func (c *Client) Configure(url, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.url = strings.TrimSuffix(url, "/")
	c.token = token
}

func (c *Client) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.url != "" && c.token != ""
}

// PublishState posts the state to /api/states/<entity_id>. Attribute names
// follow the climate entity conventions so dashboards and automations can
// consume them directly.
func (c *Client) PublishState(ctx context.Context, state model.ClimateState) error {
	c.mu.RLock()
	url := c.url
	token := c.token
	c.mu.RUnlock()

	if url == "" || token == "" {
		return fmt.Errorf("Home Assistant not configured")
	}

	attributes := map[string]any{
		"hvac_action":        state.HVACAction,
		"oscillating":        state.Oscillating,
		"min_temp":           model.MinTemp,
		"max_temp":           model.MaxTemp,
		"temperature_unit":   "°C",
		"degraded":           state.Degraded,
		"supported_features": "target_temperature,preset_mode,swing_mode",
	}
	if c.friendly != "" {
		attributes["friendly_name"] = c.friendly
	}
	if state.Preset != "" {
		attributes["preset_mode"] = state.Preset
	}
	if state.CurrentTemperature != nil {
		attributes["current_temperature"] = *state.CurrentTemperature
	}
	if state.TargetTemperature != nil {
		attributes["temperature"] = *state.TargetTemperature
	}
	if state.FanSpeed != nil {
		attributes["fan_speed"] = *state.FanSpeed
	}

	payload := map[string]any{
		"state":      string(state.HVACMode),
		"attributes": attributes,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/states/%s", url, c.entityID), bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HA API error: %d", resp.StatusCode)
	}
	return nil
}
