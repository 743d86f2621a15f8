package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
	"github.com/mrverrall/philips-heater-coap/internal/domain/service"
	"github.com/mrverrall/philips-heater-coap/internal/domain/translator"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Status(ctx context.Context) (model.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Snapshot), args.Error(1)
}

func (m *MockTransport) Observe(ctx context.Context, snapshots chan<- model.Snapshot) error {
	args := m.Called(ctx, snapshots)
	return args.Error(0)
}

func (m *MockTransport) SetControlValues(ctx context.Context, cmd model.Command) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

func (m *MockTransport) Reconnect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTransport) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newTestServer(t *testing.T, transport *MockTransport) (*httptest.Server, *service.HeaterService) {
	t.Helper()
	cal, err := translator.NewCalibration("")
	require.NoError(t, err)
	heater := service.NewHeaterService(slog.Default(), transport, nil, nil, cal)
	srv := httptest.NewServer(NewRouter(slog.Default(), heater, nil))
	t.Cleanup(srv.Close)
	return srv, heater
}

func TestGetState(t *testing.T) {
	srv, heater := newTestServer(t, new(MockTransport))
	heater.ApplySnapshot(context.Background(), model.Snapshot{
		model.FieldPower:            1,
		model.FieldMode:             3,
		model.FieldHeatingIntensity: 0,
		model.FieldHeatingStatus:    -16,
		model.FieldTemperature:      221,
	}, false)

	resp, err := http.Get(srv.URL + "/api/v1/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var state model.ClimateState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, model.HVACModeAuto, state.HVACMode)
	assert.Equal(t, model.HVACActionIdle, state.HVACAction)
	require.NotNil(t, state.CurrentTemperature)
	assert.InDelta(t, 22.1, *state.CurrentTemperature, 1e-9)
}

func TestSetTargetTemperature(t *testing.T) {
	transport := new(MockTransport)
	transport.On("SetControlValues", mock.Anything, model.Command{model.FieldTargetTemp: 23}).Return(nil)
	srv, _ := newTestServer(t, transport)

	resp, err := http.Post(srv.URL+"/api/v1/target-temperature", "application/json",
		strings.NewReader(`{"temperature": 23}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	transport.AssertExpectations(t)
}

func TestSetTargetTemperature_OutOfRange(t *testing.T) {
	transport := new(MockTransport)
	srv, _ := newTestServer(t, transport)

	for _, body := range []string{`{"temperature": 38}`, `{"temperature": 0}`} {
		resp, err := http.Post(srv.URL+"/api/v1/target-temperature", "application/json",
			strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "body %s", body)
	}
	transport.AssertNotCalled(t, "SetControlValues", mock.Anything, mock.Anything)
}

func TestSetPreset(t *testing.T) {
	transport := new(MockTransport)
	transport.On("SetControlValues", mock.Anything, model.Command{
		model.FieldMode:             3,
		model.FieldHeatingIntensity: 65,
		model.FieldPower:            1,
	}).Return(nil)
	srv, _ := newTestServer(t, transport)

	resp, err := http.Post(srv.URL+"/api/v1/preset", "application/json",
		strings.NewReader(`{"preset": "high"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// invalid preset name
	resp2, err := http.Post(srv.URL+"/api/v1/preset", "application/json",
		strings.NewReader(`{"preset": "turbo"}`))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp2.StatusCode)
}

func TestSetHVACMode_BadBody(t *testing.T) {
	srv, _ := newTestServer(t, new(MockTransport))

	resp, err := http.Post(srv.URL+"/api/v1/hvac-mode", "application/json",
		bytes.NewReader([]byte("{broken")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetHistory_Disabled(t *testing.T) {
	srv, _ := newTestServer(t, new(MockTransport))

	resp, err := http.Get(srv.URL + "/api/v1/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebsocketStream(t *testing.T) {
	srv, heater := newTestServer(t, new(MockTransport))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// initial state arrives on connect
	var state model.ClimateState
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&state))
	assert.Equal(t, model.HVACModeOff, state.HVACMode)

	// a snapshot change is pushed
	heater.ApplySnapshot(context.Background(), model.Snapshot{
		model.FieldPower:            1,
		model.FieldMode:             3,
		model.FieldHeatingIntensity: 66,
	}, false)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&state))
	assert.Equal(t, model.HVACModeHeat, state.HVACMode)
	assert.True(t, state.IsOn)
}
