// Package airctrl implements the device transport by shelling out to the
// aioairctrl command line tool, which owns the encrypted CoAP session,
// key exchange and observe subscription. This bridge never speaks CoAP
// itself; it only parses the tool's JSON output and feeds it commands.
package airctrl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"sort"
	"strings"

	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
)

const DefaultBinary = "aioairctrl"

type Client struct {
	log  *slog.Logger
	bin  string
	host string
}

func NewClient(log *slog.Logger, bin, host string) *Client {
	if bin == "" {
		bin = DefaultBinary
	}
	return &Client{log: log, bin: bin, host: host}
}

// Status runs a one-shot status fetch.
func (c *Client) Status(ctx context.Context) (model.Snapshot, error) {
	cmd := exec.CommandContext(ctx, c.bin, "--host", c.host, "status", "--json")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("airctrl status: %w", err)
	}
	snap, err := parseSnapshot(out)
	if err != nil {
		return nil, fmt.Errorf("airctrl status: %w", err)
	}
	return snap, nil
}

// Observe runs the tool in observe mode and forwards each status document
// it prints. The channel is closed when the session ends.
func (c *Client) Observe(ctx context.Context, snapshots chan<- model.Snapshot) error {
	defer close(snapshots)

	cmd := exec.CommandContext(ctx, c.bin, "--host", c.host, "status", "--json", "--observe")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("airctrl observe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("airctrl observe: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		snap, err := parseSnapshot([]byte(line))
		if err != nil {
			c.log.Debug("skipping unparseable observe line", "err", err)
			continue
		}
		select {
		case snapshots <- snap:
		case <-ctx.Done():
			_ = cmd.Wait()
			return ctx.Err()
		}
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("airctrl observe ended: %w", err)
	}
	return nil
}

// SetControlValues forwards a command as K=V arguments. Fields are sorted
// for deterministic invocations.
func (c *Client) SetControlValues(ctx context.Context, command model.Command) error {
	args := []string{"--host", c.host, "set"}
	fields := make([]string, 0, len(command))
	for f := range command {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	for _, f := range fields {
		args = append(args, fmt.Sprintf("%s=%d", f, command[model.Field(f)]))
	}

	cmd := exec.CommandContext(ctx, c.bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("airctrl set: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Reconnect probes the device with a fresh status invocation. Each tool run
// performs its own key exchange, so there is no session of ours to rebuild;
// the probe just confirms the device answers again.
func (c *Client) Reconnect(ctx context.Context) error {
	_, err := c.Status(ctx)
	return err
}

// Shutdown is a no-op: every invocation is already self-contained.
func (c *Client) Shutdown(ctx context.Context) error { return nil }

// parseSnapshot keeps the integer-valued fields of a status document.
// String fields (device name, model, firmware) and floats with fractional
// parts are not part of the control schema and are dropped.
func parseSnapshot(data []byte) (model.Snapshot, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	snap := make(model.Snapshot, len(raw))
	for k, v := range raw {
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			continue
		}
		snap[model.Field(k)] = int64(f)
	}
	return snap, nil
}
