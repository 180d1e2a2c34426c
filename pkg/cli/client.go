package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JBibu/zerobyte/pkg/types"
	"github.com/JBibu/zerobyte/pkg/volume"
)

// Client talks to the volume service HTTP API.
type Client struct {
	base  string
	token string
	http  *http.Client
}

func NewClient(addr, token string) *Client {
	return &Client{
		base:  addr + "/api/v1",
		token: token,
		// Mount operations can take up to the service-side operation timeout;
		// leave headroom on top of it.
		http: &http.Client{Timeout: 45 * time.Second},
	}
}

// VolumeDetail mirrors the API's volume response shape.
type VolumeDetail struct {
	types.Volume
	State volume.StateInfo `json:"state"`
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
}

// message extracts the error message echo's HTTPError carries, which nests a
// {"message": "..."} object.
func (e apiEnvelope) message() string {
	if len(e.Message) == 0 {
		return ""
	}
	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(e.Message, &nested) == nil && nested.Message != "" {
		return nested.Message
	}
	var plain string
	if json.Unmarshal(e.Message, &plain) == nil {
		return plain
	}
	return ""
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("unexpected response from %s: %s", path, http.StatusText(resp.StatusCode))
	}

	if resp.StatusCode >= 400 {
		msg := envelope.Error
		if msg == "" {
			msg = envelope.message()
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s", msg)
	}

	if out == nil {
		return nil
	}
	if envelope.Data != nil {
		return json.Unmarshal(envelope.Data, out)
	}
	// Operation endpoints return the result without the envelope.
	return json.Unmarshal(data, out)
}

func (c *Client) ListVolumes(ctx context.Context) ([]VolumeDetail, error) {
	var volumes []VolumeDetail
	err := c.do(ctx, http.MethodGet, "/volumes", nil, &volumes)
	return volumes, err
}

func (c *Client) GetVolume(ctx context.Context, id string) (*VolumeDetail, error) {
	var vol VolumeDetail
	if err := c.do(ctx, http.MethodGet, "/volumes/"+id, nil, &vol); err != nil {
		return nil, err
	}
	return &vol, nil
}

func (c *Client) CreateVolume(ctx context.Context, name string, config types.VolumeConfig) (*VolumeDetail, error) {
	var vol VolumeDetail
	req := map[string]any{"name": name, "config": config}
	if err := c.do(ctx, http.MethodPost, "/volumes", req, &vol); err != nil {
		return nil, err
	}
	return &vol, nil
}

func (c *Client) DeleteVolume(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/volumes/"+id, nil, nil)
}

func (c *Client) MountVolume(ctx context.Context, id string) (types.OperationResult, error) {
	var result types.OperationResult
	err := c.do(ctx, http.MethodPost, "/volumes/"+id+"/mount", nil, &result)
	return result, err
}

func (c *Client) UnmountVolume(ctx context.Context, id string) (types.OperationResult, error) {
	var result types.OperationResult
	err := c.do(ctx, http.MethodPost, "/volumes/"+id+"/unmount", nil, &result)
	return result, err
}

func (c *Client) ProbeVolume(ctx context.Context, id string) (types.OperationResult, error) {
	var result types.OperationResult
	err := c.do(ctx, http.MethodPost, "/volumes/"+id+"/probe", nil, &result)
	return result, err
}

func (c *Client) CreateSecret(ctx context.Context, name, value string) (string, error) {
	var resp struct {
		Ref string `json:"ref"`
	}
	req := map[string]string{"name": name, "value": value}
	if err := c.do(ctx, http.MethodPost, "/secrets", req, &resp); err != nil {
		return "", err
	}
	return resp.Ref, nil
}

func (c *Client) DeleteSecret(ctx context.Context, ref string) error {
	return c.do(ctx, http.MethodDelete, "/secrets/"+ref, nil, nil)
}
