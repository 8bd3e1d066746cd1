package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/xatuke/screenshader/internal/params"
	"github.com/xatuke/screenshader/internal/runtimepath"
)

// Client handles IPC communication with the compositor
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the runtime socket path.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to compositor: %w (is screenshader running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("compositor error: %s", resp.Error)
	}
	return &resp, nil
}

func (c *Client) call(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}
	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// ReloadShader asks the compositor to rebuild its post-process shader.
func (c *Client) ReloadShader() error {
	return c.call(CommandReloadShader, nil, nil)
}

// Stop asks the compositor to exit.
func (c *Client) Stop() error {
	return c.call(CommandStop, nil, nil)
}

// GetStatus retrieves compositor status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetParams reads the parameter file the compositor polls.
func (c *Client) GetParams() (*ParamsData, error) {
	var data ParamsData
	if err := c.call(CommandGetParams, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SetParams merges ps into the parameter file, or replaces it.
func (c *Client) SetParams(ps []params.Param, replace bool) (*ParamsData, error) {
	var data ParamsData
	if err := c.call(CommandSetParams, SetParamsPayload{Params: ps, Replace: replace}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SelectShader switches the post-process shader and returns the resolved path.
func (c *Client) SelectShader(shader string) (string, error) {
	var data SelectShaderPayload
	if err := c.call(CommandSelectShader, SelectShaderPayload{Shader: shader}, &data); err != nil {
		return "", err
	}
	return data.Shader, nil
}

// Ping checks if the compositor is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
