package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/xatuke/screenshader/internal/params"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReloadShader CommandType = "RELOAD_SHADER"
	CommandStop         CommandType = "STOP"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandGetParams    CommandType = "GET_PARAMS"
	CommandSetParams    CommandType = "SET_PARAMS"
	CommandSelectShader CommandType = "SELECT_SHADER"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Shader         string `json:"shader"`
	ShaderError    string `json:"shader_error,omitempty"`
	ParamsFile     string `json:"params_file"`
	ParamCount     int    `json:"param_count"`
	Windows        int    `json:"windows"`
	Mapped         int    `json:"mapped"`
	Bound          int    `json:"bound"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Frames         uint64 `json:"frames"`
	ProtocolErrors uint64 `json:"protocol_errors"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	DaemonRunning  bool   `json:"daemon_running"`
}

// ParamsData represents the data returned by GET_PARAMS
type ParamsData struct {
	File   string         `json:"file"`
	Params []params.Param `json:"params"`
}

// SetParamsPayload represents the payload for SET_PARAMS. Without Replace
// the given values are merged into the current file.
type SetParamsPayload struct {
	Params  []params.Param `json:"params"`
	Replace bool           `json:"replace,omitempty"`
}

// SelectShaderPayload represents the payload for SELECT_SHADER
type SelectShaderPayload struct {
	Shader string `json:"shader"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
