package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/xatuke/screenshader/internal/params"
	"github.com/xatuke/screenshader/internal/runtimepath"
)

// Controller is the running compositor as seen by the control socket.
// Its methods are called from connection goroutines.
type Controller interface {
	ReloadShader()
	// SelectShader switches to the named shader or path. The returned
	// path is the file that will be loaded.
	SelectShader(name string) (string, error)
	Stop()
	Status() StatusData
	ParamsFile() string
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	ctl          Controller
	shuttingDown bool
	shutdownMu   sync.Mutex
	paramsMu     sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a server on the runtime socket path.
func NewServer(ctl Controller) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, ctl), nil
}

// NewServerAt creates a server listening on socketPath.
func NewServerAt(socketPath string, ctl Controller) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		ctl:        ctl,
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection serves one request per connection, JSON on a single line.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReloadShader:
		log.Println("IPC: Received RELOAD_SHADER command")
		s.ctl.ReloadShader()
		return ok(nil)
	case CommandStop:
		log.Println("IPC: Received STOP command")
		s.ctl.Stop()
		return ok(nil)
	case CommandGetStatus:
		return ok(s.ctl.Status())
	case CommandGetParams:
		return s.handleGetParams()
	case CommandSetParams:
		return s.handleSetParams(req.Payload)
	case CommandSelectShader:
		return s.handleSelectShader(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleGetParams() *Response {
	file := s.ctl.ParamsFile()
	ps, err := params.Read(file)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to read params: %v", err))
	}
	if ps == nil {
		ps = []params.Param{}
	}
	return ok(ParamsData{File: file, Params: ps})
}

func (s *Server) handleSetParams(payload json.RawMessage) *Response {
	var req SetParamsPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid set params payload: %v", err))
	}

	s.paramsMu.Lock()
	defer s.paramsMu.Unlock()

	file := s.ctl.ParamsFile()
	next := req.Params
	if !req.Replace {
		current, err := params.Read(file)
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to read params: %v", err))
		}
		next = params.Merge(current, req.Params)
	}
	if err := params.Write(file, next); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to write params: %v", err))
	}
	log.Printf("IPC: Wrote %d params to %s", len(next), file)
	if next == nil {
		next = []params.Param{}
	}
	return ok(ParamsData{File: file, Params: next})
}

func (s *Server) handleSelectShader(payload json.RawMessage) *Response {
	var req SelectShaderPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid select payload: %v", err))
	}
	if strings.TrimSpace(req.Shader) == "" {
		return NewErrorResponse("shader is required")
	}
	path, err := s.ctl.SelectShader(req.Shader)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to select shader: %v", err))
	}
	log.Printf("IPC: Selected shader %s", path)
	return ok(SelectShaderPayload{Shader: path})
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop closes the listener and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.wg.Wait()
	}
	os.Remove(s.socketPath)
}
