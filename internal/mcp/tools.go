package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winbridge/internal/entities"
	"github.com/1broseidon/winbridge/internal/ipc"
	"github.com/1broseidon/winbridge/internal/platform"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.backend.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{
		Connected:              status.Connected,
		Platform:               status.Platform,
		WindowCount:            status.WindowCount,
		ViewCount:              status.ViewCount,
		Pending:                status.Pending,
		QuitOnAllWindowsClosed: status.QuitOnAllWindowsClosed,
	}, nil
}

func (s *Server) handleCreateWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CreateWindowInput) (*mcpsdk.CallToolResult, CreateWindowOutput, error) {
	if args.Width < 0 || args.Height < 0 {
		return nil, CreateWindowOutput{}, fmt.Errorf("width and height must not be negative")
	}
	opts := entities.WindowOptions{
		Width:  args.Width,
		Height: args.Height,
		X:      args.X,
		Y:      args.Y,
		Title:  args.Title,
		Show:   args.Show,
	}
	info, err := s.backend.CreateWindow(opts, args.URL)
	if err != nil {
		return nil, CreateWindowOutput{}, err
	}
	return nil, CreateWindowOutput{WindowID: info.ID}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows, err := s.backend.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	out := ListWindowsOutput{WindowIDs: make([]int, 0, len(windows))}
	for _, w := range windows {
		out.WindowIDs = append(out.WindowIDs, w.ID)
	}
	return nil, out, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CloseWindowInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.backend.CloseWindow(args.WindowID, args.Force); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true}, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.backend.FocusWindow(args.WindowID); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true}, nil
}

func (s *Server) handleGetWindowBounds(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, BoundsOutput, error) {
	bounds, err := s.backend.GetBounds(args.WindowID)
	if err != nil {
		return nil, BoundsOutput{}, err
	}
	return nil, BoundsOutput{WindowID: args.WindowID, Bounds: bounds}, nil
}

func (s *Server) handleSetWindowBounds(_ context.Context, _ *mcpsdk.CallToolRequest, args SetBoundsInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if args.Width <= 0 || args.Height <= 0 {
		return nil, ActionOutput{}, fmt.Errorf("width and height must be > 0")
	}
	bounds := platform.Rect{X: args.X, Y: args.Y, Width: args.Width, Height: args.Height}
	if err := s.backend.SetBounds(args.WindowID, bounds, args.Animate); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true}, nil
}

func (s *Server) handleCreateView(_ context.Context, _ *mcpsdk.CallToolRequest, args CreateViewInput) (*mcpsdk.CallToolResult, CreateViewOutput, error) {
	payload := ipc.CreateViewPayload{AttachTo: args.AttachTo}
	if args.Width > 0 && args.Height > 0 {
		payload.Bounds = &platform.Rect{X: args.X, Y: args.Y, Width: args.Width, Height: args.Height}
	}
	info, err := s.backend.CreateView(payload)
	if err != nil {
		return nil, CreateViewOutput{}, err
	}
	return nil, CreateViewOutput{ViewID: info.ID}, nil
}

func (s *Server) handleListViews(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListViewsInput) (*mcpsdk.CallToolResult, ListViewsOutput, error) {
	views, err := s.backend.ListViews()
	if err != nil {
		return nil, ListViewsOutput{}, err
	}
	out := ListViewsOutput{ViewIDs: make([]int, 0, len(views))}
	for _, v := range views {
		out.ViewIDs = append(out.ViewIDs, v.ID)
	}
	return nil, out, nil
}
