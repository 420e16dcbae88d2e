package rpc

import (
	"context"

	"github.com/canopyreview/canopy/remote"
)

var _ remote.Service = (*Client)(nil)

type removeResult struct {
	Removed bool `json:"removed"`
}

type removeAllResult struct {
	CountRemoved int `json:"count_removed"`
}

type workspaceIDParams struct {
	WorkspaceID string `json:"workspace_id"`
}

type documentIDParams struct {
	WorkspaceID string `json:"workspace_id"`
	DocumentID  string `json:"document_id"`
}

// CreateWorkspace implements remote.Service.
func (c *Client) CreateWorkspace(ctx context.Context, req remote.CreateWorkspaceRequest) (*remote.CreateWorkspaceResponse, error) {
	var resp remote.CreateWorkspaceResponse
	if err := c.call(ctx, "workspace.create", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WorkspaceState implements remote.Service.
func (c *Client) WorkspaceState(ctx context.Context, workspaceID string) (*remote.WorkspaceStateResponse, error) {
	var resp remote.WorkspaceStateResponse
	if err := c.call(ctx, "workspace.state", workspaceIDParams{WorkspaceID: workspaceID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveWorkspaceState implements remote.Service.
func (c *Client) SaveWorkspaceState(ctx context.Context, workspaceID string) error {
	return c.call(ctx, "workspace.save", workspaceIDParams{WorkspaceID: workspaceID}, nil)
}

// SwitchLayoutMode implements remote.Service.
func (c *Client) SwitchLayoutMode(ctx context.Context, req remote.SwitchLayoutModeRequest) (*remote.LayoutResponse, error) {
	var resp remote.LayoutResponse
	if err := c.call(ctx, "workspace.switchMode", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MoveDocument implements remote.Service.
func (c *Client) MoveDocument(ctx context.Context, req remote.MoveDocumentRequest) (*remote.LayoutResponse, error) {
	var resp remote.LayoutResponse
	if err := c.call(ctx, "document.move", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResizeDocument implements remote.Service.
func (c *Client) ResizeDocument(ctx context.Context, req remote.ResizeDocumentRequest) (*remote.LayoutResponse, error) {
	var resp remote.LayoutResponse
	if err := c.call(ctx, "document.resize", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateWorkspaceSize implements remote.Service.
func (c *Client) UpdateWorkspaceSize(ctx context.Context, req remote.UpdateWorkspaceSizeRequest) (*remote.LayoutResponse, error) {
	var resp remote.LayoutResponse
	if err := c.call(ctx, "workspace.resize", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ActivateDocument implements remote.Service.
func (c *Client) ActivateDocument(ctx context.Context, workspaceID, documentID string) error {
	return c.call(ctx, "document.activate", documentIDParams{WorkspaceID: workspaceID, DocumentID: documentID}, nil)
}

// AddDocument implements remote.Service.
func (c *Client) AddDocument(ctx context.Context, req remote.AddDocumentRequest) (*remote.AddDocumentResponse, error) {
	var resp remote.AddDocumentResponse
	if err := c.call(ctx, "document.add", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveDocument implements remote.Service.
func (c *Client) RemoveDocument(ctx context.Context, workspaceID, documentID string) (bool, error) {
	var resp removeResult
	if err := c.call(ctx, "document.remove", documentIDParams{WorkspaceID: workspaceID, DocumentID: documentID}, &resp); err != nil {
		return false, err
	}
	return resp.Removed, nil
}

// RemoveAllDocuments implements remote.Service.
func (c *Client) RemoveAllDocuments(ctx context.Context, workspaceID string) (int, error) {
	var resp removeAllResult
	if err := c.call(ctx, "document.removeAll", workspaceIDParams{WorkspaceID: workspaceID}, &resp); err != nil {
		return 0, err
	}
	return resp.CountRemoved, nil
}
