// Package remote defines the boundary to the workspace persistence service.
//
// The engine never depends on a concrete backend: the workspace session is
// handed a Service and treats every call as fallible. Implementations live
// in remote/rpc (the production CBOR-over-WebSocket client) and
// remote/remotetest (an in-memory fake for tests).
package remote

import (
	"context"
	"time"

	"github.com/canopyreview/canopy/geom"
	"github.com/canopyreview/canopy/layout"
)

// SwitchTrigger records what initiated a layout mode switch.
type SwitchTrigger string

const (
	// TriggerUser marks an explicit mode selection by the user.
	TriggerUser SwitchTrigger = "user"
	// TriggerAutoFreeform marks a promotion caused by direct manipulation.
	TriggerAutoFreeform SwitchTrigger = "auto-freeform"
)

// Document is a document placement record as the service reports it.
type Document struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	FilePath     string     `json:"file_path"`
	Position     geom.Point `json:"position"`
	Dimensions   geom.Size  `json:"dimensions"`
	ZIndex       int        `json:"z_index"`
	Active       bool       `json:"active"`
	Visible      bool       `json:"visible"`
	LastModified time.Time  `json:"last_modified"`
}

// CreateWorkspaceRequest asks the service to create a workspace. Mode and
// Size are optional; the service applies its defaults when they are zero.
type CreateWorkspaceRequest struct {
	Name string      `json:"name"`
	Mode layout.Mode `json:"layout_mode,omitempty"`
	Size geom.Size   `json:"workspace_size,omitempty"`
}

// CreateWorkspaceResponse confirms a created workspace.
type CreateWorkspaceResponse struct {
	WorkspaceID string      `json:"workspace_id"`
	Name        string      `json:"name"`
	Mode        layout.Mode `json:"layout_mode"`
	Size        geom.Size   `json:"workspace_size"`
	CreatedAt   time.Time   `json:"created_at"`
}

// WorkspaceStateResponse is the full persisted state of one workspace.
type WorkspaceStateResponse struct {
	WorkspaceID  string      `json:"workspace_id"`
	Name         string      `json:"name"`
	Mode         layout.Mode `json:"layout_mode"`
	Size         geom.Size   `json:"workspace_size"`
	Documents    []Document  `json:"documents"`
	LastModified time.Time   `json:"last_modified"`
}

// SwitchLayoutModeRequest asks the service to recompute layout for a mode.
type SwitchLayoutModeRequest struct {
	WorkspaceID string        `json:"workspace_id"`
	Mode        layout.Mode   `json:"layout_mode"`
	TriggeredBy SwitchTrigger `json:"triggered_by"`
}

// MoveDocumentRequest reports a document drag.
type MoveDocumentRequest struct {
	WorkspaceID string     `json:"workspace_id"`
	DocumentID  string     `json:"document_id"`
	Position    geom.Point `json:"position"`
}

// ResizeDocumentRequest reports a document resize.
type ResizeDocumentRequest struct {
	WorkspaceID string    `json:"workspace_id"`
	DocumentID  string    `json:"document_id"`
	Dimensions  geom.Size `json:"dimensions"`
}

// UpdateWorkspaceSizeRequest reports a canvas resize.
type UpdateWorkspaceSizeRequest struct {
	WorkspaceID string    `json:"workspace_id"`
	Size        geom.Size `json:"dimensions"`
}

// LayoutResponse carries recomputed placements for documents the operation
// affected. Documents absent from Placements are left untouched by the
// caller. TriggeredAutoFreeform reports that the service promoted the
// workspace to freeform as part of the operation.
type LayoutResponse struct {
	Placements            []layout.Placement `json:"layout_results"`
	TriggeredAutoFreeform bool               `json:"triggered_auto_freeform"`
}

// AddDocumentRequest asks the service to open a file in the workspace.
// Position and Dimensions are optional placement hints.
type AddDocumentRequest struct {
	WorkspaceID string      `json:"workspace_id"`
	FilePath    string      `json:"file_path"`
	Position    *geom.Point `json:"position,omitempty"`
	Dimensions  *geom.Size  `json:"dimensions,omitempty"`
}

// AddDocumentResponse confirms an added document.
type AddDocumentResponse struct {
	DocumentID   string     `json:"document_id"`
	FilePath     string     `json:"file_path"`
	Title        string     `json:"title"`
	Position     geom.Point `json:"position"`
	Dimensions   geom.Size  `json:"dimensions"`
	ZIndex       int        `json:"z_index,omitempty"`
	WasActivated bool       `json:"was_activated"`
}

// Service is the remote workspace persistence boundary. Every method is a
// single round trip; callers own all fallback behavior on error.
type Service interface {
	CreateWorkspace(ctx context.Context, req CreateWorkspaceRequest) (*CreateWorkspaceResponse, error)
	WorkspaceState(ctx context.Context, workspaceID string) (*WorkspaceStateResponse, error)
	SaveWorkspaceState(ctx context.Context, workspaceID string) error
	SwitchLayoutMode(ctx context.Context, req SwitchLayoutModeRequest) (*LayoutResponse, error)
	MoveDocument(ctx context.Context, req MoveDocumentRequest) (*LayoutResponse, error)
	ResizeDocument(ctx context.Context, req ResizeDocumentRequest) (*LayoutResponse, error)
	UpdateWorkspaceSize(ctx context.Context, req UpdateWorkspaceSizeRequest) (*LayoutResponse, error)
	ActivateDocument(ctx context.Context, workspaceID, documentID string) error
	AddDocument(ctx context.Context, req AddDocumentRequest) (*AddDocumentResponse, error)
	RemoveDocument(ctx context.Context, workspaceID, documentID string) (bool, error)
	RemoveAllDocuments(ctx context.Context, workspaceID string) (int, error)
}
