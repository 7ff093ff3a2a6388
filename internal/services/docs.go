package services

import (
	"context"

	"github.com/Backland-Labs/hnrflow/internal/apiclient"
)

// WorkspaceRequest is the body of POST /api/v1/workspaces
type WorkspaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Workspace is a created documentation workspace
type Workspace struct {
	*apiclient.Result
	Slug      string
	Name      string
	ManageKey string
}

// DocumentRequest is the body of POST /api/v1/workspaces/{slug}/documents
type DocumentRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// Document is a created document
type Document struct {
	*apiclient.Result
	Title string
	Slug  string
}

// Docs wraps the agent documentation service
type Docs struct {
	client *apiclient.Client
}

// NewDocs creates a Docs wrapper
func NewDocs(c *apiclient.Client) *Docs {
	return &Docs{client: c}
}

// CreateWorkspace creates a workspace and returns its slug and manage key
func (d *Docs) CreateWorkspace(ctx context.Context, req WorkspaceRequest) (*Workspace, error) {
	result, err := d.client.Post(ctx, apiPrefix+"/workspaces", req, nil)
	if err != nil {
		return nil, err
	}
	w := &Workspace{Result: result}
	if !result.IsError {
		w.Slug = result.String("slug")
		w.Name = result.String("name")
		w.ManageKey = result.String("manage_key")
	}
	return w, nil
}

// CreateDocument adds a document to a workspace, authorised by its manage key
func (d *Docs) CreateDocument(ctx context.Context, slug, manageKey string, req DocumentRequest) (*Document, error) {
	path := apiPrefix + "/workspaces/" + segment(slug) + "/documents" + keyQuery(manageKey)
	result, err := d.client.Post(ctx, path, req, nil)
	if err != nil {
		return nil, err
	}
	doc := &Document{Result: result}
	if !result.IsError {
		doc.Title = result.String("title")
		doc.Slug = result.String("slug")
	}
	return doc, nil
}
