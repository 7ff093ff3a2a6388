package services

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/Backland-Labs/hnrflow/internal/apiclient"
)

// BoardRequest is the body of POST /api/v1/boards
type BoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Board is a created Kanban board
type Board struct {
	*apiclient.Result
	ID        string
	Name      string
	ManageKey string
}

// Column is one board column. ID keeps the JSON type the service used.
type Column struct {
	ID   interface{}
	Name string
}

// BoardDetail is the response of GET /api/v1/boards/{id}
type BoardDetail struct {
	*apiclient.Result
	Columns []Column
}

// FirstColumn returns the first column, if any
func (d *BoardDetail) FirstColumn() (Column, bool) {
	if len(d.Columns) == 0 {
		return Column{}, false
	}
	return d.Columns[0], true
}

// TaskRequest is the body of POST /api/v1/boards/{id}/tasks
type TaskRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	ColumnID    interface{} `json:"column_id"`
	Priority    int         `json:"priority"`
	Labels      []string    `json:"labels,omitempty"`
	ActorName   string      `json:"actor_name,omitempty"`
}

// Task is a created task
type Task struct {
	*apiclient.Result
	ID       string
	Title    string
	Priority string
}

// Kanban wraps the task board service
type Kanban struct {
	client *apiclient.Client
}

// NewKanban creates a Kanban wrapper
func NewKanban(c *apiclient.Client) *Kanban {
	return &Kanban{client: c}
}

// CreateBoard creates a board and returns its id and manage key
func (k *Kanban) CreateBoard(ctx context.Context, req BoardRequest) (*Board, error) {
	result, err := k.client.Post(ctx, apiPrefix+"/boards", req, nil)
	if err != nil {
		return nil, err
	}
	b := &Board{Result: result}
	if !result.IsError {
		b.ID = result.String("id")
		b.Name = result.String("name")
		b.ManageKey = result.String("manage_key")
	}
	return b, nil
}

// GetBoard fetches a board with its columns
func (k *Kanban) GetBoard(ctx context.Context, id string) (*BoardDetail, error) {
	result, err := k.client.Get(ctx, apiPrefix+"/boards/"+segment(id))
	if err != nil {
		return nil, err
	}
	d := &BoardDetail{Result: result}
	if result.IsError {
		return d, nil
	}
	columns := result.Get("columns")
	if !columns.IsArray() {
		return d, nil
	}
	columns.ForEach(func(_, col gjson.Result) bool {
		id := col.Get("id")
		if !id.Exists() || id.Type == gjson.Null {
			return true
		}
		d.Columns = append(d.Columns, Column{ID: id.Value(), Name: col.Get("name").String()})
		return true
	})
	return d, nil
}

// CreateTask adds a task to a board, authorised by the board's manage key
func (k *Kanban) CreateTask(ctx context.Context, boardID, manageKey string, req TaskRequest) (*Task, error) {
	path := apiPrefix + "/boards/" + segment(boardID) + "/tasks" + keyQuery(manageKey)
	result, err := k.client.Post(ctx, path, req, nil)
	if err != nil {
		return nil, err
	}
	t := &Task{Result: result}
	if !result.IsError {
		t.ID = result.String("id")
		t.Title = result.String("title")
		t.Priority = result.String("priority")
	}
	return t, nil
}

// ArchiveBoard archives a board, authorised by its manage key
func (k *Kanban) ArchiveBoard(ctx context.Context, boardID, manageKey string) (*apiclient.Result, error) {
	path := apiPrefix + "/boards/" + segment(boardID) + "/archive" + keyQuery(manageKey)
	return k.client.Post(ctx, path, nil, nil)
}
