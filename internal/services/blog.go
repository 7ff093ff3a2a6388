package services

import (
	"context"

	"github.com/Backland-Labs/hnrflow/internal/apiclient"
)

// BlogRequest is the body of POST /api/v1/blogs
type BlogRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Blog is a created blog
type Blog struct {
	*apiclient.Result
	ID        string
	Name      string
	ManageKey string
}

// PostRequest is the body of POST /api/v1/blogs/{id}/posts
type PostRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
	Status  string   `json:"status,omitempty"`
}

// Post is a created blog post
type Post struct {
	*apiclient.Result
	ID    string
	Title string
}

// BlogService wraps the blog service
type BlogService struct {
	client *apiclient.Client
}

// NewBlog creates a blog service wrapper
func NewBlog(c *apiclient.Client) *BlogService {
	return &BlogService{client: c}
}

// CreateBlog creates a blog and returns its id and manage key
func (b *BlogService) CreateBlog(ctx context.Context, req BlogRequest) (*Blog, error) {
	result, err := b.client.Post(ctx, apiPrefix+"/blogs", req, nil)
	if err != nil {
		return nil, err
	}
	blog := &Blog{Result: result}
	if !result.IsError {
		blog.ID = result.String("id")
		blog.Name = result.String("name")
		blog.ManageKey = result.String("manage_key")
	}
	return blog, nil
}

// CreatePost publishes a post in a blog, authorised by its manage key
func (b *BlogService) CreatePost(ctx context.Context, blogID, manageKey string, req PostRequest) (*Post, error) {
	path := apiPrefix + "/blogs/" + segment(blogID) + "/posts" + keyQuery(manageKey)
	result, err := b.client.Post(ctx, path, req, nil)
	if err != nil {
		return nil, err
	}
	p := &Post{Result: result}
	if !result.IsError {
		p.ID = result.String("id")
		p.Title = result.String("title")
	}
	return p, nil
}
