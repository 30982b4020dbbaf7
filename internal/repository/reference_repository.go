package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Mk-yl/convocation-portal/internal/models"
)

// ReferenceRepository manages the lookup collections exposed under /admin.
type ReferenceRepository struct {
	upstream *UpstreamClient
	timeout  time.Duration
}

// NewReferenceRepository constructs the repository.
func NewReferenceRepository(upstream *UpstreamClient, timeout time.Duration) *ReferenceRepository {
	return &ReferenceRepository{upstream: upstream, timeout: timeout}
}

// List decodes every entity of kind into dest, a pointer to a slice.
func (r *ReferenceRepository) List(ctx context.Context, kind models.ReferenceKind, dest interface{}) error {
	return r.upstream.sendJSON(ctx, upstreamCall{
		operation: "list_" + operationSuffix(kind),
		method:    http.MethodGet,
		path:      collectionPath(kind),
		timeout:   r.timeout,
	}, dest)
}

// Create posts payload and decodes the stored entity into dest.
func (r *ReferenceRepository) Create(ctx context.Context, kind models.ReferenceKind, payload, dest interface{}) error {
	body, err := jsonBody(payload)
	if err != nil {
		return err
	}
	return r.upstream.sendJSON(ctx, upstreamCall{
		operation:   "create_" + operationSuffix(kind),
		method:      http.MethodPost,
		path:        collectionPath(kind),
		body:        body,
		contentType: "application/json",
		timeout:     r.timeout,
	}, dest)
}

// Update replaces the entity with the given id.
func (r *ReferenceRepository) Update(ctx context.Context, kind models.ReferenceKind, id int, payload, dest interface{}) error {
	body, err := jsonBody(payload)
	if err != nil {
		return err
	}
	return r.upstream.sendJSON(ctx, upstreamCall{
		operation:   "update_" + operationSuffix(kind),
		method:      http.MethodPut,
		path:        entityPath(kind, id),
		body:        body,
		contentType: "application/json",
		timeout:     r.timeout,
	}, dest)
}

// Delete removes the entity with the given id.
func (r *ReferenceRepository) Delete(ctx context.Context, kind models.ReferenceKind, id int) error {
	return r.upstream.sendJSON(ctx, upstreamCall{
		operation: "delete_" + operationSuffix(kind),
		method:    http.MethodDelete,
		path:      entityPath(kind, id),
		timeout:   r.timeout,
	}, nil)
}

func collectionPath(kind models.ReferenceKind) string {
	return "/admin/" + string(kind)
}

func entityPath(kind models.ReferenceKind, id int) string {
	return fmt.Sprintf("%s/%d", collectionPath(kind), id)
}

func operationSuffix(kind models.ReferenceKind) string {
	if kind == models.KindExamTypes {
		return "types_examen"
	}
	return string(kind)
}
