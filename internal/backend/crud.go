package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// crud is the list/get/create/update/delete contract shared by every
// resource keyed by a numeric id.
type crud[T any] struct {
	c            *Client
	resource     string
	base         string
	updateMethod string
	authRequired bool
}

func newCRUD[T any](c *Client, resource, base, updateMethod string) crud[T] {
	return crud[T]{c: c, resource: resource, base: base, updateMethod: updateMethod}
}

// scoped marks the resource as belonging to the current user.
func (r crud[T]) scoped() crud[T] {
	r.authRequired = true
	return r
}

func (r crud[T]) path(id int64) string {
	return r.base + "/" + strconv.FormatInt(id, 10)
}

func (r crud[T]) list(ctx context.Context, query url.Values) ([]T, error) {
	raw, err := r.c.send(ctx, request{method: http.MethodGet, path: r.base, query: query, authRequired: r.authRequired})
	if err != nil {
		return nil, err
	}
	return decodeList[T](r.c, r.resource, raw)
}

// Get returns the record with the given id.
func (r crud[T]) Get(ctx context.Context, id int64) (*T, error) {
	if err := positiveID(r.resource+".get", id); err != nil {
		return nil, err
	}
	raw, err := r.c.send(ctx, request{method: http.MethodGet, path: r.path(id), authRequired: r.authRequired})
	if err != nil {
		return nil, err
	}
	return decodeObject[T](r.c, r.resource, raw)
}

// Delete removes the record with the given id. The response body is ignored.
func (r crud[T]) Delete(ctx context.Context, id int64) error {
	if err := positiveID(r.resource+".delete", id); err != nil {
		return err
	}
	_, err := r.c.send(ctx, request{method: http.MethodDelete, path: r.path(id), authRequired: r.authRequired})
	return err
}

func (r crud[T]) create(ctx context.Context, in any) (*T, error) {
	if err := r.c.validateInput(r.resource+".create", in); err != nil {
		return nil, err
	}
	raw, err := r.c.send(ctx, request{method: http.MethodPost, path: r.base, body: in, authRequired: r.authRequired})
	if err != nil {
		return nil, err
	}
	return decodeObject[T](r.c, r.resource, raw)
}

func (r crud[T]) update(ctx context.Context, id int64, in any) (*T, error) {
	op := r.resource + ".update"
	if err := positiveID(op, id); err != nil {
		return nil, err
	}
	if err := r.c.validateInput(op, in); err != nil {
		return nil, err
	}
	raw, err := r.c.send(ctx, request{method: r.updateMethod, path: r.path(id), body: in, authRequired: r.authRequired})
	if err != nil {
		return nil, err
	}
	return decodeObject[T](r.c, r.resource, raw)
}

// patchAction calls a body-less PATCH sub-route such as /:id/set-default.
func (r crud[T]) patchAction(ctx context.Context, id int64, action string) (*T, error) {
	op := r.resource + "." + action
	if err := positiveID(op, id); err != nil {
		return nil, err
	}
	raw, err := r.c.send(ctx, request{method: http.MethodPatch, path: r.path(id) + "/" + action, authRequired: r.authRequired})
	if err != nil {
		return nil, err
	}
	return decodeObject[T](r.c, r.resource, raw)
}
