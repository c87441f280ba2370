package leadstest

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"slices"
	"sync"
	"time"
)

// Object is one blob held by ObjectStore.
type Object struct {
	Key         string
	Body        []byte
	ContentType string
}

// ObjectStore is an in-memory ports.ObjectStore. Writes are never rolled back,
// matching the real stores.
type ObjectStore struct {
	mu      sync.Mutex
	objects map[string]Object
	order   []string

	// FailPut makes Put fail once this many objects have been written. Negative disables.
	FailPut    int
	FailPutErr error
}

func NewObjectStore() *ObjectStore {
	return &ObjectStore{objects: map[string]Object{}, FailPut: -1}
}

func (o *ObjectStore) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.FailPut >= 0 && len(o.order) >= o.FailPut {
		if o.FailPutErr != nil {
			return o.FailPutErr
		}
		return fmt.Errorf("put %s: object store unavailable", key)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	o.objects[key] = Object{Key: key, Body: data, ContentType: contentType}
	o.order = append(o.order, key)
	return nil
}

func (o *ObjectStore) Sign(_ context.Context, key string, ttl time.Duration, disposition string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.objects[key]; !ok {
		return "", fmt.Errorf("sign %s: no such object", key)
	}
	q := url.Values{}
	q.Set("expires", ttl.String())
	if disposition != "" {
		q.Set("response-content-disposition", disposition)
	}
	return "https://objects.test/" + key + "?" + q.Encode(), nil
}

// Keys returns the written keys in write order.
func (o *ObjectStore) Keys() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.order)
}

func (o *ObjectStore) Object(key string) (Object, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	obj, ok := o.objects[key]
	return obj, ok
}

// Seed stores an object without counting it against FailPut.
func (o *ObjectStore) Seed(key string, body []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.objects[key] = Object{Key: key, Body: body}
}
