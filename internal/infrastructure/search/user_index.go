package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/salon-connect/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// UserIndex mirrors user name/username into Elasticsearch and answers
// case-insensitive substring lookups with matching ids.
type UserIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	return &UserIndex{ES: es, Index: index}
}

var userMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":         map[string]any{"type": "keyword"},
			"name":       map[string]any{"type": "keyword"},
			"username":   map[string]any{"type": "keyword"},
			"user_image": map[string]any{"type": "keyword", "index": false},
			"created_at": map[string]any{"type": "date"},
		},
	},
}

// EnsureIndex creates the index with keyword mappings when it does not exist.
func (x *UserIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.ES.Indices.Exists([]string{x.Index}, x.ES.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}
	b, _ := json.Marshal(userMapping)
	res, err = x.ES.Indices.Create(x.Index, x.ES.Indices.Create.WithContext(c), x.ES.Indices.Create.WithBody(bytes.NewReader(b)))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", x.Index, res.Status())
	}
	return nil
}

func (x *UserIndex) IndexUser(ctx context.Context, u *entity.User) error {
	doc := map[string]any{
		"id":         u.ID,
		"name":       u.Name,
		"username":   u.Username,
		"user_image": u.UserImage,
		"created_at": u.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: x.Index, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index user %s: %s", u.ID, res.Status())
	}
	return nil
}

// SearchQuery builds the wildcard query used by SearchIDs.
func SearchQuery(text string, size int) map[string]any {
	pattern := "*" + escapeWildcard(strings.ToLower(text)) + "*"
	should := make([]any, 0, 2)
	for _, field := range []string{"name", "username"} {
		should = append(should, map[string]any{
			"wildcard": map[string]any{
				field: map[string]any{"value": pattern, "case_insensitive": true},
			},
		})
	}
	return map[string]any{
		"_source": false,
		"size":    size,
		"query": map[string]any{
			"bool": map[string]any{"should": should, "minimum_should_match": 1},
		},
	}
}

func escapeWildcard(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)
	return r.Replace(s)
}

func (x *UserIndex) SearchIDs(ctx context.Context, text string, size int) ([]string, error) {
	b, _ := json.Marshal(SearchQuery(text, size))
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Index), x.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", x.Index, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
