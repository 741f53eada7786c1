// Package search mirrors store records into elasticsearch and queries them back.
package search

import (
	"context"
	"defectboard/client/es"
	"defectboard/event"
	"encoding/json"
	"strconv"
)

const IndexPrefix = "defectboard-"

const handlerIdentifier = "search-indexer"

func IndexName(sourceType string) string {
	return IndexPrefix + sourceType
}

type Indexer struct {
	client *es.Client
}

func NewIndexer(client *es.Client) *Indexer {
	return &Indexer{client: client}
}

// Handle keeps the index in sync with one store event.
func (i *Indexer) Handle(e *event.EventRecord) *event.EventHandleResult {
	ctx := context.Background()
	index := IndexName(e.SourceType)
	id := strconv.FormatInt(e.SourceID, 10)

	var err error
	switch e.EventCategory {
	case event.EventCategoryCreated, event.EventCategoryUpdated:
		err = i.client.Index(ctx, index, id, e.Payload)
	case event.EventCategoryDeleted:
		err = i.client.DeleteDocument(ctx, index, id)
	default:
		return nil
	}
	if err != nil {
		return &event.EventHandleResult{Success: false, Message: err.Error(), HandlerIdentifier: handlerIdentifier}
	}
	return &event.EventHandleResult{Success: true, Message: index + "/" + id, HandlerIdentifier: handlerIdentifier}
}

// Search returns the matching documents of one source type. Empty text matches everything.
func (i *Indexer) Search(ctx context.Context, sourceType string, text string) ([]json.RawMessage, error) {
	query := es.H{"match_all": es.H{}}
	if text != "" {
		query = es.H{"multi_match": es.H{"query": text}}
	}
	r, err := i.client.Search(ctx, IndexName(sourceType), es.H{"query": query})
	if err != nil {
		return nil, err
	}
	docs := make([]json.RawMessage, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		docs = append(docs, json.RawMessage(hit.Source))
	}
	return docs, nil
}

// Get returns the indexed document of one record as stored.
func (i *Indexer) Get(ctx context.Context, sourceType string, id int64) (json.RawMessage, error) {
	doc, err := i.client.GetDocument(ctx, IndexName(sourceType), strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(doc), nil
}
