package testinfra

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
)

// FakeElasticsearch serves the document, search and index-drop endpoints used by the search indexer.
// Search matches documents whose body contains the multi_match query text, case-insensitively.
type FakeElasticsearch struct {
	*httptest.Server

	lock    sync.Mutex
	indices map[string]map[string]string
}

func StartFakeElasticsearch() *FakeElasticsearch {
	f := &FakeElasticsearch{indices: map[string]map[string]string{}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

func (f *FakeElasticsearch) Documents(index string) map[string]string {
	f.lock.Lock()
	defer f.lock.Unlock()
	docs := map[string]string{}
	for id, doc := range f.indices[index] {
		docs[id] = doc
	}
	return docs
}

func (f *FakeElasticsearch) serve(w http.ResponseWriter, r *http.Request) {
	f.lock.Lock()
	defer f.lock.Unlock()

	w.Header().Set("Content-Type", "application/json")
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	body, _ := ioutil.ReadAll(r.Body)

	switch {
	case len(parts) == 3 && parts[1] == "_doc":
		f.serveDocument(w, r.Method, parts[0], parts[2], body)
	case len(parts) == 2 && parts[1] == "_search":
		f.serveSearch(w, parts[0], body)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		delete(f.indices, parts[0])
		fmt.Fprint(w, `{"acknowledged":true}`)
	default:
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, `{"error":"unsupported %s %s"}`, r.Method, r.URL.Path)
	}
}

func (f *FakeElasticsearch) serveDocument(w http.ResponseWriter, method, index, id string, body []byte) {
	docs := f.indices[index]
	switch method {
	case http.MethodPut, http.MethodPost:
		if docs == nil {
			docs = map[string]string{}
			f.indices[index] = docs
		}
		docs[id] = strings.TrimSpace(string(body))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"_index":%q,"_id":%q,"result":"created"}`, index, id)
	case http.MethodGet:
		doc, found := docs[id]
		if !found {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, `{"_index":%q,"_id":%q,"found":false}`, index, id)
			return
		}
		fmt.Fprintf(w, `{"_index":%q,"_id":%q,"found":true,"_source":%s}`, index, id, doc)
	case http.MethodDelete:
		if _, found := docs[id]; !found {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, `{"_index":%q,"_id":%q,"result":"not_found"}`, index, id)
			return
		}
		delete(docs, id)
		fmt.Fprintf(w, `{"_index":%q,"_id":%q,"result":"deleted"}`, index, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *FakeElasticsearch) serveSearch(w http.ResponseWriter, index string, body []byte) {
	docs, found := f.indices[index]
	if !found {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"error":{"type":"index_not_found_exception","index":%q},"status":404}`, index)
		return
	}

	query := struct {
		Query struct {
			MultiMatch *struct {
				Query string `json:"query"`
			} `json:"multi_match"`
		} `json:"query"`
	}{}
	_ = json.Unmarshal(body, &query)
	text := ""
	if query.Query.MultiMatch != nil {
		text = strings.ToLower(query.Query.MultiMatch.Query)
	}

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	hits := []string{}
	for _, id := range ids {
		if text == "" || strings.Contains(strings.ToLower(docs[id]), text) {
			hits = append(hits, fmt.Sprintf(`{"_index":%q,"_id":%q,"_score":1.0,"_source":%s}`, index, id, docs[id]))
		}
	}
	fmt.Fprintf(w, `{"took":1,"timed_out":false,"_shards":{"total":1,"successful":1,"skipped":0,"failed":0},`+
		`"hits":{"total":{"value":%d,"relation":"eq"},"max_score":1.0,"hits":[%s]}}`, len(hits), strings.Join(hits, ","))
}

// Reset forgets every index, as after a cluster wipe.
func (f *FakeElasticsearch) Reset() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.indices = map[string]map[string]string{}
}
