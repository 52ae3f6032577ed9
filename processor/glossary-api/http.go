package glossaryapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/c360studio/semgloss/glossary"
)

// maxRequestBodySize limits POST body sizes.
const maxRequestBodySize = 1 << 20 // 1 MB

// maxProbeBatch caps the candidates accepted by one batch probe.
const maxProbeBatch = 10000

// RegisterHTTPHandlers registers the glossary handlers under the given prefix.
// The prefix is a path segment without a trailing slash (e.g. "api/glossary").
// Handlers are registered as:
//
//	GET  <prefix>/terms/             all records, ordered by key
//	GET  <prefix>/terms/<candidate>  probe one candidate, 404 when not a term
//	POST <prefix>/probe              probe a batch of candidates
//	GET  <prefix>/lookup/<key>       record by key, including lookup-only entries
//	GET  <prefix>/index              index statistics
func (c *Component) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}

	mux.HandleFunc(prefix+"terms/", c.handleTerms(prefix+"terms/"))
	mux.HandleFunc(prefix+"probe", c.handleProbe)
	mux.HandleFunc(prefix+"lookup/", c.handleLookup(prefix+"lookup/"))
	mux.HandleFunc(prefix+"index", c.handleIndex)
}

// ----------------------------------------------------------------------------
// GET /api/glossary/terms/<candidate>
// ----------------------------------------------------------------------------

func (c *Component) handleTerms(base string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if !c.ready(w) {
			return
		}

		candidate := strings.TrimPrefix(r.URL.Path, base)
		if candidate == "" {
			c.listTerms(w)
			return
		}

		rec, ok := c.prober.Probe(candidate)
		if !ok {
			http.Error(w, "Term not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// TermsResponse is the response body for GET /api/glossary/terms/.
type TermsResponse struct {
	BuildID string                `json:"build_id"`
	Terms   []glossary.TermRecord `json:"terms"`
}

func (c *Component) listTerms(w http.ResponseWriter) {
	ix := c.prober.Index()
	writeJSON(w, http.StatusOK, TermsResponse{
		BuildID: ix.BuildID(),
		Terms:   ix.Records(),
	})
}

// ----------------------------------------------------------------------------
// POST /api/glossary/probe
// ----------------------------------------------------------------------------

// ProbeRequest is the request body for POST /api/glossary/probe.
type ProbeRequest struct {
	Candidates []string `json:"candidates"`
}

// ProbeResult is the answer for one candidate. Term is nil when the
// candidate is not a term.
type ProbeResult struct {
	Candidate string               `json:"candidate"`
	Matched   bool                 `json:"matched"`
	Term      *glossary.TermRecord `json:"term,omitempty"`
}

// ProbeResponse is the response body for POST /api/glossary/probe.
// Results are in request order.
type ProbeResponse struct {
	Results []ProbeResult `json:"results"`
	Matched int           `json:"matched"`
}

func (c *Component) handleProbe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !c.ready(w) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req ProbeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Candidates) > maxProbeBatch {
		http.Error(w, "Too many candidates", http.StatusRequestEntityTooLarge)
		return
	}

	resp := ProbeResponse{Results: make([]ProbeResult, len(req.Candidates))}
	for i, candidate := range req.Candidates {
		resp.Results[i].Candidate = candidate
		if rec, ok := c.prober.Probe(candidate); ok {
			resp.Results[i].Matched = true
			resp.Results[i].Term = &rec
			resp.Matched++
		}
	}

	c.logger.Debug("Probed candidate batch", "candidates", len(req.Candidates), "matched", resp.Matched)
	writeJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------------------
// GET /api/glossary/lookup/<key>
// ----------------------------------------------------------------------------

func (c *Component) handleLookup(base string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if !c.ready(w) {
			return
		}

		key := strings.TrimPrefix(r.URL.Path, base)
		if key == "" {
			http.Error(w, "key is required", http.StatusBadRequest)
			return
		}

		rec, ok := c.prober.Lookup(key)
		if !ok {
			http.Error(w, "Term not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// ----------------------------------------------------------------------------
// GET /api/glossary/index
// ----------------------------------------------------------------------------

func (c *Component) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !c.ready(w) {
		return
	}
	writeJSON(w, http.StatusOK, c.prober.Index().Stats())
}

// ready answers 503 until the first index has been published.
func (c *Component) ready(w http.ResponseWriter) bool {
	if c.prober.Index() == nil {
		http.Error(w, "Index not ready", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
