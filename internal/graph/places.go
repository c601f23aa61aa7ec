package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the graph store over its transactional HTTP endpoint.
// Places are owned there; this backend only ever asks whether one exists.
type Client struct {
	httpClient *http.Client
	uri        string
	database   string
	username   string
	password   string
}

// NewClient constructs a graph client. A nil httpClient gets a 5s timeout
// default so a slow graph store cannot hold requests open indefinitely.
func NewClient(httpClient *http.Client, uri, database, username, password string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	if database == "" {
		database = "neo4j"
	}
	return &Client{
		httpClient: httpClient,
		uri:        uri,
		database:   database,
		username:   username,
		password:   password,
	}
}

type cypherStatement struct {
	Statement  string                 `json:"statement"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

type cypherRequest struct {
	Statements []cypherStatement `json:"statements"`
}

type cypherResponse struct {
	Results []struct {
		Data []json.RawMessage `json:"data"`
	} `json:"results"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// PlaceExists reports whether a place node with the given id exists. Errors
// are returned as-is: the oracle guards writes, so callers fail closed.
func (c *Client) PlaceExists(ctx context.Context, placeID string) (bool, error) {
	payload := cypherRequest{Statements: []cypherStatement{{
		Statement:  "MATCH (p:Place {place_id: $place_id}) RETURN p.place_id LIMIT 1",
		Parameters: map[string]interface{}{"place_id": placeID},
	}}}
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("graph: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/db/%s/tx/commit", c.uri, c.database)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("graph: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("graph: place lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("graph: place lookup: unexpected status %d", resp.StatusCode)
	}

	var decoded cypherResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return false, fmt.Errorf("graph: decode response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return false, fmt.Errorf("graph: %s: %s", decoded.Errors[0].Code, decoded.Errors[0].Message)
	}
	return len(decoded.Results) > 0 && len(decoded.Results[0].Data) > 0, nil
}
