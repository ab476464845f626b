package api

import (
	"time"

	"github.com/rubiojr/koho/pkg/catalog"
	"github.com/rubiojr/koho/pkg/websearch"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type SearchResponse struct {
	Query    string          `json:"query"`
	Keywords []string        `json:"keywords"`
	Order    string          `json:"order"`
	Results  []catalog.Entry `json:"results"`
	Count    int             `json:"count"`
	// Total counts matches before the result cap.
	Total int `json:"total"`
}

type WebSearchResponse struct {
	Query   string           `json:"query"`
	Results []websearch.Page `json:"results"`
	Count   int              `json:"count"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Articles  int       `json:"articles"`
	WebPages  int       `json:"web_pages"`
}
