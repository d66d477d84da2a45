package client

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// ClientsClient covers the client-registry endpoints.
type ClientsClient struct {
	client *Client
}

// ClientRecord is a registered GST client as the API returns it.
type ClientRecord struct {
	ID              string    `json:"id"`
	GSTIN           string    `json:"gstin"`
	LegalName       string    `json:"legal_name"`
	TradeName       string    `json:"trade_name,omitempty"`
	StateCode       string    `json:"state_code"`
	FilingFrequency string    `json:"filing_frequency"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Version         int       `json:"version"`
}

// FilingRecord is one return obligation of a client.
type FilingRecord struct {
	ID             string     `json:"id"`
	ClientID       string     `json:"client_id"`
	ReturnType     string     `json:"return_type"`
	Period         string     `json:"period"`
	DueDate        time.Time  `json:"due_date"`
	FiledAt        *time.Time `json:"filed_at,omitempty"`
	AmendmentCount int        `json:"amendment_count"`
}

// RegisterClientRequest registers a new client.
type RegisterClientRequest struct {
	GSTIN           string `json:"gstin"`
	LegalName       string `json:"legal_name"`
	TradeName       string `json:"trade_name,omitempty"`
	FilingFrequency string `json:"filing_frequency"`
}

// AddFilingRequest records a return obligation for a client.
type AddFilingRequest struct {
	ReturnType string `json:"return_type"`
	Period     string `json:"period"`
	DueDate    string `json:"due_date"`
}

// Register creates a new client in the registry.
func (cc *ClientsClient) Register(ctx context.Context, req RegisterClientRequest) (*ClientRecord, error) {
	var out ClientRecord
	if err := cc.client.post(ctx, "/api/v1/clients", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one client by ID.
func (cc *ClientsClient) Get(ctx context.Context, clientID string) (*ClientRecord, error) {
	var out ClientRecord
	path := fmt.Sprintf("/api/v1/clients/%s", url.PathEscape(clientID))
	if err := cc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns one page of clients.
func (cc *ClientsClient) List(ctx context.Context, page, pageSize int) (*Page[ClientRecord], error) {
	var out Page[ClientRecord]
	path := fmt.Sprintf("/api/v1/clients?page=%d&page_size=%d", page, pageSize)
	if err := cc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddFiling records a return obligation for the client.
func (cc *ClientsClient) AddFiling(ctx context.Context, clientID string, req AddFilingRequest) (*FilingRecord, error) {
	var out FilingRecord
	path := fmt.Sprintf("/api/v1/clients/%s/filings", url.PathEscape(clientID))
	if err := cc.client.post(ctx, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFilings returns one page of the client's filings, newest first.
func (cc *ClientsClient) ListFilings(ctx context.Context, clientID string, page, pageSize int) (*Page[FilingRecord], error) {
	var out Page[FilingRecord]
	path := fmt.Sprintf("/api/v1/clients/%s/filings?page=%d&page_size=%d",
		url.PathEscape(clientID), page, pageSize)
	if err := cc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
