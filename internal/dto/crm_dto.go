package dto

import (
	"time"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// ClientListRequest defines filters for client listings.
type ClientListRequest struct {
	ListRequest
	Status string
	Search string
}

// ClientCreateRequest captures a new client.
type ClientCreateRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,max=64"`
	Company  string `json:"company" validate:"omitempty,max=255"`
	Address  string `json:"address" validate:"omitempty,max=2000"`
	Industry string `json:"industry" validate:"omitempty,max=128"`
	Status   string `json:"status" validate:"omitempty,oneof=active inactive"`
	Notes    string `json:"notes" validate:"omitempty,max=5000"`
}

// ClientUpdateRequest captures partial client updates.
type ClientUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=64"`
	Company  *string `json:"company" validate:"omitempty,max=255"`
	Address  *string `json:"address" validate:"omitempty,max=2000"`
	Industry *string `json:"industry" validate:"omitempty,max=128"`
	Status   *string `json:"status" validate:"omitempty,oneof=active inactive"`
	Notes    *string `json:"notes" validate:"omitempty,max=5000"`
}

// ClientResponse serializes a client.
type ClientResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Address   string    `json:"address"`
	Industry  string    `json:"industry"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewClientResponse converts a client model into a DTO.
func NewClientResponse(client models.Client) ClientResponse {
	return ClientResponse{
		ID:        client.ID,
		TenantID:  client.TenantID,
		Name:      client.Name,
		Email:     client.Email,
		Phone:     client.Phone,
		Company:   client.Company,
		Address:   client.Address,
		Industry:  client.Industry,
		Status:    client.Status,
		Notes:     client.Notes,
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	}
}

// LeadListRequest defines filters for lead listings.
type LeadListRequest struct {
	ListRequest
	Status     string
	Source     string
	AssignedTo string
	Search     string
}

// LeadCreateRequest captures a new lead.
type LeadCreateRequest struct {
	Name           string  `json:"name" validate:"required,min=2,max=255"`
	Email          string  `json:"email" validate:"omitempty,email"`
	Phone          string  `json:"phone" validate:"omitempty,max=64"`
	Company        string  `json:"company" validate:"omitempty,max=255"`
	Source         string  `json:"source" validate:"omitempty,max=64"`
	Status         string  `json:"status" validate:"omitempty,oneof=new contacted qualified proposal negotiation"`
	EstimatedValue float64 `json:"estimated_value" validate:"gte=0"`
	AssignedTo     *string `json:"assigned_to" validate:"omitempty,max=36"`
	Notes          string  `json:"notes" validate:"omitempty,max=5000"`
}

// LeadUpdateRequest captures partial lead updates. Status changes go through the status endpoint.
type LeadUpdateRequest struct {
	Name           *string  `json:"name" validate:"omitempty,min=2,max=255"`
	Email          *string  `json:"email" validate:"omitempty,email"`
	Phone          *string  `json:"phone" validate:"omitempty,max=64"`
	Company        *string  `json:"company" validate:"omitempty,max=255"`
	Source         *string  `json:"source" validate:"omitempty,max=64"`
	EstimatedValue *float64 `json:"estimated_value" validate:"omitempty,gte=0"`
	AssignedTo     *string  `json:"assigned_to" validate:"omitempty,max=36"`
	Notes          *string  `json:"notes" validate:"omitempty,max=5000"`
}

// LeadStatusRequest moves a lead through the pipeline.
type LeadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified proposal negotiation closed-won closed-lost"`
}

// LeadConvertRequest optionally overrides the client created from a lead.
type LeadConvertRequest struct {
	Name     string `json:"name" validate:"omitempty,min=2,max=255"`
	Address  string `json:"address" validate:"omitempty,max=2000"`
	Industry string `json:"industry" validate:"omitempty,max=128"`
}

// LeadResponse serializes a lead.
type LeadResponse struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Company        string    `json:"company"`
	Source         string    `json:"source"`
	Status         string    `json:"status"`
	EstimatedValue float64   `json:"estimated_value"`
	AssignedTo     *string   `json:"assigned_to"`
	ClientID       *string   `json:"client_id"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewLeadResponse converts a lead model into a DTO.
func NewLeadResponse(lead models.Lead) LeadResponse {
	return LeadResponse{
		ID:             lead.ID,
		TenantID:       lead.TenantID,
		Name:           lead.Name,
		Email:          lead.Email,
		Phone:          lead.Phone,
		Company:        lead.Company,
		Source:         lead.Source,
		Status:         lead.Status,
		EstimatedValue: lead.EstimatedValue,
		AssignedTo:     lead.AssignedTo,
		ClientID:       lead.ClientID,
		Notes:          lead.Notes,
		CreatedAt:      lead.CreatedAt,
		UpdatedAt:      lead.UpdatedAt,
	}
}

// LeadConvertResponse returns both sides of a conversion.
type LeadConvertResponse struct {
	Lead   LeadResponse   `json:"lead"`
	Client ClientResponse `json:"client"`
}

// PipelineStage aggregates leads at one status.
type PipelineStage struct {
	Status string  `json:"status"`
	Count  int64   `json:"count"`
	Value  float64 `json:"value"`
}

// PipelineResponse summarises the lead pipeline in status order.
type PipelineResponse struct {
	Stages     []PipelineStage `json:"stages"`
	TotalCount int64           `json:"total_count"`
	TotalValue float64         `json:"total_value"`
}

// CommunicationListRequest defines filters for the interaction log.
type CommunicationListRequest struct {
	ListRequest
	ClientID string
	LeadID   string
	Channel  string
}

// CommunicationCreateRequest captures an interaction. Exactly one of ClientID and LeadID is set.
type CommunicationCreateRequest struct {
	ClientID   string     `json:"client_id" validate:"omitempty,max=36"`
	LeadID     string     `json:"lead_id" validate:"omitempty,max=36"`
	Channel    string     `json:"channel" validate:"required,oneof=call email meeting note sms"`
	Direction  string     `json:"direction" validate:"omitempty,oneof=inbound outbound"`
	Subject    string     `json:"subject" validate:"omitempty,max=255"`
	Body       string     `json:"body" validate:"required,max=10000"`
	OccurredAt *time.Time `json:"occurred_at"`
}

// CommunicationResponse serializes an interaction.
type CommunicationResponse struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	ClientID   *string   `json:"client_id"`
	LeadID     *string   `json:"lead_id"`
	Channel    string    `json:"channel"`
	Direction  string    `json:"direction"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewCommunicationResponse converts a communication model into a DTO.
func NewCommunicationResponse(entry models.Communication) CommunicationResponse {
	return CommunicationResponse{
		ID:         entry.ID,
		TenantID:   entry.TenantID,
		ClientID:   entry.ClientID,
		LeadID:     entry.LeadID,
		Channel:    entry.Channel,
		Direction:  entry.Direction,
		Subject:    entry.Subject,
		Body:       entry.Body,
		OccurredAt: entry.OccurredAt,
		CreatedBy:  entry.CreatedBy,
		CreatedAt:  entry.CreatedAt,
	}
}
