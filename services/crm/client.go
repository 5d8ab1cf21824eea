package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"consultly/models"
)

// HTTPProvider talks to a HubSpot-style contacts REST API with a bearer
// token. A single long-lived client is constructed at the composition root.
type HTTPProvider struct {
	baseURL string
	token   string
	client  *http.Client
	enabled bool
}

// NewHTTPProvider returns a CRM client for the given API base URL.
func NewHTTPProvider(baseURL, token string, enabled bool) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		enabled: enabled,
	}
}

func (p *HTTPProvider) Enabled() bool {
	return p.enabled
}

type contactRecord struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

type searchResponse struct {
	Total   int             `json:"total"`
	Results []contactRecord `json:"results"`
}

func (p *HTTPProvider) UpsertContact(ctx context.Context, input models.ContactInput) (*models.Contact, error) {
	properties := map[string]string{
		"email":     input.Email,
		"firstname": input.FirstName,
		"lastname":  input.LastName,
		"company":   input.Company,
		"phone":     input.Phone,
	}
	for k, v := range input.CustomProperties {
		properties[k] = v
	}

	existing, err := p.SearchContactByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := p.UpdateContact(ctx, existing.ID, properties); err != nil {
			return nil, err
		}
		existing.Properties = properties
		return existing, nil
	}

	var created contactRecord
	body := map[string]any{"properties": properties}
	if err := p.do(ctx, http.MethodPost, "/crm/v3/objects/contacts", body, &created); err != nil {
		return nil, fmt.Errorf("failed to create crm contact: %w", err)
	}
	return recordToContact(created), nil
}

func (p *HTTPProvider) SearchContactByEmail(ctx context.Context, email string) (*models.Contact, error) {
	body := map[string]any{
		"filterGroups": []map[string]any{{
			"filters": []map[string]any{{
				"propertyName": "email",
				"operator":     "EQ",
				"value":        email,
			}},
		}},
		"limit": 1,
	}

	var res searchResponse
	if err := p.do(ctx, http.MethodPost, "/crm/v3/objects/contacts/search", body, &res); err != nil {
		return nil, fmt.Errorf("failed to search crm contact: %w", err)
	}
	if len(res.Results) == 0 {
		return nil, nil
	}
	return recordToContact(res.Results[0]), nil
}

func (p *HTTPProvider) UpdateContact(ctx context.Context, id string, properties map[string]string) error {
	body := map[string]any{"properties": properties}
	if err := p.do(ctx, http.MethodPatch, "/crm/v3/objects/contacts/"+id, body, nil); err != nil {
		return fmt.Errorf("failed to update crm contact %s: %w", id, err)
	}
	return nil
}

func (p *HTTPProvider) do(ctx context.Context, method, path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode crm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build crm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("crm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("crm returned status %d: %s", resp.StatusCode, string(msg))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode crm response: %w", err)
	}
	return nil
}

func recordToContact(rec contactRecord) *models.Contact {
	return &models.Contact{
		ID:         rec.ID,
		Email:      rec.Properties["email"],
		FirstName:  rec.Properties["firstname"],
		LastName:   rec.Properties["lastname"],
		Company:    rec.Properties["company"],
		Phone:      rec.Properties["phone"],
		Properties: rec.Properties,
	}
}
