package models

// Contact is the CRM-side representation of a booking requester.
type Contact struct {
	ID         string            `json:"id"`
	Email      string            `json:"email"`
	FirstName  string            `json:"firstName"`
	LastName   string            `json:"lastName,omitempty"`
	Company    string            `json:"company,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// ContactInput is the upsert payload sent to the CRM provider.
type ContactInput struct {
	Email            string            `json:"email"`
	FirstName        string            `json:"firstName"`
	LastName         string            `json:"lastName,omitempty"`
	Company          string            `json:"company,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	CustomProperties map[string]string `json:"customProperties,omitempty"`
}
