// Package record defines typed models for the SAS implementation records
// exchanged between peers. The JSON tags mirror the property names the
// schema files declare, so a marshalled record round-trips through the
// validator without issues.
package record

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SasImplementationRecord describes one SAS deployment: identity,
// administrator, contacts, public key, FCC certification and endpoint URL.
type SasImplementationRecord struct {
	ID                 string               `json:"id"`
	Name               string               `json:"name"`
	AdministratorID    string               `json:"administratorId"`
	ContactInformation []ContactInformation `json:"contactInformation"`
	PublicKey          string               `json:"publicKey"`
	FccInformation     FccInformation       `json:"fccInformation"`
	URL                string               `json:"url"`
}

// ContactInformation identifies one person or office responsible for the
// deployment.
type ContactInformation struct {
	Name           string   `json:"name"`
	Title          string   `json:"title,omitempty"`
	Address        string   `json:"address,omitempty"`
	PhoneNumbers   []string `json:"phoneNumbers,omitempty"`
	EmailAddresses []string `json:"emailAddresses,omitempty"`
}

// FccInformation carries the FCC certification of the deployment.
type FccInformation struct {
	CertificationID         string `json:"certificationId"`
	CertificationDate       string `json:"certificationDate,omitempty"`
	CertificationExpiration string `json:"certificationExpiration,omitempty"`
	FrnID                   string `json:"frnId,omitempty"`
}

// NewID assembles a record id from its parts, e.g.
// NewID("sas", "operator", "deployment-1").
func NewID(parts ...string) string {
	return strings.Join(parts, "/")
}

// Marshal serializes the record to JSON.
func (r *SasImplementationRecord) Marshal() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal record %s: %w", r.ID, err)
	}
	return data, nil
}

// Unmarshal parses a record from JSON.
func Unmarshal(data []byte) (*SasImplementationRecord, error) {
	var r SasImplementationRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &r, nil
}
