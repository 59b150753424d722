package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ReasonCode identifies why a company ended up in email_not_generated.
type ReasonCode string

const (
	ReasonNoApolloID         ReasonCode = "no_apollo_id"
	ReasonNoValidContact     ReasonCode = "no_valid_contact_found"
	ReasonContactNoEmail     ReasonCode = "contact_found_no_email"
	ReasonGenerationFailed   ReasonCode = "email_generation_failed"
	generationFailedPrefix              = "email_generation_failed: "
)

// NotGeneratedReason is a closed set of failure reasons. Only the
// generation-failed variant carries extra detail.
type NotGeneratedReason struct {
	Code   ReasonCode
	Detail string // non-empty only for ReasonGenerationFailed
}

// NoApolloID constructs the reason for a company without a provider org id.
func NoApolloID() NotGeneratedReason {
	return NotGeneratedReason{Code: ReasonNoApolloID}
}

// NoValidContact constructs the reason for a failed contact search.
func NoValidContact() NotGeneratedReason {
	return NotGeneratedReason{Code: ReasonNoValidContact}
}

// ContactNoEmail constructs the reason for a contact without a usable email.
func ContactNoEmail() NotGeneratedReason {
	return NotGeneratedReason{Code: ReasonContactNoEmail}
}

// GenerationFailed constructs the reason for a draft generation failure.
func GenerationFailed(detail string) NotGeneratedReason {
	return NotGeneratedReason{Code: ReasonGenerationFailed, Detail: detail}
}

// String renders the reason the way it is stored and shown to operators.
func (r NotGeneratedReason) String() string {
	if r.Code == ReasonGenerationFailed && r.Detail != "" {
		return generationFailedPrefix + r.Detail
	}
	return string(r.Code)
}

// reasonPayload is the stored JSON shape.
type reasonPayload struct {
	Reason string `json:"reason"`
}

// MarshalJSON stores the reason as {"reason": "<code or code: detail>"}.
func (r NotGeneratedReason) MarshalJSON() ([]byte, error) {
	return json.Marshal(reasonPayload{Reason: r.String()})
}

// UnmarshalJSON restores a reason from its stored form.
func (r *NotGeneratedReason) UnmarshalJSON(data []byte) error {
	var payload reasonPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	parsed, err := ParseReason(payload.Reason)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseReason converts stored reason text back into the closed variant.
func ParseReason(raw string) (NotGeneratedReason, error) {
	switch ReasonCode(raw) {
	case ReasonNoApolloID, ReasonNoValidContact, ReasonContactNoEmail:
		return NotGeneratedReason{Code: ReasonCode(raw)}, nil
	case ReasonGenerationFailed:
		return NotGeneratedReason{Code: ReasonGenerationFailed}, nil
	}
	if strings.HasPrefix(raw, generationFailedPrefix) {
		return GenerationFailed(strings.TrimPrefix(raw, generationFailedPrefix)), nil
	}
	return NotGeneratedReason{}, fmt.Errorf("unknown not-generated reason %q", raw)
}
