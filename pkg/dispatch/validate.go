package dispatch

import "github.com/sentinel-surveillance/core/pkg/apperr"

// reservedMetadataKeys are the direct-identifier fields metadata may never
// carry (§3: "metadata carries no direct subject identifiers"; §6: the
// distributor rejects payloads whose metadata keys match the reserved
// identifier set).
var reservedMetadataKeys = map[string]bool{
	"subject_id":      true,
	"subject_name":    true,
	"patient_name":    true,
	"name":            true,
	"national_id":     true,
	"id_number":       true,
	"ssn":             true,
	"passport_number": true,
}

// Validate enforces §4.3's required-field rule (type and message must be
// non-empty) and the reserved-identifier-key rule on metadata. Any other
// payload field is passed through opaquely. Validation never has a side
// effect: a rejected alert is never partially dispatched.
func Validate(a Alert) error {
	if a.Type == "" {
		return apperr.NewValidation("alert is missing required field: type")
	}
	if a.Message == "" {
		return apperr.NewValidation("alert is missing required field: message")
	}
	for key := range a.Metadata {
		if reservedMetadataKeys[key] {
			return apperr.Newf(apperr.Validation, "alert metadata contains reserved subject identifier key %q", key)
		}
	}
	return nil
}
