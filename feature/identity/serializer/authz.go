package serializer

import (
	"strings"

	"cern-sync/core/utils"
	"cern-sync/feature/identity/models"
)

// AuthzMapper maps one raw AuthZ identity record into a named attribute set.
// Deployments with custom profile schemas inject their own.
type AuthzMapper func(record map[string]any) map[string]any

// AuthzSerializer turns raw AuthZ identity records into canonical identities.
type AuthzSerializer struct {
	profileMapper AuthzMapper
	extraMapper   AuthzMapper
}

// NewAuthzSerializer creates a serializer with the given mapping strategies.
// Nil mappers fall back to the CERN defaults.
func NewAuthzSerializer(profileMapper, extraMapper AuthzMapper) *AuthzSerializer {
	if profileMapper == nil {
		profileMapper = AuthzProfileMapper
	}
	if extraMapper == nil {
		extraMapper = AuthzExtraDataMapper
	}
	return &AuthzSerializer{profileMapper: profileMapper, extraMapper: extraMapper}
}

// Serialize validates and normalizes one raw identity record.
// A missing person id, email or username yields a *ValidationError.
func (s *AuthzSerializer) Serialize(record map[string]any) (models.CanonicalIdentity, error) {
	personID := utils.ToString(record["personId"])
	if personID == "" {
		return models.CanonicalIdentity{}, &ValidationError{Field: "personId", PersonID: "unknown"}
	}
	email := strings.ToLower(utils.ToString(record["primaryAccountEmail"]))
	if email == "" {
		return models.CanonicalIdentity{}, &ValidationError{Field: "primaryAccountEmail", PersonID: personID}
	}
	username := strings.ToLower(utils.ToString(record["upn"]))
	if username == "" {
		return models.CanonicalIdentity{}, &ValidationError{Field: "upn", PersonID: personID}
	}

	// Identities are fetched with the activeUser:true filter; an explicit
	// flag in the record still wins when present.
	active := true
	if v, ok := record["activeUser"].(bool); ok {
		active = v
	}

	locale := strings.ToLower(utils.ToString(record["preferredCernLanguage"]))
	if locale == "" {
		locale = "en"
	}

	return models.CanonicalIdentity{
		PersonID: personID,
		Email:    email,
		Username: username,
		Active:   active,
		Profile:  s.profileMapper(record),
		Preferences: map[string]any{
			"locale": locale,
		},
		ExtraData: s.extraMapper(record),
	}, nil
}

// AuthzProfileMapper is the default mapping from an AuthZ identity record to
// the local profile attribute set.
func AuthzProfileMapper(record map[string]any) map[string]any {
	return map[string]any{
		"cern_department":        utils.ToString(record["cernDepartment"]),
		"cern_group":             utils.ToString(record["cernGroup"]),
		"cern_section":           utils.ToString(record["cernSection"]),
		"family_name":            utils.ToString(record["lastName"]),
		"full_name":              utils.ToString(record["displayName"]),
		"given_name":             utils.ToString(record["firstName"]),
		"institute_abbreviation": utils.ToString(record["instituteAbbreviation"]),
		"institute":              utils.ToString(record["instituteName"]),
		"mailbox":                utils.ToString(record["postOfficeBox"]),
		"person_id":              utils.ToString(record["personId"]),
	}
}

// AuthzExtraDataMapper is the default mapping from an AuthZ identity record
// to the account's extra data.
func AuthzExtraDataMapper(record map[string]any) map[string]any {
	return map[string]any{
		"person_id": utils.ToString(record["personId"]),
		"uidNumber": utils.ToString(record["uid"]),
		"username":  strings.ToLower(utils.ToString(record["upn"])),
	}
}
