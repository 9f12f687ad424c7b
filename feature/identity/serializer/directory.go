package serializer

import (
	"strings"

	"cern-sync/feature/identity/models"
)

// DirectoryMapper maps one raw directory record into a named attribute set.
type DirectoryMapper func(record models.DirectoryRecord) map[string]any

// DirectorySerializer turns raw LDAP-style directory records into canonical
// identities.
type DirectorySerializer struct {
	profileMapper DirectoryMapper
	extraMapper   DirectoryMapper
}

// NewDirectorySerializer creates a serializer with the given mapping
// strategies. Nil mappers fall back to the CERN defaults.
func NewDirectorySerializer(profileMapper, extraMapper DirectoryMapper) *DirectorySerializer {
	if profileMapper == nil {
		profileMapper = DirectoryProfileMapper
	}
	if extraMapper == nil {
		extraMapper = DirectoryExtraDataMapper
	}
	return &DirectorySerializer{profileMapper: profileMapper, extraMapper: extraMapper}
}

// Serialize validates and normalizes one raw directory record.
// A missing employee id, mail or cn attribute yields a *ValidationError.
func (s *DirectorySerializer) Serialize(record models.DirectoryRecord) (models.CanonicalIdentity, error) {
	personID, ok := record.First("employeeID")
	if !ok || personID == "" {
		return models.CanonicalIdentity{}, &ValidationError{Field: "employeeID", PersonID: "unknown"}
	}
	email, ok := record.First("mail")
	if !ok || email == "" {
		return models.CanonicalIdentity{}, &ValidationError{Field: "mail", PersonID: personID}
	}
	username, ok := record.First("cn")
	if !ok || username == "" {
		return models.CanonicalIdentity{}, &ValidationError{Field: "cn", PersonID: personID}
	}

	active := strings.EqualFold(record.FirstOrDefault("cernActiveStatus", "Active"), "active")
	locale := strings.ToLower(record.FirstOrDefault("preferredLanguage", "en"))

	return models.CanonicalIdentity{
		PersonID: personID,
		Email:    strings.ToLower(email),
		Username: strings.ToLower(username),
		Active:   active,
		Profile:  s.profileMapper(record),
		Preferences: map[string]any{
			"locale": locale,
		},
		ExtraData: s.extraMapper(record),
	}, nil
}

// DirectoryProfileMapper is the default mapping from a directory record to
// the local profile attribute set.
func DirectoryProfileMapper(record models.DirectoryRecord) map[string]any {
	return map[string]any{
		"cern_department":        record.FirstOrDefault("division", ""),
		"cern_group":             record.FirstOrDefault("cernGroup", ""),
		"cern_section":           record.FirstOrDefault("cernSection", ""),
		"family_name":            record.FirstOrDefault("sn", ""),
		"full_name":              record.FirstOrDefault("displayName", ""),
		"given_name":             record.FirstOrDefault("givenName", ""),
		"institute_abbreviation": record.FirstOrDefault("cernInstituteAbbreviation", ""),
		"institute":              record.FirstOrDefault("cernInstituteName", ""),
		"mailbox":                record.FirstOrDefault("postOfficeBox", ""),
		"person_id":              record.FirstOrDefault("employeeID", ""),
	}
}

// DirectoryExtraDataMapper is the default mapping from a directory record to
// the account's extra data.
func DirectoryExtraDataMapper(record models.DirectoryRecord) map[string]any {
	return map[string]any{
		"person_id": record.FirstOrDefault("employeeID", ""),
		"uidNumber": record.FirstOrDefault("uidNumber", ""),
		"username":  strings.ToLower(record.FirstOrDefault("cn", "")),
	}
}
