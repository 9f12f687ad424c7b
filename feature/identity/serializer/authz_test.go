package serializer_test

import (
	"errors"
	"testing"

	"cern-sync/feature/identity/serializer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authzRecord() map[string]any {
	return map[string]any{
		"personId":              float64(12345),
		"primaryAccountEmail":   "John.Doe@cern.ch",
		"upn":                   "JDoe",
		"displayName":           "John Doe",
		"firstName":             "John",
		"lastName":              "Doe",
		"cernDepartment":        "IT",
		"cernGroup":             "CA",
		"cernSection":           "IR",
		"instituteName":         "CERN",
		"preferredCernLanguage": "FR",
		"uid":                   float64(22222),
		"postOfficeBox":         "M123",
		"activeUser":            true,
	}
}

func TestAuthzSerialize(t *testing.T) {
	s := serializer.NewAuthzSerializer(nil, nil)

	identity, err := s.Serialize(authzRecord())
	require.NoError(t, err)

	assert.Equal(t, "12345", identity.PersonID)
	assert.Equal(t, "john.doe@cern.ch", identity.Email)
	assert.Equal(t, "jdoe", identity.Username)
	assert.True(t, identity.Active)
	assert.Equal(t, "fr", identity.Preferences["locale"])

	assert.Equal(t, "IT", identity.Profile["cern_department"])
	assert.Equal(t, "Doe", identity.Profile["family_name"])
	assert.Equal(t, "John Doe", identity.Profile["full_name"])
	assert.Equal(t, "M123", identity.Profile["mailbox"])

	assert.Equal(t, "12345", identity.ExtraData["person_id"])
	assert.Equal(t, "22222", identity.ExtraData["uidNumber"])
	assert.Equal(t, "jdoe", identity.ExtraData["username"])
}

func TestAuthzSerializeDefaults(t *testing.T) {
	record := authzRecord()
	delete(record, "preferredCernLanguage")
	delete(record, "activeUser")

	s := serializer.NewAuthzSerializer(nil, nil)
	identity, err := s.Serialize(record)
	require.NoError(t, err)

	assert.Equal(t, "en", identity.Preferences["locale"])
	assert.True(t, identity.Active)
}

func TestAuthzSerializeMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		field string
	}{
		{"missing person id", "personId"},
		{"missing email", "primaryAccountEmail"},
		{"missing username", "upn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := authzRecord()
			delete(record, tt.field)

			s := serializer.NewAuthzSerializer(nil, nil)
			_, err := s.Serialize(record)

			var vErr *serializer.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestAuthzSerializeCustomMappers(t *testing.T) {
	profile := func(record map[string]any) map[string]any {
		return map[string]any{"only": "profile"}
	}
	extra := func(record map[string]any) map[string]any {
		return map[string]any{"only": "extra"}
	}

	s := serializer.NewAuthzSerializer(profile, extra)
	identity, err := s.Serialize(authzRecord())
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"only": "profile"}, identity.Profile)
	assert.Equal(t, map[string]any{"only": "extra"}, identity.ExtraData)
}
