package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContact() Contact {
	note := "met at conf"
	return Contact{
		ID:             4,
		FirstName:      "Ann",
		LastName:       "Lee",
		Email:          "ann@x.com",
		PhoneNumber:    "555",
		Birthday:       NewDate(2000, 1, 1),
		AdditionalInfo: &note,
		UserID:         7,
	}
}

func TestContactPatch_ApplyOnlyPresentFields(t *testing.T) {
	var p ContactPatch
	require.NoError(t, json.Unmarshal([]byte(`{"phone_number":"777"}`), &p))

	c := sampleContact()
	before := c
	p.Apply(&c)

	assert.Equal(t, "777", c.PhoneNumber)
	c.PhoneNumber = before.PhoneNumber
	assert.Equal(t, before, c)
	assert.Equal(t, map[string]any{"phone_number": "777"}, p.Columns())
}

func TestContactPatch_AllFields(t *testing.T) {
	var p ContactPatch
	body := `{"first_name":"Bo","last_name":"Kim","email":"bo@x.com","phone_number":"1",
		"birthday":"1990-12-31","additional_info":"note"}`
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	c := sampleContact()
	p.Apply(&c)
	assert.Equal(t, "Bo", c.FirstName)
	assert.Equal(t, "Kim", c.LastName)
	assert.Equal(t, "bo@x.com", c.Email)
	assert.Equal(t, "1", c.PhoneNumber)
	assert.True(t, c.Birthday.Equal(NewDate(1990, 12, 31)))
	require.NotNil(t, c.AdditionalInfo)
	assert.Equal(t, "note", *c.AdditionalInfo)
	assert.Len(t, p.Columns(), 6)
	assert.Equal(t, uint(7), c.UserID)
}

func TestContactPatch_Empty(t *testing.T) {
	var p ContactPatch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	assert.True(t, p.Empty())
}

func TestContactInput_NewContactUsesOwner(t *testing.T) {
	var in ContactInput
	body := `{"first_name":"Ann","last_name":"Lee","email":"ann@x.com","phone_number":"555",
		"birthday":"2000-01-01","user_id":99}`
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	require.NoError(t, in.Validate())

	c := in.NewContact(7)
	assert.Equal(t, uint(7), c.UserID)
	assert.Equal(t, "2000-01-01", c.Birthday.String())
}

func TestContactInput_BirthdayRequired(t *testing.T) {
	in := ContactInput{FirstName: "Ann"}
	assert.ErrorIs(t, in.Validate(), ErrBirthdayRequired)
}

func TestContactInput_PatchReplacesAll(t *testing.T) {
	in := ContactInput{
		FirstName: "Ann", LastName: "Lee", Email: "ann@x.com",
		PhoneNumber: "555", Birthday: NewDate(1990, 5, 1),
	}
	cols := in.Patch().Columns()
	assert.Len(t, cols, 6)
	assert.Contains(t, cols, "additional_info")
	assert.Nil(t, cols["additional_info"])
	assert.Equal(t, "ann@x.com", cols["email"])

	note := "met at work"
	c := Contact{AdditionalInfo: &note}
	in.Patch().Apply(&c)
	assert.Nil(t, c.AdditionalInfo)

	other := "neighbour"
	in.AdditionalInfo = &other
	cols = in.Patch().Columns()
	assert.Equal(t, "neighbour", cols["additional_info"])
	in.Patch().Apply(&c)
	require.NotNil(t, c.AdditionalInfo)
	assert.Equal(t, "neighbour", *c.AdditionalInfo)
}

func TestContactPatch_OmittedInfoIsKept(t *testing.T) {
	phone := "777"
	note := "met at work"
	c := Contact{PhoneNumber: "555", AdditionalInfo: &note}
	p := ContactPatch{PhoneNumber: &phone}
	assert.NotContains(t, p.Columns(), "additional_info")
	p.Apply(&c)
	assert.Equal(t, "777", c.PhoneNumber)
	assert.Equal(t, "met at work", *c.AdditionalInfo)
}
