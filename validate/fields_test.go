package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, time.October, 16, 10, 30, 0, 0, time.UTC)

func TestName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr string
	}{
		{name: "simple", value: "Ana"},
		{name: "hyphen and apostrophe", value: "Mary-Jane O'Neil"},
		{name: "accented", value: "Zoë Ångström"},
		{name: "empty", value: "", wantErr: "first name is required"},
		{name: "blank", value: "   ", wantErr: "first name is required"},
		{name: "too short", value: "A", wantErr: "first name must be at least 2 characters"},
		{name: "digits", value: "R2D2", wantErr: "first name can only contain letters, spaces, hyphens and apostrophes"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := Name("first name", test.value)

			if test.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, test.wantErr)
		})
	}
}

func TestDateOfBirth(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "exactly 18 today", value: "2008-10-16", wantErr: false},
		{name: "one day short of 18", value: "2008-10-17", wantErr: true},
		{name: "exactly 120", value: "1906-10-16", wantErr: false},
		{name: "121 years old", value: "1905-10-16", wantErr: true},
		{name: "birthday later this year still 30", value: "1995-12-01", wantErr: false},
		{name: "empty", value: "", wantErr: true},
		{name: "not a date", value: "16/10/2000", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := DateOfBirth(test.value, testNow)

			assert.Equal(t, test.wantErr, err != nil, "DateOfBirth(%q) error = %v", test.value, err)
		})
	}
}

func TestAge(t *testing.T) {
	dob := time.Date(2000, time.February, 29, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 25, Age(dob, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 26, Age(dob, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPhone(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{value: "+1 (555) 123-4567"},
		{value: "0044 20 7946 0958"},
		{value: "555.123.4567"},
		{value: "12345", wantErr: true},
		{value: "", wantErr: true},
		{value: "+1 555 CALL NOW", wantErr: true},
		{value: "1234567890123456", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.value, func(t *testing.T) {
			err := Phone(test.value)

			assert.Equal(t, test.wantErr, err != nil, "Phone(%q) error = %v", test.value, err)
		})
	}
}

func TestPostalCode(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{value: "94105"},
		{value: "SW1A 1AA"},
		{value: "1010-A"},
		{value: "12", wantErr: true},
		{value: "12345678901", wantErr: true},
		{value: "941#05", wantErr: true},
		{value: " ", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.value, func(t *testing.T) {
			err := PostalCode(test.value)

			assert.Equal(t, test.wantErr, err != nil, "PostalCode(%q) error = %v", test.value, err)
		})
	}
}

func TestDocumentNumber(t *testing.T) {
	assert.NoError(t, DocumentNumber("X1234567"))
	assert.NoError(t, DocumentNumber("AB-12345"))
	assert.Error(t, DocumentNumber(""))
	assert.Error(t, DocumentNumber("1234"))
	assert.Error(t, DocumentNumber("AB 12345"))
	assert.Error(t, DocumentNumber("A123456789012345678901"))
}

func TestDocumentExpiry(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr string
	}{
		{name: "next year", value: "2027-05-01"},
		{name: "tomorrow", value: "2026-10-17"},
		{name: "exactly twenty years ahead", value: "2046-10-16"},
		{name: "today has expired", value: "2026-10-16", wantErr: "document has expired"},
		{name: "past", value: "2020-01-01", wantErr: "document has expired"},
		{name: "too far ahead", value: "2046-10-17", wantErr: "please enter a valid expiry date"},
		{name: "empty", value: "", wantErr: "expiry date is required"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := DocumentExpiry(test.value, testNow)

			if test.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, test.wantErr)
		})
	}
}

func TestErrors(t *testing.T) {
	errs := Errors{}
	errs.Check("firstName", Name("first name", ""))
	errs.Check("firstName", Name("first name", "1"))
	errs.Check("lastName", Name("last name", "Smith"))

	assert.True(t, errs.Has("firstName"))
	assert.False(t, errs.Has("lastName"))
	assert.Equal(t, "first name is required", errs["firstName"])

	errs.Merge(Errors{"firstName": "ignored", "phone": "bad"})
	assert.Equal(t, []string{"firstName", "phone"}, errs.Fields())
	assert.Equal(t, "validation failed: firstName: first name is required; phone: bad", errs.Error())
	assert.True(t, Errors(nil).Empty())
}
