package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/validate"
)

var kycNow = time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return kycNow }

func validPersonal(d *KYCData) {
	d.FirstName = "Ana"
	d.LastName = "Silva"
	d.DateOfBirth = "1990-04-12"
	d.Nationality = "Portugal"
	d.PhoneNumber = "+1 (555) 123-4567"
	d.Address = "1 Main St"
	d.City = "Lisbon"
	d.ZipCode = "1000-001"
	d.Country = "Portugal"
}

func validDocuments(d *KYCData) {
	d.DocumentType = DocumentPassport
	d.DocumentNumber = "P1234567"
	d.ExpiryDate = "2030-01-01"
	d.IssuingCountry = "Portugal"
	d.FrontDocument = &validate.FileRef{Name: "front.jpg", MIME: "image/jpeg", Size: 2048}
	d.SelfiePhoto = &validate.FileRef{Name: "me.png", MIME: "image/png", Size: 2048}
}

func newKYC(t *testing.T, provider Submitter) *Wizard[KYCData] {
	t.Helper()
	w, err := NewKYCWizard("user-1", provider, WithClock[KYCData](fixedClock))
	require.NoError(t, err)
	return w
}

func TestKYC_AdvanceFromPersonalWithEmptyFirstName(t *testing.T) {
	w := newKYC(t, &SimulatedGateway{})
	_ = w.Update(func(d *KYCData) {
		validPersonal(d)
		d.FirstName = ""
	})

	errs, err := w.Advance()

	require.NoError(t, err)
	assert.Equal(t, StepPersonal, w.Current())
	assert.Equal(t, validate.Errors{"firstName": "first name is required"}, errs)
}

func TestKYC_RetreatPreservesPersonalFields(t *testing.T) {
	w := newKYC(t, &SimulatedGateway{})
	_ = w.Update(validPersonal)
	_, _ = w.Advance()
	require.Equal(t, StepDocuments, w.Current())

	require.NoError(t, w.Retreat())

	var want KYCData
	want.DocumentType = DocumentPassport
	validPersonal(&want)
	assert.Equal(t, StepPersonal, w.Current())
	assert.Equal(t, want, w.Data())
}

func TestKYC_BackDocumentDependsOnCurrentDocumentType(t *testing.T) {
	tests := []struct {
		name     string
		docType  DocumentType
		back     *validate.FileRef
		wantBack bool
	}{
		{name: "passport needs no back", docType: DocumentPassport},
		{name: "driver license needs back", docType: DocumentDriversLicense, wantBack: true},
		{name: "national id with back", docType: DocumentNationalID, back: &validate.FileRef{Name: "b.pdf", MIME: "application/pdf", Size: 1}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := newKYC(t, &SimulatedGateway{})
			_ = w.Update(validPersonal)
			_, _ = w.Advance()
			_ = w.Update(func(d *KYCData) {
				validDocuments(d)
				d.DocumentType = test.docType
				d.BackDocument = test.back
			})

			errs, err := w.Advance()

			require.NoError(t, err)
			assert.Equal(t, test.wantBack, errs.Has("backDocument"), "errors = %v", errs)
		})
	}
}

func TestKYC_SelfieRejectsPDF(t *testing.T) {
	d := KYCData{}
	validDocuments(&d)
	d.SelfiePhoto = &validate.FileRef{Name: "me.pdf", MIME: "application/pdf", Size: 10}

	errs := validateDocuments(&d, kycNow)

	assert.True(t, errs.Has("selfiePhoto"))
	assert.Len(t, errs, 1)
}

func TestKYC_FullFlow(t *testing.T) {
	var got KYCSubmission
	provider := SubmitterFunc(func(_ context.Context, payload any) error {
		got = payload.(KYCSubmission)
		return nil
	})
	w := newKYC(t, provider)

	_ = w.Update(validPersonal)
	_, _ = w.Advance()
	_ = w.Update(validDocuments)
	_, _ = w.Advance()
	require.Equal(t, StepReview, w.Current())

	errs, err := w.Submit(context.Background())

	require.NoError(t, err)
	assert.Nil(t, errs)
	assert.Equal(t, StepSuccess, w.Current())
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "P1234567", got.Data.DocumentNumber)
}

func TestKYC_SubmitSwitchingDocumentTypeOnReview(t *testing.T) {
	w := newKYC(t, &SimulatedGateway{})
	_ = w.Update(validPersonal)
	_, _ = w.Advance()
	_ = w.Update(validDocuments)
	_, _ = w.Advance()

	// Changing to a two-sided document after the gate re-opens the requirement.
	_ = w.Update(func(d *KYCData) { d.DocumentType = DocumentResidencePermit })
	errs, err := w.Submit(context.Background())

	require.NoError(t, err)
	assert.True(t, errs.Has("backDocument"))
	assert.Equal(t, StepDocuments, w.Current())
}

func TestKYC_ProviderFailureReturnsToReview(t *testing.T) {
	provider := &SimulatedGateway{Fail: func(any) error { return errors.New("provider down") }}
	w := newKYC(t, provider)
	_ = w.Update(validPersonal)
	_, _ = w.Advance()
	_ = w.Update(validDocuments)
	_, _ = w.Advance()

	_, err := w.Submit(context.Background())

	assert.ErrorIs(t, err, core.ErrSubmissionFailed)
	assert.Equal(t, StepReview, w.Current())
	assert.Nil(t, w.Errors())
}
