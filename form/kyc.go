package form

import (
	"context"
	"time"

	"github.com/lborres/wanderlust/validate"
)

const (
	StepPersonal  = "personal"
	StepDocuments = "documents"
	StepReview    = "review"
	StepSuccess   = "success"
)

type DocumentType string

const (
	DocumentPassport        DocumentType = "passport"
	DocumentDriversLicense  DocumentType = "drivers_license"
	DocumentNationalID      DocumentType = "national_id"
	DocumentResidencePermit DocumentType = "residence_permit"
)

var DocumentTypes = []DocumentType{DocumentPassport, DocumentDriversLicense, DocumentNationalID, DocumentResidencePermit}

func (d DocumentType) Valid() bool {
	for _, t := range DocumentTypes {
		if d == t {
			return true
		}
	}
	return false
}

// NeedsBackSide reports whether the document has a second side to upload.
func (d DocumentType) NeedsBackSide() bool {
	return d != DocumentPassport
}

// KYCData is the identity verification form. It is held only in memory and
// discarded after submission.
type KYCData struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
	Nationality string `json:"nationality"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
	Country     string `json:"country"`

	DocumentType   DocumentType `json:"documentType"`
	DocumentNumber string       `json:"documentNumber"`
	ExpiryDate     string       `json:"expiryDate"`
	IssuingCountry string       `json:"issuingCountry"`

	FrontDocument *validate.FileRef `json:"frontDocument,omitempty"`
	BackDocument  *validate.FileRef `json:"backDocument,omitempty"`
	SelfiePhoto   *validate.FileRef `json:"selfiePhoto,omitempty"`
}

// KYCSubmission is the payload handed to the verification provider.
type KYCSubmission struct {
	UserID string  `json:"userId"`
	Data   KYCData `json:"data"`
}

func validatePersonal(d *KYCData, now time.Time) validate.Errors {
	errs := validate.Errors{}
	errs.Check("firstName", validate.Name("first name", d.FirstName))
	errs.Check("lastName", validate.Name("last name", d.LastName))
	errs.Check("dateOfBirth", validate.DateOfBirth(d.DateOfBirth, now))
	errs.Check("nationality", validate.Required("nationality", d.Nationality))
	errs.Check("phoneNumber", validate.Phone(d.PhoneNumber))
	errs.Check("address", validate.Required("address", d.Address))
	errs.Check("city", validate.Required("city", d.City))
	errs.Check("zipCode", validate.PostalCode(d.ZipCode))
	errs.Check("country", validate.Required("country", d.Country))
	return errs
}

func validateDocuments(d *KYCData, now time.Time) validate.Errors {
	errs := validate.Errors{}
	if !d.DocumentType.Valid() {
		errs["documentType"] = "please select a document type"
	}
	errs.Check("documentNumber", validate.DocumentNumber(d.DocumentNumber))
	errs.Check("expiryDate", validate.DocumentExpiry(d.ExpiryDate, now))
	errs.Check("issuingCountry", validate.Required("issuing country", d.IssuingCountry))
	errs.Check("frontDocument", validate.File("front of document", d.FrontDocument, validate.KindDocument, true))
	errs.Check("backDocument", validate.File("back of document", d.BackDocument, validate.KindDocument, d.DocumentType.NeedsBackSide()))
	errs.Check("selfiePhoto", validate.File("selfie", d.SelfiePhoto, validate.KindSelfie, true))
	return errs
}

// KYCSteps is personal, documents, review, success.
func KYCSteps() []Step[KYCData] {
	return []Step[KYCData]{
		{Name: StepPersonal, Validate: validatePersonal},
		{Name: StepDocuments, Validate: validateDocuments},
		{Name: StepReview},
		{Name: StepSuccess},
	}
}

// NewKYCWizard starts an identity verification form for userID. The provider
// receives a KYCSubmission.
func NewKYCWizard(userID string, provider Submitter, opts ...Option[KYCData]) (*Wizard[KYCData], error) {
	opts = append([]Option[KYCData]{WithData(KYCData{DocumentType: DocumentPassport})}, opts...)

	return New(KYCSteps(), func(ctx context.Context, data KYCData) error {
		if err := provider.Submit(ctx, KYCSubmission{UserID: userID, Data: data}); err != nil {
			return submitFailed("identity verification", err)
		}
		return nil
	}, opts...)
}
