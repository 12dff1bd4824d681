package form

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/validate"
)

const (
	StepDetails   = "details"
	StepPayment   = "payment"
	StepConfirmed = "confirmed"
)

var (
	ServiceFee = decimal.NewFromInt(99)
	TaxRate    = decimal.RequireFromString("0.12")
)

// Quote is the price breakdown shown on the review step.
type Quote struct {
	Base       decimal.Decimal `json:"base"`
	ServiceFee decimal.Decimal `json:"serviceFee"`
	Taxes      decimal.Decimal `json:"taxes"`
	Total      decimal.Decimal `json:"total"`
}

// PriceQuote computes price per guest times guests, plus the flat service
// fee and taxes rounded to whole units.
func PriceQuote(price decimal.Decimal, guests int) Quote {
	base := price.Mul(decimal.NewFromInt(int64(guests)))
	taxes := base.Mul(TaxRate).Round(0)
	return Quote{
		Base:       base,
		ServiceFee: ServiceFee,
		Taxes:      taxes,
		Total:      base.Add(ServiceFee).Add(taxes),
	}
}

type CheckoutData struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Guests    int    `json:"guests"`

	CardNumber     string `json:"cardNumber"`
	CardExpiry     string `json:"expiryDate"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholderName"`
	BillingAddress string `json:"billingAddress"`
	City           string `json:"city"`
	ZipCode        string `json:"zipCode"`
	Country        string `json:"country"`
}

// PaymentRequest is the payload handed to the payment gateway. Only the last
// four card digits leave the form.
type PaymentRequest struct {
	UserID        string          `json:"userId"`
	DestinationID string          `json:"destinationId"`
	Amount        decimal.Decimal `json:"amount"`
	CardLast4     string          `json:"cardLast4"`
	Cardholder    string          `json:"cardholder"`
}

// Booker records a booking as pending, then confirms or cancels it.
type Booker interface {
	CreateBooking(ctx context.Context, in core.BookingInput) (*core.Booking, error)
	ConfirmBooking(ctx context.Context, id string) (*core.Booking, error)
	CancelBooking(ctx context.Context, userID, id string) (*core.Booking, error)
}

func validateDetails(d *CheckoutData, now time.Time) validate.Errors {
	errs := validate.Errors{}
	errs.Check("startDate", validate.StartDate(d.StartDate, now))
	errs.Check("endDate", validate.EndDate(d.StartDate, d.EndDate))
	errs.Check("guests", validate.Guests(d.Guests))
	return errs
}

func validatePayment(d *CheckoutData, now time.Time) validate.Errors {
	errs := validate.Errors{}
	errs.Check("cardNumber", validate.CardNumber(d.CardNumber))
	errs.Check("expiryDate", validate.CardExpiry(d.CardExpiry, now))
	errs.Check("cvv", validate.CVV(d.CVV))
	errs.Check("cardholderName", validate.Name("cardholder name", d.CardholderName))
	errs.Check("billingAddress", validate.Required("billing address", d.BillingAddress))
	errs.Check("city", validate.Required("city", d.City))
	errs.Check("zipCode", validate.PostalCode(d.ZipCode))
	errs.Check("country", validate.Required("country", d.Country))
	return errs
}

// CheckoutSteps is details, review, payment, confirmed.
func CheckoutSteps() []Step[CheckoutData] {
	return []Step[CheckoutData]{
		{Name: StepDetails, Validate: validateDetails},
		{Name: StepReview},
		{Name: StepPayment, Validate: validatePayment},
		{Name: StepConfirmed},
	}
}

// Checkout books one destination for one user. Submitting records a pending
// booking, charges the gateway, then confirms the booking. A retried submit
// resumes at the step that failed, so the card is charged at most once.
type Checkout struct {
	*Wizard[CheckoutData]

	userID      string
	destination core.Destination

	mu      sync.Mutex
	pending *core.Booking
	paid    bool
	booking *core.Booking
}

func NewCheckout(userID string, destination core.Destination, gateway Submitter, booker Booker, opts ...Option[CheckoutData]) (*Checkout, error) {
	c := &Checkout{userID: userID, destination: destination}
	opts = append([]Option[CheckoutData]{WithData(CheckoutData{Guests: 1})}, opts...)

	w, err := New(CheckoutSteps(), func(ctx context.Context, data CheckoutData) error {
		return c.complete(ctx, data, gateway, booker)
	}, opts...)
	if err != nil {
		return nil, err
	}
	c.Wizard = w
	return c, nil
}

func (c *Checkout) Destination() core.Destination { return c.destination }

// Quote prices the current guest count.
func (c *Checkout) Quote() Quote {
	return PriceQuote(c.destination.Price, c.Data().Guests)
}

// Booking returns the confirmed booking once the checkout has completed.
func (c *Checkout) Booking() *core.Booking {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.booking
}

func (c *Checkout) complete(ctx context.Context, data CheckoutData, gateway Submitter, booker Booker) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	quote := PriceQuote(c.destination.Price, data.Guests)

	// Dates were validated by the details step.
	start, _ := validate.ParseDate(data.StartDate)
	end, _ := validate.ParseDate(data.EndDate)
	in := core.BookingInput{
		UserID:        c.userID,
		DestinationID: c.destination.ID,
		StartDate:     start,
		EndDate:       end,
		Guests:        data.Guests,
		TotalPrice:    quote.Total,
	}

	if c.pending == nil {
		booking, err := booker.CreateBooking(ctx, in)
		if err != nil {
			return fmt.Errorf("record booking: %w", err)
		}
		c.pending = booking
	}

	if !c.paid {
		card := strings.ReplaceAll(data.CardNumber, " ", "")
		err := gateway.Submit(ctx, PaymentRequest{
			UserID:        c.userID,
			DestinationID: c.destination.ID,
			Amount:        c.pending.TotalPrice,
			CardLast4:     card[len(card)-4:],
			Cardholder:    data.CardholderName,
		})
		if err != nil {
			c.release(ctx, booker)
			return submitFailed("payment", err)
		}
		c.paid = true
	}

	confirmed, err := booker.ConfirmBooking(ctx, c.pending.ID)
	if err != nil {
		return fmt.Errorf("confirm booking %s: %w", c.pending.ID, err)
	}
	c.booking = confirmed
	return nil
}

// release cancels the unpaid pending booking and forgets it.
func (c *Checkout) release(ctx context.Context, booker Booker) {
	if _, err := booker.CancelBooking(context.WithoutCancel(ctx), c.userID, c.pending.ID); err != nil {
		c.log.Warn("failed to cancel pending booking", "booking_id", c.pending.ID, "error", err)
	}
	c.pending = nil
}

