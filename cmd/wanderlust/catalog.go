package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/form"
	"github.com/lborres/wanderlust/services"
	"github.com/lborres/wanderlust/validate"
)

func DestinationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "destinations",
		Aliases: []string{"ls"},
		Short:   "Browse destinations",
		RunE: runE(func(cmd *cobra.Command, e *env, _ []string) error {
			category, _ := cmd.Flags().GetString("category")
			featured, _ := cmd.Flags().GetBool("featured")
			sortBy, _ := cmd.Flags().GetString("sort")

			list, err := e.ledger.ListDestinations(cmd.Context(), services.DestinationFilter{
				Category:     core.Category(category),
				FeaturedOnly: featured,
				Sort:         services.SortBy(sortBy),
			})
			if err != nil {
				return err
			}
			printDestinations(cmd.OutOrStdout(), list)
			return nil
		}),
	}
	cmd.Flags().String("category", "", "Only show one category: beach, mountain, city, adventure, cultural")
	cmd.Flags().Bool("featured", false, "Only show featured destinations")
	cmd.Flags().String("sort", "", "Sort by rating, price or name")
	return cmd
}

func printDestinations(w io.Writer, list []*core.Destination) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOUNTRY\tCATEGORY\tPRICE\tRATING\tDURATION")
	for _, d := range list {
		name := d.Name
		if d.Featured {
			name += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t$%s\t%.1f\t%s\n", d.ID, name, d.Country, d.Category, d.Price.StringFixed(2), d.Rating, d.Duration)
	}
	_ = tw.Flush()
}

func BookingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bookings",
		Short: "List your bookings",
		RunE: runE(func(cmd *cobra.Command, e *env, _ []string) error {
			_, user, err := e.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			list, err := e.ledger.GetUserBookings(cmd.Context(), user.ID)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no bookings yet")
				return nil
			}
			printBookings(cmd.OutOrStdout(), list)
			return nil
		}),
	}
}

func printBookings(w io.Writer, list []*core.Booking) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDESTINATION\tDATES\tGUESTS\tTOTAL\tSTATUS")
	for _, b := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s - %s\t%d\t$%s\t%s\n",
			b.ID, b.Destination.Name,
			b.StartDate.Format(validate.DateLayout), b.EndDate.Format(validate.DateLayout),
			b.Guests, b.TotalPrice.StringFixed(2), b.Status)
	}
	_ = tw.Flush()
}

func BookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book DESTINATION",
		Short: "Pay for and confirm a trip",
		Args:  cobra.ExactArgs(1),
		RunE:  runE(runBook),
	}
	f := cmd.Flags()
	f.String("start", "", "Check-in date (YYYY-MM-DD)")
	f.String("end", "", "Check-out date (YYYY-MM-DD)")
	f.Int("guests", 1, "Number of guests")
	f.String("card", "", "Card number")
	f.String("expiry", "", "Card expiry (MM/YY)")
	f.String("cvv", "", "Card security code")
	f.String("cardholder", "", "Name on the card")
	f.String("address", "", "Billing address")
	f.String("city", "", "Billing city")
	f.String("zip", "", "Billing postal code")
	f.String("country", "", "Billing country")
	return cmd
}

// findDestination resolves ref as an id, then as a case-insensitive name.
// Ids of the in-memory catalog change on every run, names do not.
func findDestination(cmd *cobra.Command, e *env, ref string) (*core.Destination, error) {
	dest, err := e.ledger.GetDestination(cmd.Context(), ref)
	if err == nil || !errors.Is(err, core.ErrDestinationNotFound) {
		return dest, err
	}

	list, lerr := e.ledger.ListDestinations(cmd.Context(), services.DestinationFilter{})
	if lerr != nil {
		return nil, lerr
	}
	for _, d := range list {
		if strings.EqualFold(d.Name, ref) {
			return d, nil
		}
	}
	return nil, err
}

func runBook(cmd *cobra.Command, e *env, args []string) error {
	ctx := cmd.Context()
	_, user, err := e.signedIn(ctx)
	if err != nil {
		return err
	}

	dest, err := findDestination(cmd, e, args[0])
	if err != nil {
		return err
	}

	f := cmd.Flags()
	var data form.CheckoutData
	data.StartDate, _ = f.GetString("start")
	data.EndDate, _ = f.GetString("end")
	data.Guests, _ = f.GetInt("guests")
	data.CardNumber, _ = f.GetString("card")
	data.CardExpiry, _ = f.GetString("expiry")
	data.CVV, _ = f.GetString("cvv")
	data.CardholderName, _ = f.GetString("cardholder")
	data.BillingAddress, _ = f.GetString("address")
	data.City, _ = f.GetString("city")
	data.ZipCode, _ = f.GetString("zip")
	data.Country, _ = f.GetString("country")

	gateway := form.WithTimeout(&form.SimulatedGateway{Delay: e.cfg.PaymentDelay}, e.cfg.SubmitTimeout)
	co, err := form.NewCheckout(user.ID, *dest, gateway, e.ledger,
		form.WithData(data),
		form.WithLogger[form.CheckoutData](e.log.With("form", "checkout")),
	)
	if err != nil {
		return err
	}

	q := co.Quote()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s, %s: $%s + $%s service fee + $%s taxes = $%s\n",
		dest.Name, dest.Country, q.Base.StringFixed(2), q.ServiceFee.StringFixed(2), q.Taxes.StringFixed(2), q.Total.StringFixed(2))
	fmt.Fprintln(out, "processing payment...")

	fields, err := co.Complete(ctx)
	if err != nil {
		return err
	}
	if fields != nil {
		printFields(out, co.Current(), fields)
		return fmt.Errorf("%s step has %d invalid field(s)", co.Current(), len(fields))
	}

	b := co.Booking()
	fmt.Fprintf(out, "booking %s %s for %d guest(s), %s to %s\n",
		b.ID, b.Status, b.Guests, b.StartDate.Format(validate.DateLayout), b.EndDate.Format(validate.DateLayout))
	return nil
}

func printFields(w io.Writer, step string, fields validate.Errors) {
	fmt.Fprintf(w, "%s:\n", strings.ToUpper(step))
	for _, name := range fields.Fields() {
		fmt.Fprintf(w, "  %s: %s\n", name, fields[name])
	}
}
