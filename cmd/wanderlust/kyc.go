package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lborres/wanderlust/form"
	"github.com/lborres/wanderlust/validate"
)

func KYCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kyc",
		Short: "Verify your identity",
		Long: "Submit identity verification. Personal and document details are read from a JSON file " +
			"using the same field names as the API; document scans and the selfie are read from disk.",
		RunE: runE(runKYC),
	}
	f := cmd.Flags()
	f.String("data", "", "JSON file with personal and document details")
	f.String("front", "", "Front of the document (JPEG, PNG or PDF)")
	f.String("back", "", "Back of the document, not needed for passports")
	f.String("selfie", "", "Selfie holding the document (JPEG or PNG)")
	f.Bool("check", false, "Validate every step without submitting")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

// attach sniffs the file at path, if one was given.
func attach(path string) (*validate.FileRef, error) {
	if path == "" {
		return nil, nil
	}
	return validate.SniffFile(path)
}

func runKYC(cmd *cobra.Command, e *env, _ []string) error {
	ctx := cmd.Context()
	_, user, err := e.signedIn(ctx)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	dataPath, _ := f.GetString("data")
	raw, err := os.ReadFile(dataPath)
	if err != nil {
		return err
	}
	data := form.KYCData{DocumentType: form.DocumentPassport}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parse %s: %w", dataPath, err)
	}

	for flag, ref := range map[string]**validate.FileRef{
		"front":  &data.FrontDocument,
		"back":   &data.BackDocument,
		"selfie": &data.SelfiePhoto,
	} {
		path, _ := f.GetString(flag)
		file, err := attach(path)
		if err != nil {
			return fmt.Errorf("--%s: %w", flag, err)
		}
		if file != nil {
			*ref = file
		}
	}

	provider := form.WithTimeout(&form.SimulatedGateway{Delay: e.cfg.KYCSubmitDelay}, e.cfg.SubmitTimeout)
	w, err := form.NewKYCWizard(user.ID, provider,
		form.WithData(data),
		form.WithLogger[form.KYCData](e.log.With("form", "kyc")),
	)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if check, _ := f.GetBool("check"); check {
		invalid := 0
		for _, step := range []string{form.StepPersonal, form.StepDocuments} {
			fields, err := w.ValidateStep(step)
			if err != nil {
				return err
			}
			if fields.Empty() {
				fmt.Fprintf(out, "%s: ok\n", step)
				continue
			}
			invalid += len(fields)
			printFields(out, step, fields)
		}
		if invalid > 0 {
			return fmt.Errorf("%d invalid field(s)", invalid)
		}
		return nil
	}

	fmt.Fprintln(out, "submitting verification...")
	fields, err := w.Complete(ctx)
	if err != nil {
		return err
	}
	if fields != nil {
		printFields(out, w.Current(), fields)
		return fmt.Errorf("%s step has %d invalid field(s)", w.Current(), len(fields))
	}
	fmt.Fprintln(out, "verification submitted, we will review your documents shortly")
	return nil
}
