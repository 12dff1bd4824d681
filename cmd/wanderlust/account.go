package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lborres/wanderlust/core"
)

func SignInCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with email and password",
		RunE: runE(func(cmd *cobra.Command, e *env, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			store, err := e.sessionStore(cmd.Context())
			if err != nil {
				return err
			}
			user, err := store.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", user.Name, user.Email)
			return nil
		}),
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func SignUpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: runE(func(cmd *cobra.Command, e *env, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			name, _ := cmd.Flags().GetString("name")

			store, err := e.sessionStore(cmd.Context())
			if err != nil {
				return err
			}
			user, err := store.SignUp(cmd.Context(), email, password, core.ProfileData{FullName: name})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "welcome, %s\n", user.Name)
			return nil
		}),
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	cmd.Flags().String("name", "", "Full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func SignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the signed-in identity",
		RunE: runE(func(cmd *cobra.Command, e *env, _ []string) error {
			store, err := e.sessionStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		}),
	}
}

func WhoAmICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		RunE: runE(func(cmd *cobra.Command, e *env, _ []string) error {
			store, err := e.sessionStore(cmd.Context())
			if err != nil {
				return err
			}
			user := store.CurrentIdentity()
			if user == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
				return nil
			}

			role := core.RoleUser
			if profile, err := e.dir.Profile(cmd.Context(), user.ID); err == nil {
				role = profile.Role
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> role=%s id=%s\n", user.Name, user.Email, role, user.ID)
			return nil
		}),
	}
}

func ResetPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request a password reset link",
		RunE: runE(func(cmd *cobra.Command, e *env, _ []string) error {
			email, _ := cmd.Flags().GetString("email")

			store, err := e.sessionStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.ResetPassword(cmd.Context(), email); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password reset link sent to %s\n", email)
			return nil
		}),
	}
	cmd.Flags().String("email", "", "Account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func UpdatePasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-password",
		Short: "Change the signed-in user's password",
		RunE: runE(func(cmd *cobra.Command, e *env, _ []string) error {
			password, _ := cmd.Flags().GetString("password")

			store, err := e.sessionStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.UpdatePassword(cmd.Context(), password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "password updated")
			return nil
		}),
	}
	cmd.Flags().String("password", "", "New password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
