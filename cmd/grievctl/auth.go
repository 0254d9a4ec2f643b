package main

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grievease/petition-client-go/internal/register"
)

// newLoginCmd runs the whole two-step sign-in in one process: the OTP
// challenge only exists in memory between password acceptance and code
// verification, so the code is read interactively (or taken from
// --otp for scripted use).
func newLoginCmd(a *app) *cobra.Command {
	var (
		email     string
		password  string
		otp       string
		adminFlow bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email/phone + password, then the emailed code",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := a.auth.SubmitCredentials(ctx, email, password, adminFlow); err != nil {
				return err
			}
			cmd.Println("Password accepted. A one-time code has been sent to your email.")

			if otp != "" {
				if err := a.auth.SubmitOTP(ctx, otp); err != nil {
					return err
				}
			} else {
				reader := bufio.NewReader(cmd.InOrStdin())
				for {
					cmd.Print("Enter code (or 'resend'): ")
					line, err := reader.ReadString('\n')
					if err != nil {
						return err
					}
					line = strings.TrimSpace(line)
					if line == "resend" {
						if err := a.auth.ResendOTP(ctx); err != nil {
							return err
						}
						cmd.Println("Code re-sent.")
						continue
					}
					if err := a.auth.SubmitOTP(ctx, line); err != nil {
						printError(err)
						continue
					}
					break
				}
			}

			session := a.auth.Session()
			cmd.Printf("Signed in as %s (%s)\n", session.FirstName, session.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email or 10-digit phone")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&otp, "otp", "", "one-time code, for non-interactive use")
	cmd.Flags().BoolVar(&adminFlow, "admin", false, "sign in through the officer surface")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

// newOTPCmd exposes the raw code dispatch/verify contract, mostly for
// finishing an email verification outside the login flow.
func newOTPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otp",
		Short: "Send or verify a one-time code directly",
	}

	var email string

	send := &cobra.Command{
		Use:   "send",
		Short: "Dispatch a code to an email address",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.SendOTP(cmd.Context(), email); err != nil {
				return err
			}
			cmd.Println("Code sent.")
			return nil
		},
	}
	send.Flags().StringVar(&email, "email", "", "destination email")
	send.MarkFlagRequired("email")

	var verifyEmail string
	verify := &cobra.Command{
		Use:   "verify <code>",
		Short: "Verify a previously dispatched code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.VerifyOTP(cmd.Context(), verifyEmail, args[0]); err != nil {
				return err
			}
			cmd.Println("Code verified.")
			return nil
		},
	}
	verify.Flags().StringVar(&verifyEmail, "email", "", "email the code was sent to")
	verify.MarkFlagRequired("email")

	cmd.AddCommand(send, verify)
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.auth.SignOut(cmd.Context())
			cmd.Println("Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			session := a.auth.Session()
			if session == nil {
				cmd.Println("Not signed in.")
				return nil
			}
			cmd.Printf("Name:  %s\n", session.FirstName)
			cmd.Printf("Email: %s\n", session.Email)
			cmd.Printf("Role:  %s\n", session.Role)
			if session.IsAdmin() {
				cmd.Printf("Department: %s\n", session.Department)
				if session.Designation != "" {
					cmd.Printf("Designation: %s\n", session.Designation)
				}
			} else {
				cmd.Printf("User id: %d\n", session.UserID)
			}
			cmd.Printf("Expires: %s\n", session.ExpiresAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
}

// newRegisterCmd drives the staged application end to end. The emailed
// verification code is prompted for between the credentials and
// document stages.
func newRegisterCmd(a *app) *cobra.Command {
	var (
		identity register.Identity
		password string
		confirm  string
		doc      register.Document
		code     string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Apply for a citizen account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := register.NewWorkflow(a.client)

			if err := w.SubmitIdentity(ctx, identity); err != nil {
				return err
			}
			if err := w.SubmitCredentials(ctx, register.Credentials{Password: password, Confirm: confirm}); err != nil {
				return err
			}
			cmd.Println("A verification code has been sent to your email.")

			if code == "" {
				reader := bufio.NewReader(cmd.InOrStdin())
				cmd.Print("Enter code: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				code = strings.TrimSpace(line)
			}
			if err := w.SubmitCode(ctx, code); err != nil {
				return err
			}

			userID, err := w.SubmitDocument(ctx, doc)
			if err != nil {
				return err
			}
			cmd.Printf("Registration submitted. Your user id is %d.\n", userID)
			cmd.Println("Sign in with 'grievctl login' to continue.")
			return nil
		},
	}

	cmd.Flags().StringVar(&identity.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&identity.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&identity.Email, "email", "", "email address")
	cmd.Flags().StringVar(&identity.PhoneNumber, "phone", "", "10-digit phone number")
	cmd.Flags().StringVar(&identity.State, "state", "", "state")
	cmd.Flags().StringVar(&identity.District, "district", "", "district")
	cmd.Flags().StringVar(&identity.Taluk, "taluk", "", "taluk")
	cmd.Flags().StringVar(&password, "password", "", "password (min 8 characters)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "password confirmation")
	cmd.Flags().StringVar(&doc.IDType, "id-type", "aadhar", "identity document type")
	cmd.Flags().StringVar(&doc.IDNumber, "id-number", "", "identity document number")
	cmd.Flags().StringVar(&doc.Filename, "document", "", "path to the identity document")
	cmd.Flags().BoolVar(&doc.Consent, "consent", false, "consent to verification of the provided details")
	cmd.Flags().StringVar(&code, "code", "", "verification code, for non-interactive use")
	cmd.MarkFlagRequired("first-name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("phone")
	cmd.MarkFlagRequired("password")
	cmd.MarkFlagRequired("confirm")
	cmd.MarkFlagRequired("id-number")
	cmd.MarkFlagRequired("document")
	return cmd
}
