package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/forgeboard/internal/db"
	"github.com/terraincognita07/forgeboard/internal/security"
	"github.com/terraincognita07/forgeboard/internal/services"
)

const temporaryPasswordLength = 16

type ResetPasswordOptions struct {
	*RootOptions
	Email    string
	Generate bool

	// ReadPassword overrides the terminal prompt (for testing).
	ReadPassword func() ([]byte, error)
}

func NewResetPasswordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetPasswordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for the owner account",
		Long: `Set a new password for the owner account.

Without --generate the new password is read from the terminal with echo
disabled. With --generate a random temporary password is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResetPassword(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "owner email (required)")
	cmd.Flags().BoolVar(&opts.Generate, "generate", false, "generate a temporary password")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runResetPassword(opts *ResetPasswordOptions, out io.Writer) error {
	email := services.NormalizeAuthEmail(opts.Email)
	if email == "" {
		return errors.New("a valid email is required")
	}

	password, err := resolveNewPassword(opts, out)
	if err != nil {
		return err
	}

	_, database, closeDatabase, err := loadEnvironment(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeDatabase()

	auth := services.NewAuthService(db.NewUserRepository(database))
	if _, err := auth.ResetPassword(email, password); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return fmt.Errorf("user %s not found", email)
		case errors.Is(err, services.ErrWeakPassword):
			return fmt.Errorf("password must be 8 characters, at most 72 bytes, with upper, lower case letters and a digit (%v)", err)
		default:
			return fmt.Errorf("reset password: %w", err)
		}
	}

	fmt.Fprintln(out, "Password reset successful")
	if opts.Generate {
		fmt.Fprintf(out, "Temporary password: %s\n", password)
	}
	return nil
}

func resolveNewPassword(opts *ResetPasswordOptions, out io.Writer) (string, error) {
	if opts.Generate {
		password, err := security.TemporaryPassword(temporaryPasswordLength)
		if err != nil {
			return "", fmt.Errorf("generate temporary password: %w", err)
		}
		return password, nil
	}

	read := opts.ReadPassword
	if read == nil {
		read = newSecretPrompt(os.Stdin).read
	}

	fmt.Fprint(out, "New password: ")
	first, err := read()
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(out, "Repeat password: ")
	second, err := read()
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	password := strings.TrimSpace(string(first))
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	if password != strings.TrimSpace(string(second)) {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}
