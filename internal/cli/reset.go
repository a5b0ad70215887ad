package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/skinior/skinior-api/internal/models"
	"github.com/skinior/skinior-api/internal/security"
	"github.com/skinior/skinior-api/internal/services"
)

type PasswordSetter interface {
	SetPassword(ctx context.Context, email string, password string, mustChange bool) (models.User, error)
}

// RunResetPasswordCommand replaces the password with a random temporary one and
// flags the account so the owner has to pick a new password.
func RunResetPasswordCommand(ctx context.Context, users PasswordSetter, email string, out io.Writer) error {
	temporaryPassword, err := generateTemporaryPassword(12)
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}

	user, err := users.SetPassword(ctx, email, temporaryPassword, true)
	if err != nil {
		return describeSetPasswordError(email, err)
	}

	fmt.Fprintln(out, "✅ Password reset successful")
	fmt.Fprintf(out, "Account: %s\n", user.Email)
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	fmt.Fprintln(out, "User must change password on next login.")
	return nil
}

// RunSetPasswordCommand prompts twice on stdin without echo.
func RunSetPasswordCommand(ctx context.Context, users PasswordSetter, email string, stdin *os.File, out io.Writer) error {
	return runSetPassword(ctx, users, email, func() ([]byte, error) {
		return readPasswordNoEcho(stdin)
	}, out)
}

func runSetPassword(ctx context.Context, users PasswordSetter, email string, prompt func() ([]byte, error), out io.Writer) error {
	fmt.Fprint(out, "New password: ")
	password, err := prompt()
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(out, "Repeat password: ")
	confirmation, err := prompt()
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("read password confirmation: %w", err)
	}
	if !bytes.Equal(password, confirmation) {
		return errors.New("passwords do not match")
	}
	if err := services.ValidatePasswordStrength(string(password)); err != nil {
		return errors.New("password must be at least 8 characters and mix upper case, lower case and digits")
	}

	user, err := users.SetPassword(ctx, email, string(password), false)
	if err != nil {
		return describeSetPasswordError(email, err)
	}

	fmt.Fprintf(out, "✅ Password updated for %s\n", user.Email)
	return nil
}

func describeSetPasswordError(email string, err error) error {
	switch {
	case errors.Is(err, services.ErrAuthCredentialsInvalid):
		return fmt.Errorf("invalid email address %q", email)
	case errors.Is(err, services.ErrAuthUserNotFound):
		return fmt.Errorf("user %s not found", email)
	default:
		return fmt.Errorf("update user password: %w", err)
	}
}

func generateTemporaryPassword(length int) (string, error) {
	return security.TemporaryPassword(length)
}
