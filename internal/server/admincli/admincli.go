// Package admincli seeds administrator accounts from the terminal. Admins
// cannot self-register over HTTP; this is the only way one is created.
package admincli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sayedsafi2000/pixelsbee/internal/common"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
)

var ErrPasswordMismatch = errors.New("passwords do not match")

// AdminCreator is satisfied by *services.AccountService.
type AdminCreator interface {
	CreateAdmin(ctx context.Context, name, email, password string) (*models.AccountView, error)
}

// Input holds values supplied on the command line. Empty fields are
// prompted for.
type Input struct {
	Name     string
	Email    string
	Password string
}

// Run collects the missing fields, creates the admin and reports the result
// to w.
func Run(ctx context.Context, in Input, reader *bufio.Reader, w io.Writer, c AdminCreator) error {
	var err error

	if in.Name == "" {
		if in.Name, err = GetSimpleText(reader, "Admin name", w); err != nil {
			return err
		}
	}
	if in.Email == "" {
		if in.Email, err = GetSimpleText(reader, "Admin email", w); err != nil {
			return err
		}
	}
	if in.Password == "" {
		pw, err := GetPassword(w, "Password")
		if err != nil {
			return err
		}
		confirm, err := GetPassword(w, "Repeat password")
		if err != nil {
			return err
		}
		if string(pw) != string(confirm) {
			return ErrPasswordMismatch
		}
		in.Password = string(pw)
	}

	view, err := c.CreateAdmin(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		var e *common.Error
		if errors.As(err, &e) {
			return errors.New(e.Message)
		}
		return err
	}

	_, err = fmt.Fprintf(w, "Admin %s <%s> created with id %s\n", view.Name, view.Email, view.ID)
	return err
}
