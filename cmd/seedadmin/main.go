// Command seedadmin creates the "Super Admin" account from ADMIN_EMAIL and
// ADMIN_PASSWORD, prompting on the terminal for whichever is missing. It does
// nothing when a user with that email already exists.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/konasal/konasal-backend/internal/common"
	"github.com/konasal/konasal-backend/internal/server"
	"github.com/konasal/konasal-backend/internal/server/config"
	"golang.org/x/term"
)

const adminName = "Super Admin"

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

type adminSeeder interface {
	EnsureAdmin(ctx context.Context, name, email, password string) (bool, error)
}

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	err = seed(ctx, app.Users(), cfg.AdminEmail, cfg.AdminPassword, bufio.NewReader(os.Stdin), os.Stdout)
	if cerr := app.Close(); cerr != nil {
		log.Printf("close: %v", cerr)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func seed(ctx context.Context, s adminSeeder, email, password string, in *bufio.Reader, out io.Writer) error {
	var err error
	if strings.TrimSpace(email) == "" {
		if email, err = promptLine(in, out, "Admin email: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = promptPassword(out); err != nil {
			return err
		}
	}

	created, err := s.EnsureAdmin(ctx, adminName, email, password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		fmt.Fprintf(out, "Admin user %s created\n", email)
	} else {
		fmt.Fprintf(out, "Admin user %s already exists\n", email)
	}
	return nil
}

func promptLine(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(out io.Writer) (string, error) {
	fmt.Fprint(out, "Admin password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}
