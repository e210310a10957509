package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/risingacademy/backend/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp       = errors.New("help provided")
	errNoDatabase = errors.New("no database configured")
)

type commandLine struct {
	db       *sql.DB // nil with the in-memory engine
	authSvc  *user.AuthService
	validate *validator.Validate
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a database migration command (up, down, status, version, ...)")
	fmt.Println("  createadmin -email EMAIL [-first FIRST_NAME] [-last LAST_NAME] - create an admin account")
	fmt.Println("  resetpassword -email EMAIL - reset an account's password")
}

// readPassword prompts for a password, then for its confirmation.
func readPassword() (pwd, confirm string, err error) {
	fmt.Print("Enter password:")
	p, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", "", err
	}
	fmt.Print("Confirm password:")
	c, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", "", err
	}
	return string(p), string(c), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	createAdminEmail := createAdminCmd.String("email", "", "The admin's email. The password will be prompted next.")
	createAdminFirst := createAdminCmd.String("first", "", "The admin's first name.")
	createAdminLast := createAdminCmd.String("last", "", "The admin's last name.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The account's email. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createAdminEmail == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		pwd, confirm, err := readPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		return cli.createAdmin(user.NewAdmin{
			Email:           *createAdminEmail,
			FirstName:       *createAdminFirst,
			LastName:        *createAdminLast,
			Password:        pwd,
			PasswordConfirm: confirm,
		})

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, confirm, err := readPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(user.ResetPassword{
			Email:           *resetPasswordEmail,
			Password:        pwd,
			PasswordConfirm: confirm,
		})

	default:
		cli.printUsage()
		return errHelp
	}
}
