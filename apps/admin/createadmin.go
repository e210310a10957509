package main

import (
	"context"
	"fmt"

	"github.com/risingacademy/backend/core/user"
)

// createAdmin registers a new identity with an admin profile.
func (cli *commandLine) createAdmin(na user.NewAdmin) error {
	if err := na.Validate(cli.validate); err != nil {
		return err
	}
	prof, err := cli.authSvc.InitializeAdmin(context.Background(), na)
	if err != nil {
		return err
	}
	fmt.Printf("admin %s created (uid: %s)\n", prof.Email, prof.ID)
	return nil
}
