package main

import (
	"context"

	"github.com/risingacademy/backend/core/user"
)

func (cli *commandLine) resetPassword(rp user.ResetPassword) error {
	if err := rp.Validate(cli.validate); err != nil {
		return err
	}
	return cli.authSvc.ResetPassword(context.Background(), rp)
}
