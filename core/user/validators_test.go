package user_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risingacademy/backend/core"
	"github.com/risingacademy/backend/core/user"
	testutil "github.com/risingacademy/backend/tests"
)

func TestNewAdmin_Validate(t *testing.T) {
	validate, uni := testutil.NewValidator()

	newAdmin := func(pwd string) user.NewAdmin {
		return user.NewAdmin{Email: "amina.bensalem@test.dz", FirstName: "Amina", LastName: "Bensalem", Password: pwd, PasswordConfirm: pwd}
	}
	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "valid", pwd: "Kx9#vTq2!mLz"},
		{name: "too short", pwd: "Ab1#", wantTag: "pwdminlen"},
		{name: "whitespace", pwd: "Kx9# vTq2!mLz", wantTag: "pwdnospace"},
		{name: "all numeric", pwd: "1234567890", wantTag: "pwdnotallnum"},
		{name: "no special character", pwd: "Kx9vTq2mLz", wantTag: "pwdcplx"},
		{name: "no uppercase", pwd: "kx9#vtq2!mlz", wantTag: "pwdcplx"},
		{name: "similar to the name", pwd: "Bensalem#1", wantTag: "pwdtoosim"},
		{name: "similar to the email", pwd: "Amina.bensalem@test1", wantTag: "pwdtoosim"},
		{name: "common", pwd: "P@ssw0rd", wantTag: "pwdnocommon"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			na := newAdmin(tt.pwd)
			err := na.Validate(validate)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			require.Len(t, vErrs, 1)
			assert.Equal(t, "password", vErrs[0].Field())
			assert.Equal(t, tt.wantTag, vErrs[0].Tag())
		})
	}

	t.Run("cleans and checks the confirmation", func(t *testing.T) {
		na := user.NewAdmin{Email: " Ops@Test.DZ ", FirstName: " Amina ", Password: "Kx9#vTq2!mLz", PasswordConfirm: "other"}
		err := na.Validate(validate)
		assert.Equal(t, "ops@test.dz", na.Email)
		assert.Equal(t, "Amina", na.FirstName)

		var vErrs validator.ValidationErrors
		require.ErrorAs(t, err, &vErrs)
		require.Len(t, vErrs, 1)
		assert.Equal(t, "eqfield", vErrs[0].Tag())
	})

	t.Run("translated messages", func(t *testing.T) {
		na := newAdmin("1234567890")
		err := na.Validate(validate)
		var vErrs validator.ValidationErrors
		require.ErrorAs(t, err, &vErrs)

		assert.Equal(t, "password cannot be entirely numeric", vErrs[0].Translate(core.FindTranslator(uni, "en-US")))
		assert.Equal(t, "le mot de passe ne peut pas être entièrement numérique", vErrs[0].Translate(core.FindTranslator(uni, "fr-FR")))
		assert.Equal(t, "لا يمكن أن تكون كلمة المرور أرقاما فقط", vErrs[0].Translate(core.FindTranslator(uni, "ar-DZ")))
	})
}

func TestResetPassword_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()

	rp := user.ResetPassword{Email: "user@test.dz", Password: "N3w-pass#2025", PasswordConfirm: "N3w-pass#2025"}
	assert.NoError(t, rp.Validate(validate))

	rp = user.ResetPassword{Email: "user@test.dz", Password: "user@test.dz", PasswordConfirm: "user@test.dz"}
	var vErrs validator.ValidationErrors
	require.ErrorAs(t, rp.Validate(validate), &vErrs)
	assert.Equal(t, "pwdcplx", vErrs[0].Tag())
}

func TestCredentials_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()

	creds := user.Credentials{Email: " Admin@RisingAcademy.com ", Password: "x"}
	require.NoError(t, creds.Validate(validate))
	assert.Equal(t, "admin@risingacademy.com", creds.Email)

	creds = user.Credentials{}
	var vErrs validator.ValidationErrors
	require.ErrorAs(t, creds.Validate(validate), &vErrs)
	assert.Len(t, vErrs, 2)
}
