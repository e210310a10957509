package user

import (
	"bufio"
	"bytes"
	"compress/gzip"
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/risingacademy/backend/core"
)

var (
	//go:embed assets/common-passwords.txt.gz
	commonPasswordsGz []byte
	commonPasswords   []string
	loadCommonOnce    sync.Once

	// password policy
	pwdMinLen    = 8
	pwdMinLenTag = "pwdminlen"

	pwdNoSpaceTag    = "pwdnospace"
	pwdNotAllNumTag  = "pwdnotallnum"
	pwdComplexityTag = "pwdcplx"
	specialRegex     = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim     = .7
	pwdAttrSimTag = "pwdtoosim"

	pwdNoCommonTag = "pwdnocommon"

	pwdTexts = map[string]map[string]string{
		pwdMinLenTag: {
			"en": fmt.Sprintf("password must contain at least %d characters", pwdMinLen),
			"fr": fmt.Sprintf("le mot de passe doit contenir au moins %d caractères", pwdMinLen),
			"ar": fmt.Sprintf("يجب أن تحتوي كلمة المرور على %d أحرف على الأقل", pwdMinLen),
		},
		pwdNoSpaceTag: {
			"en": "password must not contain whitespace",
			"fr": "le mot de passe ne doit pas contenir d'espace",
			"ar": "يجب ألا تحتوي كلمة المرور على مسافات",
		},
		pwdNotAllNumTag: {
			"en": "password cannot be entirely numeric",
			"fr": "le mot de passe ne peut pas être entièrement numérique",
			"ar": "لا يمكن أن تكون كلمة المرور أرقاما فقط",
		},
		pwdComplexityTag: {
			"en": "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character",
			"fr": "le mot de passe doit contenir au moins 1 majuscule, 1 minuscule, 1 chiffre et 1 caractère spécial",
			"ar": "يجب أن تحتوي كلمة المرور على حرف كبير وحرف صغير ورقم ورمز خاص على الأقل",
		},
		pwdAttrSimTag: {
			"en": "password cannot be similar to user attributes",
			"fr": "le mot de passe est trop semblable aux informations de l'utilisateur",
			"ar": "كلمة المرور مشابهة جدا لمعلومات المستخدم",
		},
		pwdNoCommonTag: {
			"en": "password is too common",
			"fr": "le mot de passe est trop courant",
			"ar": "كلمة المرور شائعة جدا",
		},
	}
)

// InitValidators registers the password policy on NewAdmin and ResetPassword.
func InitValidators(validate *validator.Validate, uni *ut.UniversalTranslator) {
	loadCommonOnce.Do(loadCommonPasswords)

	validate.RegisterStructValidation(userStructValidation, NewAdmin{}, ResetPassword{})
	for tag, texts := range pwdTexts {
		core.RegisterLocalizedTranslation(validate, uni, tag, texts)
	}
}

func loadCommonPasswords() {
	gzRdr, err := gzip.NewReader(bytes.NewReader(commonPasswordsGz))
	if err != nil {
		return
	}
	//goland:noinspection GoUnhandledErrorResult
	defer gzRdr.Close()

	scanner := bufio.NewScanner(gzRdr)
	for scanner.Scan() {
		if pwd := strings.TrimSpace(scanner.Text()); pwd != "" {
			commonPasswords = append(commonPasswords, strings.ToLower(pwd))
		}
	}
	sort.Strings(commonPasswords)
}

// userStructValidation does struct level validation on NewAdmin and ResetPassword structs.
func userStructValidation(sl validator.StructLevel) {
	switch usr := sl.Current().Interface().(type) {
	case NewAdmin:
		validatePassword(usr.Password, sl, usr.FirstName, usr.LastName, usr.Email)
	case ResetPassword:
		validatePassword(usr.Password, sl, usr.Email)
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no user attrs similarity
// - no common password
func validatePassword(pwd string, sl validator.StructLevel, usrAttrs ...string) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	var (
		digitCount                             int
		hasUpper, hasLower, hasDig, hasSpecial bool
	)

	if pwd == "" {
		return // reported by "required"
	}

	// - minLen: 8
	pwdLen := len([]rune(pwd))
	if pwdLen < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	for _, char := range pwd {
		// - no whitespace
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	// - not all numeric
	if digitCount == pwdLen {
		reportErr(pwdNotAllNumTag)
		return
	}

	// - complexity: 1 upper, 1 lower, 1 digit & 1 special
	hasDig = digitCount > 0
	hasSpecial = specialRegex.MatchString(pwd)
	if !(hasUpper && hasLower && hasDig && hasSpecial) {
		reportErr(pwdComplexityTag)
		return
	}

	// - no user attrs similarity
	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(strings.ToLower(pass), ""), strings.Split(strings.ToLower(usrAttr), "")).QuickRatio()
	}
	for _, attr := range usrAttrs {
		if getRatio(pwd, attr) >= pwdMaxSim {
			reportErr(pwdAttrSimTag)
			return
		}
	}

	// - no common passwords
	lpwd := strings.ToLower(pwd)
	if idx := sort.SearchStrings(commonPasswords, lpwd); idx < len(commonPasswords) {
		if match := commonPasswords[idx]; lpwd == match {
			reportErr(pwdNoCommonTag)
			return
		}
	}
}
