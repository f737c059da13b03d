// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"folio/internal/middleware"
	"folio/internal/session"
	"folio/internal/store"
)

// totpIssuer is shown in authenticator apps next to the account name.
const totpIssuer = "Folio"

// Auth groups the login, logout and account security handlers.
type Auth struct {
	sessions *session.Manager
	users    *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Manager, users *store.UserStore) *Auth {
	return &Auth{sessions: sessions, users: users}
}

// Login checks credentials and, when the account has two-factor
// authentication enabled, the TOTP code. On success the token is both set
// as a cookie and returned in the body.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var in loginPayload
	if errs := decodeJSON(w, r, &in); errs != nil {
		writeFieldErrors(w, errs)
		return
	}
	if errs := in.validate(); errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	user, err := a.users.FindByEmail(r.Context(), strings.TrimSpace(in.Email))
	if err != nil {
		writeInternal(w, "login lookup failed", err)
		return
	}
	// Unknown email and wrong password get the same answer.
	if user == nil || !a.users.CheckPassword(user, in.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if user.Requires2FA() {
		msg := ""
		switch {
		case in.Code == "":
			msg = "Two-factor code required"
		case !totp.Validate(strings.TrimSpace(in.Code), *user.TOTPSecret):
			msg = "Invalid two-factor code"
		}
		if msg != "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"message":           msg,
				"twoFactorRequired": true,
			})
			return
		}
	}

	token, err := a.sessions.Issue(user)
	if err != nil {
		writeInternal(w, "issue session token failed", err)
		return
	}
	a.sessions.SetCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  user.Public(),
		"token": token,
	})
}

// Logout clears the session cookie. It never fails: tokens are stateless,
// so there is nothing to revoke server-side.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":             user.Public(),
		"twoFactorEnabled": user.TOTPEnabled,
	})
}

// TwoFASetup generates a new TOTP secret, stores it as pending and returns
// it with a QR code. The secret only takes effect after TwoFAEnable.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user.TOTPEnabled {
		writeError(w, http.StatusConflict, "Two-factor authentication is already enabled")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		writeInternal(w, "totp generate failed", err)
		return
	}

	if err := a.users.SetTOTPSecret(r.Context(), user.ID, key.Secret()); err != nil {
		writeInternal(w, "save totp secret failed", err)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		writeInternal(w, "qr code generation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret":     key.Secret(),
		"otpauthUrl": key.URL(),
		"qrCode":     "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrPNG),
	})
}

type codePayload struct {
	Code string `json:"code"`
}

// TwoFAEnable confirms the pending secret with a valid code.
func (a *Auth) TwoFAEnable(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	var in codePayload
	if errs := decodeJSON(w, r, &in); errs != nil {
		writeFieldErrors(w, errs)
		return
	}
	if user.TOTPSecret == nil {
		writeError(w, http.StatusBadRequest, "Run two-factor setup first")
		return
	}
	if !totp.Validate(strings.TrimSpace(in.Code), *user.TOTPSecret) {
		writeFieldErrors(w, fieldErrors{{Field: "code", Message: "Invalid code. Please try again."}})
		return
	}

	if err := a.users.EnableTOTP(r.Context(), user.ID); err != nil {
		writeInternal(w, "enable totp failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TwoFADisable turns two-factor authentication off. A current code is
// required so a stolen session alone cannot remove it.
func (a *Auth) TwoFADisable(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	var in codePayload
	if errs := decodeJSON(w, r, &in); errs != nil {
		writeFieldErrors(w, errs)
		return
	}
	if !user.Requires2FA() {
		writeError(w, http.StatusBadRequest, "Two-factor authentication is not enabled")
		return
	}
	if !totp.Validate(strings.TrimSpace(in.Code), *user.TOTPSecret) {
		writeFieldErrors(w, fieldErrors{{Field: "code", Message: "Invalid code. Please try again."}})
		return
	}

	if err := a.users.DisableTOTP(r.Context(), user.ID); err != nil {
		writeInternal(w, "disable totp failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
