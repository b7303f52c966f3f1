package middlewares

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	er "github.com/mcorbin/corbierror"
)

const SignatureHeader = "X-Twilio-Signature"

// Signature computes the signature of a webhook call: the base64 HMAC-SHA1
// of the URL followed by every form key and value, keys sorted.
func Signature(authToken string, requestURL string, form url.Values) string {
	var builder strings.Builder
	builder.WriteString(requestURL)
	keys := make([]string, 0, len(form))
	for key := range form {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		values := append([]string(nil), form[key]...)
		sort.Strings(values)
		for _, value := range values {
			builder.WriteString(key)
			builder.WriteString(value)
		}
	}
	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(builder.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature rejects the webhook calls without a valid signature.
// publicURL replaces the URL seen by the server when a proxy rewrites it.
// The middleware is a no-op when authToken is empty.
func VerifySignature(authToken string, publicURL string, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			if authToken == "" {
				return next(ec)
			}
			request := ec.Request()
			if _, err := ec.FormParams(); err != nil {
				return er.New("invalid form payload", er.BadRequest, true)
			}
			// the query string is part of the signed URL, not of the form
			form := request.PostForm
			requestURL := publicURL
			if requestURL == "" {
				requestURL = fmt.Sprintf("%s://%s%s", ec.Scheme(), request.Host, request.URL.RequestURI())
			}
			signature := request.Header.Get(SignatureHeader)
			expected := Signature(authToken, requestURL, form)
			if signature == "" || !hmac.Equal([]byte(signature), []byte(expected)) {
				logger.Warn(fmt.Sprintf("invalid webhook signature for %s from %s", requestURL, form.Get("From")))
				return er.New("invalid request signature", er.Forbidden, true)
			}
			return next(ec)
		}
	}
}
