package bilibili

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/zjrosen/biliterm/internal/log"
)

// QR login poll codes.
const (
	PollSuccess    = 0
	PollExpired    = 86038
	PollScanned    = 86090
	PollNotScanned = 86101
)

// QRCode is a freshly generated login code.
type QRCode struct {
	URL string `json:"url"`
	Key string `json:"qrcode_key"`
}

// PollResult is the state of a QR login attempt.
type PollResult struct {
	Code         int    `json:"code"`
	Message      string `json:"message"`
	URL          string `json:"url"`
	RefreshToken string `json:"refresh_token"`
}

// GenerateQRCode asks the passport service for a new login QR code.
func (c *Client) GenerateQRCode(ctx context.Context) (QRCode, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.passportBase+"/x/passport-login/web/qrcode/generate", nil)
	if err != nil {
		return QRCode{}, err
	}
	qr, _, err := do[QRCode](c, req, "qrcode/generate")
	if err != nil {
		return qr, err
	}
	log.Debug(log.CatLogin, "qr code generated")
	return qr, nil
}

// PollQRCode checks a login attempt. On success the returned cookies are
// stored and persisted.
func (c *Client) PollQRCode(ctx context.Context, key string) (PollResult, error) {
	u := c.passportBase + "/x/passport-login/web/qrcode/poll?qrcode_key=" + url.QueryEscape(key)
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return PollResult{}, err
	}
	res, resp, err := do[PollResult](c, req, "qrcode/poll")
	if err != nil {
		return res, err
	}
	if res.Code != PollSuccess {
		return res, nil
	}

	cookies := make(map[string]string)
	for _, ck := range resp.Cookies() {
		cookies[ck.Name] = ck.Value
	}
	// The cross-domain redirect URL repeats the cookies as query parameters.
	if parsed, perr := url.Parse(res.URL); perr == nil {
		for _, name := range []string{CookieUserID, CookieSession, CookieCSRF, "DedeUserID__ckMd5"} {
			if v := parsed.Query().Get(name); v != "" {
				if _, ok := cookies[name]; !ok {
					cookies[name] = v
				}
			}
		}
	}

	c.cookies.Set(cookies)
	if err := c.cookies.Save(); err != nil {
		return res, fmt.Errorf("saving login cookies: %w", err)
	}
	log.Info(log.CatLogin, "login succeeded", "uid", c.cookies.Get(CookieUserID))
	return res, nil
}
