package striperepo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/waan1232/campus-share-app-sub000/util/httpx"
)

const sessionsURL = "https://api.stripe.com/v1/checkout/sessions"

// webhookTolerance bounds how stale a signed webhook timestamp may be.
const webhookTolerance = 5 * time.Minute

type httpRepo struct {
	apiKey        string
	webhookSecret string
	client        *http.Client
}

func NewHTTP(apiKey, webhookSecret string) Repo {
	return &httpRepo{apiKey: apiKey, webhookSecret: webhookSecret, client: httpx.Client()}
}

func (r *httpRepo) CreateCheckoutSession(req CreateSessionReq) (*CreateSessionResp, error) {
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("line_items[0][price_data][currency]", currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountMinorUnits, 10))
	form.Set("line_items[0][price_data][product_data][name]", req.Description)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("metadata[rental_id]", strconv.FormatInt(req.RentalID, 10))
	form.Set("metadata[user_id]", strconv.FormatInt(req.UserID, 10))

	httpReq, err := http.NewRequest(http.MethodPost, sessionsURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(r.apiKey, "")
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stripe create session failed: %s", resp.Status)
	}

	var out struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.ID == "" || out.URL == "" {
		return nil, errors.New("stripe: empty session id or url")
	}
	return &CreateSessionResp{SessionID: out.ID, RedirectURL: out.URL}, nil
}

// VerifyWebhookSignature checks a Stripe-Signature header
// (t=<unix>,v1=<hex hmac>) against HMAC-SHA256(secret, "<t>.<body>").
func (r *httpRepo) VerifyWebhookSignature(sigHeader string, rawBody []byte) error {
	ts, sigs, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return err
	}
	if d := time.Since(time.Unix(ts, 0)); d > webhookTolerance || d < -webhookTolerance {
		return errors.New("webhook timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(r.webhookSecret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	for _, sig := range sigs {
		got, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, got) {
			return nil
		}
	}
	return errors.New("no matching webhook signature")
}

func parseSignatureHeader(header string) (ts int64, sigs []string, err error) {
	if header == "" {
		return 0, nil, errors.New("missing signature header")
	}
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts, err = strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, nil, errors.New("bad signature timestamp")
			}
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return 0, nil, errors.New("malformed signature header")
	}
	return ts, sigs, nil
}
