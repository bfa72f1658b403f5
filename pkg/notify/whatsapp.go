package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pujana-systems/stockwatch/pkg/model"
)

// DefaultWhatsAppAPIBaseURL is the Twilio REST endpoint used unless the
// configuration overrides it (tests point it at a local server).
const DefaultWhatsAppAPIBaseURL = "https://api.twilio.com"

// WhatsAppChannel delivers notifications through the Twilio Messages
// API using the whatsapp: address scheme.
type WhatsAppChannel struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	client     *http.Client
}

// NewWhatsAppChannel creates a Twilio-backed WhatsApp channel. Missing
// credentials make Send report ErrNotConfigured.
func NewWhatsAppChannel(accountSID, authToken, fromNumber, baseURL string) *WhatsAppChannel {
	if baseURL == "" {
		baseURL = DefaultWhatsAppAPIBaseURL
	}
	return &WhatsAppChannel{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (w *WhatsAppChannel) Name() string { return "whatsapp" }

func (w *WhatsAppChannel) Target(user *model.User) string { return user.PhoneNumber }

func (w *WhatsAppChannel) Send(ctx context.Context, target string, msg Message) error {
	if w.accountSID == "" || w.authToken == "" || w.fromNumber == "" {
		return ErrNotConfigured
	}

	form := url.Values{}
	form.Set("From", "whatsapp:"+w.fromNumber)
	form.Set("To", "whatsapp:"+target)
	form.Set("Body", msg.Text)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", w.baseURL, w.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(w.accountSID, w.authToken)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send whatsapp to %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("whatsapp api returned status %d", resp.StatusCode)
	}
	return nil
}
