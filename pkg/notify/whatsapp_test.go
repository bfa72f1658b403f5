package notify_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pujana-systems/stockwatch/pkg/model"
	"github.com/pujana-systems/stockwatch/pkg/notify"
)

func TestWhatsAppChannel_Send(t *testing.T) {
	var gotPath, gotFrom, gotTo, gotBody string
	var gotUser, gotPass string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotFrom = r.PostFormValue("From")
		gotTo = r.PostFormValue("To")
		gotBody = r.PostFormValue("Body")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	ch := notify.NewWhatsAppChannel("AC123", "secret", "+14155238886", server.URL)

	err := ch.Send(context.Background(), "+905551112233", notify.Message{Text: "stock is low"})
	require.NoError(t, err)

	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", gotPath)
	assert.Equal(t, "AC123", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, "whatsapp:+14155238886", gotFrom)
	assert.Equal(t, "whatsapp:+905551112233", gotTo)
	assert.Equal(t, "stock is low", gotBody)
}

func TestWhatsAppChannel_Send_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	ch := notify.NewWhatsAppChannel("AC123", "wrong", "+14155238886", server.URL)

	err := ch.Send(context.Background(), "+905551112233", notify.Message{Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestWhatsAppChannel_Send_NotConfigured(t *testing.T) {
	ch := notify.NewWhatsAppChannel("", "", "", "")

	err := ch.Send(context.Background(), "+905551112233", notify.Message{Text: "hi"})
	assert.ErrorIs(t, err, notify.ErrNotConfigured)
}

func TestWhatsAppChannel_Target(t *testing.T) {
	ch := notify.NewWhatsAppChannel("AC123", "secret", "+14155238886", "")

	assert.Equal(t, "whatsapp", ch.Name())
	assert.Equal(t, "+905551112233", ch.Target(&model.User{PhoneNumber: "+905551112233"}))
	assert.Empty(t, ch.Target(&model.User{}))
}
