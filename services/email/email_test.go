package emailsvc

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/risingacademy/backend/core"
	logsvc "github.com/risingacademy/backend/services/logger"
)

func newTestLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(zap.NewNop(), conf)
	logger.Enable(false)
	return logger
}

func decisionMessage(approved bool) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: "Amina Saidi", Address: "amina@test.dz"}},
		Subject:      "Your application",
		TemplateName: "application_decision",
		TemplateData: map[string]interface{}{"FirstName": "Amina", "Program": "Language Learning", "Approved": approved},
	}
}

func TestConsoleServiceMock(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewConsoleServiceMock(conf, newTestLogger(conf))

	svc.SendMessages(
		decisionMessage(true),
		decisionMessage(false),
		&core.EmailMessage{Subject: "no recipients", BodyStr: "lost"},
		&core.EmailMessage{To: []mail.Address{{Address: "x@test.dz"}}, Subject: "no content", TemplateName: "unknown"},
		&core.EmailMessage{To: []mail.Address{{Address: "x@test.dz"}}, Subject: "plain", BodyStr: "Hello"},
	)

	sent := svc.SentMessages()
	require.Len(t, sent, 3)
	assert.Contains(t, sent[0].TextContent, "Hello Amina,")
	assert.Contains(t, sent[0].TextContent, "has been approved")
	assert.Contains(t, sent[0].HTMLContent, "Amina")
	assert.Contains(t, sent[1].TextContent, "not able to accept")
	assert.Equal(t, "Hello", sent[2].TextContent)

	svc.Reset()
	assert.Empty(t, svc.SentMessages())
}

func TestSendgridService(t *testing.T) {
	conf := core.NewTestConfig()
	conf.SendgridApiKey = "SG.test"

	var (
		gotAuth string
		gotBody map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, endpoint, r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	oldHost := host
	host = srv.URL
	defer func() { host = oldHost }()

	svc := NewSendgridService(conf, newTestLogger(conf)).(*sendgridService)
	msg := decisionMessage(true)
	require.NoError(t, msg.Render())
	svc.send(*msg)

	assert.Equal(t, "Bearer SG.test", gotAuth)
	require.NotNil(t, gotBody)
	assert.Equal(t, "noreply@risingacademy.test", gotBody["from"].(map[string]interface{})["email"])

	pers := gotBody["personalizations"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "[Rising Academy] Your application", pers["subject"])
	assert.Equal(t, "amina@test.dz", pers["to"].([]interface{})[0].(map[string]interface{})["email"])

	contents := gotBody["content"].([]interface{})
	require.Len(t, contents, 2)
	assert.Equal(t, "text/plain", contents[0].(map[string]interface{})["type"])
	assert.Equal(t, "text/html", contents[1].(map[string]interface{})["type"])
}
