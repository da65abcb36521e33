package soap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExecuteActionSendsEnvelopeAndParsesResponse(t *testing.T) {
	var gotAction, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAction = r.Header.Get("SOAPACTION")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Write([]byte(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><u:PlayResponse/></s:Body></s:Envelope>`))
	}))
	defer server.Close()

	client := NewClient(2 * time.Second)
	_, err := client.ExecuteAction(context.Background(), server.URL, ServiceAVTransport, "Play", map[string]string{
		"InstanceID": "0",
		"Speed":      "1",
	})
	require.NoError(t, err)
	require.Contains(t, gotAction, "AVTransport:1#Play")
	require.Contains(t, gotBody, "<InstanceID>0</InstanceID>")
	require.Contains(t, gotBody, "<Speed>1</Speed>")
}

func TestExecuteActionEscapesArguments(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
	}))
	defer server.Close()

	client := NewClient(2 * time.Second)
	_, err := client.ExecuteAction(context.Background(), server.URL, ServiceAVTransport, "SetAVTransportURI", map[string]string{
		"CurrentURIMetaData": `<item id="1">&</item>`,
	})
	require.NoError(t, err)
	require.NotContains(t, gotBody, `<item id="1">&</item>`)
	require.Contains(t, gotBody, "&lt;item")
	require.Contains(t, gotBody, "&amp;")
}

func TestExecuteActionRejectedOnSoapFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><s:Fault>
			<detail><UPnPError><errorCode>718</errorCode><errorDescription>Invalid InstanceID</errorDescription></UPnPError></detail>
		</s:Fault></s:Body></s:Envelope>`))
	}))
	defer server.Close()

	client := NewClient(2 * time.Second)
	_, err := client.ExecuteAction(context.Background(), server.URL, ServiceAVTransport, "Play", nil)
	require.Error(t, err)

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, "718", rejected.Code)
	require.True(t, strings.Contains(rejected.Description, "Invalid InstanceID"))
}

func TestExecuteActionUnreachable(t *testing.T) {
	client := NewClient(100 * time.Millisecond)
	_, err := client.ExecuteAction(context.Background(), "http://127.0.0.1:1", ServiceAVTransport, "Play", nil)
	require.Error(t, err)

	var unreachable *UnreachableError
	require.ErrorAs(t, err, &unreachable)
}
