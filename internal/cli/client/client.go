package client

import (
	"net/http"
	"strings"
	"time"

	"github.com/curiohub/curiohub/internal/cli/clilog"
	"github.com/curiohub/curiohub/internal/cli/config"
	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const userAgent = "curio-cli/0.1.0"

// APIPrefix is appended to api.base_url.
const APIPrefix = "/api/v1"

var httpClient *resty.Client

// Init builds the HTTP client from config, dropping any auth token.
func Init() {
	httpClient = New(config.GetString("api.base_url"), time.Duration(config.GetInt("api.timeout"))*time.Second)
}

// New returns a client rooted at baseURL + APIPrefix, encoding with
// jsoniter and logging each exchange at debug level. Requests go through an
// otelhttp transport so trace context reaches the API when a tracer is set.
func New(baseURL string, timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTransport(otelhttp.NewTransport(http.DefaultTransport))
	c.SetBaseURL(strings.TrimRight(baseURL, "/") + APIPrefix)
	c.SetTimeout(timeout)
	c.SetHeader("User-Agent", userAgent)
	c.JSONMarshal = jsoniter.ConfigCompatibleWithStandardLibrary.Marshal
	c.JSONUnmarshal = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal

	c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		clilog.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})
	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		clilog.Debug("HTTP Response", "status", resp.StatusCode(), "elapsed", resp.Time())
		return nil
	})
	return c
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}

// SetAuthToken sets the bearer token on the shared client.
func SetAuthToken(token string) {
	GetClient().SetAuthToken(token)
}
