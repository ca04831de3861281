package sources

import (
	"net/http"
	"time"
)

// browserTransport fügt jeder Anfrage einen Browser-User-Agent hinzu, da
// einige Quellen nackte Go-Clients mit einer Block-Seite beantworten.
type browserTransport struct {
	transport http.RoundTripper
}

func (t *browserTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")
	return t.transport.RoundTrip(req)
}

// NewHTTPClient baut den HTTP-Client, den alle Quellen-Adapter verwenden.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &browserTransport{
			transport: http.DefaultTransport,
		},
	}
}
