package helpers

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

const defaultESTimeout = 5 * time.Second

// ESOptions configures the Elasticsearch client. Username and Password are optional.
type ESOptions struct {
	Addresses []string
	Username  string
	Password  string
	Timeout   time.Duration // dial and response-header timeout; 0 means 5s
}

// NewESClient creates an Elasticsearch client whose transport gives up on a
// node after opts.Timeout.
func NewESClient(opts ESOptions) (*elasticsearch.Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultESTimeout
	}
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: opts.Addresses,
		Username:  opts.Username,
		Password:  opts.Password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: timeout,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		},
	})
}
