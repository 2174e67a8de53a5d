// Package util holds small shared helpers.
package util

import (
	"net/http"
	"net/url"
)

// NewProxyFunc creates a proxy function based on configuration.
// If no proxy URLs are provided, falls back to environment variables.
func NewProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

// ProxyTransport returns an HTTP transport honoring the configured
// proxies for outbound extraction API calls.
func ProxyTransport(httpProxy, httpsProxy string) (*http.Transport, error) {
	if httpProxy != "" {
		if _, err := url.Parse(httpProxy); err != nil {
			return nil, err
		}
	}
	if httpsProxy != "" {
		if _, err := url.Parse(httpsProxy); err != nil {
			return nil, err
		}
	}
	return &http.Transport{Proxy: NewProxyFunc(httpProxy, httpsProxy)}, nil
}
