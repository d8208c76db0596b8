package http

import "net/http"

type BasicAuth struct {
	Username string
	Password string
}

type Options struct {
	Address        string
	BaseURL        string
	BasicAuth      *BasicAuth
	AllowedOrigins []string
	Mounts         map[string]http.Handler
}

type OptionFunc func(opts *Options)

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		Address:        ":3003",
		BaseURL:        "/",
		AllowedOrigins: []string{"*"},
		Mounts:         map[string]http.Handler{},
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

func WithAddress(address string) OptionFunc {
	return func(opts *Options) {
		opts.Address = address
	}
}

func WithBaseURL(baseURL string) OptionFunc {
	return func(opts *Options) {
		opts.BaseURL = baseURL
	}
}

func WithBasicAuth(auth *BasicAuth) OptionFunc {
	return func(opts *Options) {
		opts.BasicAuth = auth
	}
}

func WithAllowedOrigins(origins ...string) OptionFunc {
	return func(opts *Options) {
		opts.AllowedOrigins = origins
	}
}

func WithMount(path string, handler http.Handler) OptionFunc {
	return func(opts *Options) {
		opts.Mounts[path] = handler
	}
}
