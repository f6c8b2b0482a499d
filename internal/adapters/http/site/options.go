package site

import "github.com/okian/wangcai/pkg/logger"

// Option configures a Handler.
type Option func(*Handler)

// WithPublicURL sets the link appended to copied share texts.
func WithPublicURL(u string) Option {
	return func(h *Handler) {
		h.publicURL = u
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithSecureCookie marks the session cookie Secure, for HTTPS deployments.
func WithSecureCookie(secure bool) Option {
	return func(h *Handler) {
		h.secureCookie = secure
	}
}
