// Package clientip resolves the address a request originated from.
//
// Forwarding headers are honoured only when the request arrived through a
// trusted proxy, so a client cannot pick its own sign-in throttling bucket
// by sending X-Forwarded-For.
package clientip

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Resolver extracts client addresses.
type Resolver struct {
	trusted []netip.Prefix
	headers []string
}

type Option func(*Resolver)

// WithTrustedProxies sets the CIDR ranges whose forwarding headers are
// believed. Unparseable entries are skipped.
func WithTrustedProxies(cidrs ...string) Option {
	return func(r *Resolver) {
		for _, c := range cidrs {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			if p, err := netip.ParsePrefix(c); err == nil {
				r.trusted = append(r.trusted, p.Masked())
				continue
			}
			if a, err := netip.ParseAddr(c); err == nil {
				r.trusted = append(r.trusted, netip.PrefixFrom(a, a.BitLen()))
			}
		}
	}
}

// WithHeaders replaces the forwarding headers checked, in priority order.
func WithHeaders(headers ...string) Option {
	return func(r *Resolver) { r.headers = headers }
}

func New(opts ...Option) *Resolver {
	r := &Resolver{
		headers: []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IP returns the normalized client address, or "" when none can be parsed.
func (r *Resolver) IP(req *http.Request) string {
	remote := remoteAddr(req.RemoteAddr)
	if !remote.IsValid() {
		return ""
	}
	if !r.isTrusted(remote) {
		return remote.String()
	}

	for _, h := range r.headers {
		v := req.Header.Get(h)
		if v == "" {
			continue
		}
		// X-Forwarded-For may hold a chain; the first valid hop is the client.
		for part := range strings.SplitSeq(v, ",") {
			if a, err := netip.ParseAddr(strings.TrimSpace(part)); err == nil {
				return a.Unmap().String()
			}
		}
	}
	return remote.String()
}

func (r *Resolver) isTrusted(a netip.Addr) bool {
	for _, p := range r.trusted {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

func remoteAddr(s string) netip.Addr {
	host, _, err := net.SplitHostPort(s)
	if err != nil {
		host = s
	}
	a, err := netip.ParseAddr(strings.TrimSpace(host))
	if err != nil {
		return netip.Addr{}
	}
	return a.Unmap()
}

type ctxKey struct{}

// Middleware stores the resolved client address in the request context.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := context.WithValue(req.Context(), ctxKey{}, r.IP(req))
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// FromContext returns the address stored by Middleware.
func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(ctxKey{}).(string)
	return ip
}
