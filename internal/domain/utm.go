package domain

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Recognized UTM parameter keys.
const (
	UTMCampaign = "utm_campaign"
	UTMSource   = "utm_source"
	UTMMedium   = "utm_medium"
	UTMTerm     = "utm_term"
	UTMContent  = "utm_content"
)

// UTMKeys lists the recognized keys in encoding order.
var UTMKeys = []string{UTMCampaign, UTMSource, UTMMedium, UTMTerm, UTMContent}

// UTMParams maps a parameter key to its value. Empty values are never encoded.
type UTMParams map[string]string

// Encode form-encodes the non-empty parameters: recognized keys first in
// UTMKeys order, then any other keys sorted.
func (p UTMParams) Encode() string {
	var b strings.Builder
	write := func(k string) {
		v := p[k]
		if v == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}

	for _, k := range UTMKeys {
		write(k)
	}

	extra := make([]string, 0)
	for k := range p {
		if !slices.Contains(UTMKeys, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	for _, k := range extra {
		write(k)
	}

	return b.String()
}

// BuildUTMURL appends the encoded params to baseURL.
//
// A missing scheme defaults to https. The separator is "&" when baseURL
// already carries a query and "?" otherwise; a fragment stays last.
// With nothing to encode the (scheme-amended) base URL is returned as is,
// without a dangling "?" separator.
func BuildUTMURL(baseURL string, params UTMParams) (string, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		return "", fmt.Errorf("%w: destination link", ErrMissingRequiredField)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if u.Scheme == "" {
		raw = "https://" + raw
		if u, err = url.Parse(raw); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
		}
	}

	query := params.Encode()
	if query == "" {
		return raw, nil
	}

	base, fragment := raw, ""
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		base, fragment = raw[:i], raw[i:]
	}

	sep := "?"
	switch {
	case u.RawQuery != "":
		sep = "&"
	case u.ForceQuery:
		sep = ""
	}

	return base + sep + query + fragment, nil
}
