package pipeline

import (
	"math"
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/sells-group/newsletter-cli/internal/model"
)

// trackingParams are query parameters stripped from links during
// normalization. utm_* is handled by prefix.
var trackingParams = map[string]struct{}{
	"fbclid": {},
	"gclid":  {},
	"ref":    {},
	"source": {},
	"mc_cid": {},
	"mc_eid": {},
}

// Normalize maps a raw record's fields into the canonical schema. It is a
// pure function: deterministic, no network access, and it never invents a
// value for a field the source did not observe. A record that yields neither
// a usable name nor link is rejected with ErrMalformedRecord.
func Normalize(rec model.RawRecord) (model.Fields, error) {
	var f model.Fields

	if raw, ok := rec.Fields[model.FieldName]; ok {
		f.Name = normalizeName(asString(raw))
	}
	if raw, ok := rec.Fields[model.FieldLink]; ok {
		f.Link = normalizeLink(asString(raw))
	}
	if raw, ok := rec.Fields[model.FieldPublisher]; ok {
		f.Publisher = normalizeName(asString(raw))
	}
	if raw, ok := rec.Fields[model.FieldEmail]; ok {
		f.Email = normalizeEmail(asString(raw))
	}
	if raw, ok := rec.Fields[model.FieldSubscribers]; ok {
		f.SubscriberCount = parseSubscriberCount(raw)
	}
	if raw, ok := rec.Fields[model.FieldSocial]; ok {
		f.Social = normalizeSocial(raw)
	}

	if f.Name == "" && f.Link == "" {
		return model.Fields{}, ErrMalformedRecord
	}
	return f, nil
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return ""
	}
}

// normalizeName trims, collapses internal whitespace, and strips wrapping
// quotes.
func normalizeName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
			continue
		}
		break
	}
	return s
}

// normalizeLink coerces the input to an absolute https URL, lower-cases the
// host, strips tracking query parameters and the fragment. Returns "" when
// the input cannot be parsed into a URL with a host.
func normalizeLink(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for key := range q {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "utm_") {
			q.Del(key)
			continue
		}
		if _, tracked := trackingParams[lower]; tracked {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// normalizeEmail lower-cases and trims the address, then checks the basic
// local@domain shape. Deeper verification is the verifier's job, not done
// here. Returns "" when the shape is invalid.
func normalizeEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return ""
	}
	at := strings.LastIndex(addr.Address, "@")
	if at <= 0 || !strings.Contains(addr.Address[at+1:], ".") {
		return ""
	}
	return addr.Address
}

// parseSubscriberCount parses human-readable subscriber counts into an
// integer: "12.3k" -> 12300, "1,204" -> 1204, "over 5000" -> 5000,
// "2M" -> 2000000. Unparsable input yields nil (field absent), never zero.
func parseSubscriberCount(v any) *int {
	switch n := v.(type) {
	case int:
		return nonNegative(n)
	case int64:
		return nonNegative(int(n))
	case float64:
		return nonNegative(int(math.Round(n)))
	case string:
		return parseSubscriberString(n)
	default:
		return nil
	}
}

// countQualifiers are non-numeric prefixes stripped before parsing.
var countQualifiers = []string{"over", "more than", "about", "around", "nearly", "approx.", "approx"}

func parseSubscriberString(s string) *int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	for _, q := range countQualifiers {
		s = strings.TrimPrefix(s, q)
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "subscribers")
	s = strings.TrimSuffix(s, "readers")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "~")
	s = strings.TrimSuffix(s, "+")
	s = strings.TrimSpace(s)

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		multiplier = 1_000
		s = strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		multiplier = 1_000_000
		s = strings.TrimSuffix(s, "m")
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return nonNegative(int(math.Round(f * multiplier)))
}

func nonNegative(n int) *int {
	if n < 0 {
		return nil
	}
	return &n
}

// socialHosts maps profile URL hosts to platforms.
var socialHosts = map[string]model.Platform{
	"twitter.com":     model.PlatformTwitter,
	"x.com":           model.PlatformTwitter,
	"linkedin.com":    model.PlatformLinkedIn,
	"facebook.com":    model.PlatformFacebook,
	"instagram.com":   model.PlatformInstagram,
	"youtube.com":     model.PlatformYouTube,
	"youtu.be":        model.PlatformYouTube,
	"threads.net":     model.PlatformThreads,
	"bsky.app":        model.PlatformBluesky,
	"mastodon.social": model.PlatformMastodon,
	"mastodon.online": model.PlatformMastodon,
}

// knownPlatforms maps explicit platform labels (map keys or "platform:handle"
// prefixes) to platforms.
var knownPlatforms = map[string]model.Platform{
	"twitter":   model.PlatformTwitter,
	"x":         model.PlatformTwitter,
	"linkedin":  model.PlatformLinkedIn,
	"facebook":  model.PlatformFacebook,
	"instagram": model.PlatformInstagram,
	"youtube":   model.PlatformYouTube,
	"threads":   model.PlatformThreads,
	"bluesky":   model.PlatformBluesky,
	"mastodon":  model.PlatformMastodon,
}

// normalizeSocial accepts either a platform->handle map or a list of raw
// strings (profile URLs, @handles, "platform:@handle") and produces the
// canonical platform->handle set. Unknown platforms are kept under "other".
func normalizeSocial(v any) map[model.Platform]string {
	out := make(map[model.Platform]string)

	add := func(p model.Platform, handle string) {
		handle = strings.TrimSpace(handle)
		if handle == "" {
			return
		}
		if _, exists := out[p]; !exists {
			out[p] = handle
		}
	}

	switch raw := v.(type) {
	case map[string]string:
		for k, handle := range raw {
			add(platformFor(k), handle)
		}
	case map[string]any:
		for k, handle := range raw {
			add(platformFor(k), asString(handle))
		}
	case []string:
		for _, s := range raw {
			p, handle := ParseSocial(s)
			add(p, handle)
		}
	case []any:
		for _, s := range raw {
			p, handle := ParseSocial(asString(s))
			add(p, handle)
		}
	case string:
		p, handle := ParseSocial(raw)
		add(p, handle)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func platformFor(label string) model.Platform {
	if p, ok := knownPlatforms[strings.ToLower(strings.TrimSpace(label))]; ok {
		return p
	}
	return model.PlatformOther
}

// ParseSocial parses one raw social reference into a (platform, handle)
// pair. Accepted shapes: a full profile URL, "platform:@handle", or a bare
// "@handle". Anything unrecognized comes back as (other, raw).
func ParseSocial(s string) (model.Platform, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.PlatformOther, ""
	}

	// Full profile URL.
	if strings.Contains(s, "://") || strings.HasPrefix(s, "www.") {
		u, err := url.Parse(s)
		if err == nil && u.Host == "" && !strings.Contains(s, "://") {
			u, err = url.Parse("https://" + s)
		}
		if err == nil && u.Host != "" {
			host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
			if p, ok := socialHosts[host]; ok {
				handle := strings.Trim(u.Path, "/")
				handle = strings.TrimPrefix(handle, "in/")
				handle = strings.TrimPrefix(handle, "company/")
				if handle != "" && !strings.HasPrefix(handle, "@") {
					handle = "@" + handle
				}
				if handle == "" {
					return model.PlatformOther, s
				}
				return p, handle
			}
		}
		return model.PlatformOther, s
	}

	// "platform:@handle" prefix.
	if label, handle, ok := strings.Cut(s, ":"); ok {
		if p, known := knownPlatforms[strings.ToLower(strings.TrimSpace(label))]; known {
			handle = strings.TrimSpace(handle)
			if !strings.HasPrefix(handle, "@") {
				handle = "@" + handle
			}
			return p, handle
		}
	}

	return model.PlatformOther, s
}
